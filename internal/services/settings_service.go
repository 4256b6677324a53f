package services

import (
	"log"
	"sync"
	"time"

	"nynth/internal/domain"
)

// settingsSource is the settings singleton's storage.
type settingsSource interface {
	Get() (domain.Settings, error)
	Upsert(domain.Settings) error
}

// SettingsService fetches the storefront settings once with retry and serves
// them from memory afterwards; checkout reads them on every order.
type SettingsService struct {
	repo     settingsSource
	fallback domain.Settings

	LoadAttempts int
	LoadBackoff  time.Duration

	mu     sync.RWMutex
	cached *domain.Settings
}

func NewSettingsService(repo settingsSource, fallback domain.Settings) *SettingsService {
	return &SettingsService{
		repo:         repo,
		fallback:     fallback,
		LoadAttempts: 3,
		LoadBackoff:  200 * time.Millisecond,
	}
}

// Load fetches and caches the settings row, retrying transient failures.
// On total failure the configured fallback stays in effect.
func (s *SettingsService) Load() error {
	attempts := s.LoadAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := s.LoadBackoff
	var lastErr error
	for i := 0; i < attempts; i++ {
		settings, err := s.repo.Get()
		if err == nil {
			s.mu.Lock()
			s.cached = &settings
			s.mu.Unlock()
			return nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	log.Printf("[settings] load failed, using defaults: %v", lastErr)
	return lastErr
}

// Current returns the cached settings, or the fallback before the first
// successful load.
func (s *SettingsService) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached != nil {
		return *s.cached
	}
	return s.fallback
}

// ShippingFee returns the fee for a delivery location. Location-keyed tables
// belong to the settings collaborator; this core ships the flat default.
func (s *SettingsService) ShippingFee(location string) int64 {
	_ = location
	return s.Current().ShippingFeeDefault
}

// Update writes new settings and refreshes the cache, for the admin console.
func (s *SettingsService) Update(settings domain.Settings) error {
	if err := s.repo.Upsert(settings); err != nil {
		return err
	}
	s.mu.Lock()
	s.cached = &settings
	s.mu.Unlock()
	return nil
}
