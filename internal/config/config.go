package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port               string
	DBDSN              string
	LogFile            string
	PaystackPublicKey  string
	PaystackSecretKey  string
	PaystackBaseURL    string
	AdminTokenHash     string // bcrypt hash of the admin API token
	CurrencySymbol     string
	ShippingFeeDefault int64
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "nynth.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./nynth.log"
	}
	baseURL := os.Getenv("PAYSTACK_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	currency := os.Getenv("CURRENCY_SYMBOL")
	if currency == "" {
		currency = "₦"
	}
	shipping := int64(1500)
	if v := os.Getenv("SHIPPING_FEE_DEFAULT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			shipping = n
		}
	}

	cfg := Config{
		Port:               port,
		DBDSN:              dsn,
		LogFile:            logFile,
		PaystackPublicKey:  os.Getenv("PAYSTACK_PUBLIC_KEY"),
		PaystackSecretKey:  os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:    baseURL,
		AdminTokenHash:     os.Getenv("ADMIN_TOKEN_HASH"),
		CurrencySymbol:     currency,
		ShippingFeeDefault: shipping,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s PAYSTACK_BASE_URL=%s PUBLIC_KEY=%s SECRET_KEY=%s ADMIN_TOKEN_HASH=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.PaystackBaseURL, cfg.PaystackPublicKey, redact(cfg.PaystackSecretKey), redact(cfg.AdminTokenHash))
	return cfg
}

func redact(s string) string {
	if s == "" {
		return "(unset)"
	}
	return "(set)"
}
