package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"nynth/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID        string         `db:"id"`
	Title     string         `db:"title"`
	Price     int64          `db:"price"`
	InStock   bool           `db:"in_stock"`
	StockQty  int            `db:"stock_qty"`
	ImageRef  sql.NullString `db:"image_ref"`
	CreatedAt sql.NullString `db:"created_at"`
	UpdatedAt sql.NullString `db:"updated_at"`
}

func (row productRow) toDomain() domain.Product {
	return domain.Product{
		ID:        row.ID,
		Title:     row.Title,
		Price:     row.Price,
		InStock:   row.InStock,
		StockQty:  row.StockQty,
		ImageRef:  row.ImageRef.String,
		CreatedAt: row.CreatedAt.String,
		UpdatedAt: row.UpdatedAt.String,
	}
}

// Get returns the live product record, or domain.ErrProductVanished when no
// such product exists.
func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var row productRow
	err := r.db.Get(&row, `
		SELECT id, title, price, in_stock, stock_qty, image_ref, created_at, updated_at
		FROM products WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductVanished
	}
	if err != nil {
		return domain.Product{}, err
	}
	return row.toDomain(), nil
}

func (r *ProductRepo) List() ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.Select(&rows, `
		SELECT id, title, price, in_stock, stock_qty, image_ref, created_at, updated_at
		FROM products ORDER BY title
	`); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// SetStock is the admin console's inventory write. A zero quantity forces the
// in_stock flag off regardless of the caller's value.
func (r *ProductRepo) SetStock(id string, inStock bool, qty int) error {
	if qty <= 0 {
		inStock = false
		qty = 0
	}
	res, err := r.db.Exec(`
		UPDATE products SET in_stock = ?, stock_qty = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, inStock, qty, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProductVanished
	}
	return nil
}

// SetPrice exists for catalog edits; placed orders keep their snapshots.
func (r *ProductRepo) SetPrice(id string, price int64) error {
	res, err := r.db.Exec(`
		UPDATE products SET price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, price, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProductVanished
	}
	return nil
}
