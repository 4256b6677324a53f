package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"nynth/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID               string         `db:"id"`
	UserID           sql.NullString `db:"user_id"`
	CustomerName     string         `db:"customer_name"`
	CustomerEmail    string         `db:"customer_email"`
	CustomerPhone    sql.NullString `db:"customer_phone"`
	Address          sql.NullString `db:"address"`
	City             sql.NullString `db:"city"`
	State            sql.NullString `db:"state"`
	Subtotal         int64          `db:"subtotal"`
	ShippingFee      int64          `db:"shipping_fee"`
	Total            int64          `db:"total"`
	PaymentStatus    string         `db:"payment_status"`
	OrderStatus      string         `db:"order_status"`
	PaymentReference sql.NullString `db:"payment_reference"`
	CreatedAt        sql.NullString `db:"created_at"`
	UpdatedAt        sql.NullString `db:"updated_at"`
}

func (row orderRow) toDomain() domain.Order {
	o := domain.Order{
		ID: row.ID,
		Customer: domain.Customer{
			Name:    row.CustomerName,
			Email:   row.CustomerEmail,
			Phone:   row.CustomerPhone.String,
			Address: row.Address.String,
			City:    row.City.String,
			State:   row.State.String,
		},
		Subtotal:         row.Subtotal,
		ShippingFee:      row.ShippingFee,
		Total:            row.Total,
		PaymentStatus:    domain.PaymentStatus(row.PaymentStatus),
		OrderStatus:      domain.OrderStatus(row.OrderStatus),
		PaymentReference: row.PaymentReference.String,
		CreatedAt:        row.CreatedAt.String,
		UpdatedAt:        row.UpdatedAt.String,
	}
	if row.UserID.Valid {
		uid := row.UserID.String
		o.UserID = &uid
	}
	return o
}

const orderColumns = `id, user_id, customer_name, customer_email, customer_phone,
	address, city, state, subtotal, shipping_fee, total,
	payment_status, order_status, payment_reference, created_at, updated_at`

// Create persists a new order inside a single transaction. Every line item's
// product is re-read in the same transaction: a missing product aborts with
// domain.ErrProductVanished, an unavailable one with *domain.OutOfStockError.
// On abort no partial order rows survive.
//
// This is an availability gate, not a reservation: stock quantities are not
// decremented, so two concurrent orders can both pass for a low-stock item.
func (r *OrderRepo) Create(order domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range order.Items {
		var gate struct {
			Title   string `db:"title"`
			InStock bool   `db:"in_stock"`
		}
		err := tx.Get(&gate, `SELECT title, in_stock FROM products WHERE id = ?`, item.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProductVanished
		}
		if err != nil {
			return err
		}
		if !gate.InStock {
			return &domain.OutOfStockError{ProductID: item.ProductID, Title: gate.Title}
		}
	}

	var userID *string
	if order.UserID != nil && *order.UserID != "" {
		userID = order.UserID
	}
	if _, err := tx.Exec(`
		INSERT INTO orders
		  (id, user_id, customer_name, customer_email, customer_phone, address, city, state,
		   subtotal, shipping_fee, total, payment_status, order_status, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,'pending','pending',CURRENT_TIMESTAMP)
	`, order.ID, userID, order.Customer.Name, order.Customer.Email, order.Customer.Phone,
		order.Customer.Address, order.Customer.City, order.Customer.State,
		order.Subtotal, order.ShippingFee, order.Total); err != nil {
		return err
	}

	for _, item := range order.Items {
		if _, err := tx.Exec(`
			INSERT INTO order_items(order_id, product_id, name, unit_price, qty, size, color, image_ref)
			VALUES (?,?,?,?,?,?,?,?)
		`, order.ID, item.ProductID, item.Name, item.UnitPrice, item.Quantity,
			item.Size, item.Color, item.ImageRef); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// MarkPaid flips a pending order to paid and records the gateway reference.
// The guarded UPDATE makes repeat calls a no-op: updated=false with a nil
// error means the order was already paid.
func (r *OrderRepo) MarkPaid(orderID, reference string) (updated bool, err error) {
	res, err := r.db.Exec(`
		UPDATE orders
		SET payment_status = 'paid', order_status = 'processing',
		    payment_reference = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND payment_status = 'pending'
	`, reference, orderID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return true, nil
	}

	// No row changed: either the order is gone or it is already paid.
	var status string
	err = r.db.Get(&status, `SELECT payment_status FROM orders WHERE id = ?`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrOrderNotFound
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (r *OrderRepo) Get(orderID string) (domain.Order, error) {
	var row orderRow
	err := r.db.Get(&row, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	order := row.toDomain()
	if order.Items, err = r.items(orderID); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// GetByReference looks an order up by its payment reference, the visible key
// on the confirmation view.
func (r *OrderRepo) GetByReference(reference string) (domain.Order, error) {
	var row orderRow
	err := r.db.Get(&row, `SELECT `+orderColumns+` FROM orders WHERE payment_reference = ?`, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	order := row.toDomain()
	if order.Items, err = r.items(order.ID); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *OrderRepo) items(orderID string) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.Select(&items, `
		SELECT product_id, name, unit_price, qty, size, color, COALESCE(image_ref,'') AS image_ref
		FROM order_items WHERE order_id = ? ORDER BY name, size, color
	`, orderID)
	return items, err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.list(`SELECT `+orderColumns+` FROM orders ORDER BY datetime(created_at) DESC LIMIT ?`, limit)
}

// ListPendingPayment feeds the admin reconciliation view: orders created but
// never confirmed, e.g. abandoned popups or lost confirmation writes.
func (r *OrderRepo) ListPendingPayment() ([]domain.Order, error) {
	return r.list(`SELECT ` + orderColumns + ` FROM orders WHERE payment_status = 'pending' ORDER BY datetime(created_at) DESC`)
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	return r.list(`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY datetime(created_at) DESC`, userID)
}

func (r *OrderRepo) list(query string, args ...any) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// UpdateStatus is the admin console's fulfilment transition.
func (r *OrderRepo) UpdateStatus(orderID string, status domain.OrderStatus) error {
	res, err := r.db.Exec(`
		UPDATE orders SET order_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, string(status), orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
