package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single pooled connection also keeps
	// ":memory:" databases coherent across queries.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed catalog and settings if DB is empty (idempotent; safe to run every start)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products (catalog-owned; the order flow only reads them)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  price INTEGER NOT NULL CHECK (price >= 0),
  in_stock INTEGER NOT NULL DEFAULT 1,
  stock_qty INTEGER NOT NULL DEFAULT 0 CHECK (stock_qty >= 0),
  image_ref TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_title ON products(LOWER(title));

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT,
  address TEXT,
  city TEXT,
  state TEXT,
  subtotal INTEGER NOT NULL,
  shipping_fee INTEGER NOT NULL,
  total INTEGER NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending' CHECK (payment_status IN ('pending','paid')),
  order_status TEXT NOT NULL DEFAULT 'pending'
    CHECK (order_status IN ('pending','processing','packaging','shipped','delivered','cancelled')),
  payment_reference TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_payment_reference
  ON orders(payment_reference) WHERE payment_reference IS NOT NULL;

-- Item snapshots: price changes in the catalog never reach a placed order
CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price INTEGER NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  size TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  image_ref TEXT,
  PRIMARY KEY (order_id, product_id, size, color)
);

-- Durable key-value store (cart snapshots keyed by session)
CREATE TABLE IF NOT EXISTS kv_store(
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Storefront settings singleton
CREATE TABLE IF NOT EXISTS settings(
  id INTEGER PRIMARY KEY CHECK (id = 1),
  shipping_fee_default INTEGER NOT NULL,
  currency_symbol TEXT NOT NULL,
  updated_at TEXT
);

-- Outbound confirmation emails, drained by the notifier worker
CREATE TABLE IF NOT EXISTS notification_outbox(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  recipient TEXT NOT NULL,
  subject TEXT NOT NULL,
  body TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  sent_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON notification_outbox(sent_at) WHERE sent_at IS NULL;
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n == 0 {
		log.Println("[seed] inserting demo products")
		tx := db.MustBegin()
		tx.MustExec(`INSERT INTO products(id,title,price,in_stock,stock_qty,image_ref) VALUES
		  ('tee-heavy-black','Heavyweight Tee - Black',18500,1,42,'products/tee-heavy-black/main.jpg'),
		  ('tee-heavy-bone','Heavyweight Tee - Bone',18500,1,17,'products/tee-heavy-bone/main.jpg'),
		  ('hoodie-box-grey','Boxy Hoodie - Grey',45000,1,9,'products/hoodie-box-grey/main.jpg'),
		  ('cargo-wide-olive','Wide Cargo Pant - Olive',52000,0,0,'products/cargo-wide-olive/main.jpg')`)
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	// Settings singleton (no-op if present)
	_, err := db.Exec(`
		INSERT INTO settings(id, shipping_fee_default, currency_symbol)
		SELECT 1, 1500, '₦'
		WHERE NOT EXISTS (SELECT 1 FROM settings WHERE id = 1)
	`)
	return err
}
