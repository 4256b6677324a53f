package domain

// Product is owned by the catalog; the order flow only reads it during the
// stock check. Price is in integer major currency units.
type Product struct {
	ID        string `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Price     int64  `json:"price" db:"price"`
	InStock   bool   `json:"inStock" db:"in_stock"`
	StockQty  int    `json:"stockQty" db:"stock_qty"`
	ImageRef  string `json:"imageRef,omitempty" db:"image_ref"`
	CreatedAt string `json:"createdAt" db:"created_at"`
	UpdatedAt string `json:"updatedAt,omitempty" db:"updated_at"`
}

// Settings is the storefront singleton read by checkout.
type Settings struct {
	ShippingFeeDefault int64  `json:"shippingFeeDefault" db:"shipping_fee_default"`
	CurrencySymbol     string `json:"currencySymbol" db:"currency_symbol"`
}

// Notification is one queued confirmation email awaiting delivery.
type Notification struct {
	ID        int64   `json:"id" db:"id"`
	Recipient string  `json:"recipient" db:"recipient"`
	Subject   string  `json:"subject" db:"subject"`
	Body      string  `json:"body" db:"body"`
	CreatedAt string  `json:"createdAt" db:"created_at"`
	SentAt    *string `json:"sentAt,omitempty" db:"sent_at"`
}
