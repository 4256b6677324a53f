package domain

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderPackaging  OrderStatus = "packaging"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known fulfilment status. Admin updates are
// free-form transitions but never outside this set.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderPackaging, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Customer struct {
	Name    string `json:"name" db:"customer_name"`
	Email   string `json:"email" db:"customer_email"`
	Phone   string `json:"phone" db:"customer_phone"`
	Address string `json:"address" db:"address"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
}

// OrderItem is an immutable snapshot of a cart line at submission time.
// Later catalog price changes never touch a placed order.
type OrderItem struct {
	ProductID string `json:"productId" db:"product_id"`
	Name      string `json:"name" db:"name"`
	UnitPrice int64  `json:"unitPrice" db:"unit_price"`
	Quantity  int    `json:"quantity" db:"qty"`
	Size      string `json:"size" db:"size"`
	Color     string `json:"color" db:"color"`
	ImageRef  string `json:"imageRef,omitempty" db:"image_ref"`
}

type Order struct {
	ID               string        `json:"id"`
	UserID           *string       `json:"userId,omitempty"`
	Customer         Customer      `json:"customer"`
	Items            []OrderItem   `json:"items"`
	Subtotal         int64         `json:"subtotal"`
	ShippingFee      int64         `json:"shippingFee"`
	Total            int64         `json:"total"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	OrderStatus      OrderStatus   `json:"orderStatus"`
	PaymentReference string        `json:"paymentReference,omitempty"`
	CreatedAt        string        `json:"createdAt"`
	UpdatedAt        string        `json:"updatedAt,omitempty"`
}
