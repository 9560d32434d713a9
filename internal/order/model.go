package order

import "time"

// Order statuses. Payment status is tracked separately because the gateway
// reports on the payment, not the order.
const (
	StatusPending       = "pending"
	StatusPaid          = "paid"
	StatusPaymentFailed = "payment_failed"
	StatusShipped       = "shipped"
	StatusCanceled      = "canceled"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type Order struct {
	ID            string `json:"id"`
	TrackingCode  string `json:"tracking_code"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	// PaymentReference is the join key to gateway-reported transactions.
	PaymentReference string    `json:"payment_reference,omitempty"`
	Total            string    `json:"total"` // NUMERIC -> string
	CustomerEmail    string    `json:"customer_email,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Item struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}
