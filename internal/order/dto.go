package order

// CreateOrderItem payload de ítem.
type CreateOrderItem struct {
	ProductName string `json:"product_name" example:"Mechanical Keyboard"`
	Quantity    int    `json:"quantity"     example:"2"`
	Price       string `json:"price"        example:"199.90"`
}

// CreateOrderRequest payload de creación de orden.
type CreateOrderRequest struct {
	CustomerEmail string            `json:"customer_email" example:"buyer@example.com"`
	Items         []CreateOrderItem `json:"items"`
}

// BulkDeleteRequest identifies the orders an admin wants removed.
type BulkDeleteRequest struct {
	OrderIDs []string `json:"order_ids"`
}
