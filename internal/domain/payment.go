package domain

import "fmt"

type OrderStatus string

const (
	OrderReceived   OrderStatus = "Received"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderReceived, OrderProcessing, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// Payment is a completed checkout as saved by the storefront. Only email and
// orderStatus are interpreted; everything else is stored as sent.
type Payment struct {
	ID          string         `bson:"_id,omitempty" json:"-"`
	Email       string         `bson:"email" json:"-"`
	OrderStatus OrderStatus    `bson:"orderStatus,omitempty" json:"-"`
	Fields      map[string]any `bson:",inline" json:"-"`
}

func (p Payment) MarshalJSON() ([]byte, error) {
	fixed := map[string]any{"email": p.Email}
	if p.ID != "" {
		fixed["_id"] = p.ID
	}
	if p.OrderStatus != "" {
		fixed["orderStatus"] = p.OrderStatus
	}
	return marshalDocument(p.Fields, fixed)
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	fields, err := unmarshalDocument(data)
	if err != nil {
		return err
	}
	// ids are assigned by the store
	delete(fields, "_id")
	email, err := takeString(fields, "email")
	if err != nil {
		return err
	}
	status, err := takeString(fields, "orderStatus")
	if err != nil {
		return err
	}
	if status != "" && !OrderStatus(status).Valid() {
		return fmt.Errorf("%w: unknown order status %q", ErrInvalidRequest, status)
	}
	p.Email = email
	p.OrderStatus = OrderStatus(status)
	p.Fields = fields
	return nil
}
