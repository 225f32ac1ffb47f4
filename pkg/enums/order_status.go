package enums

import "fmt"

// OrderStatus is the server-assigned lifecycle state of an order. Transitions
// are monotonic: clients only request them, the service validates them.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusAccepted,
	OrderStatusDelivered,
	OrderStatusRejected,
	OrderStatusCancelled,
}

// orderStatusTransitions maps each status to the statuses reachable from it.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:      {OrderStatusAccepted, OrderStatusRejected, OrderStatusCancelled},
	OrderStatusAccepted: {OrderStatusDelivered},
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (o OrderStatus) IsTerminal() bool {
	return len(orderStatusTransitions[o]) == 0
}

// CanTransition reports whether the order may move from o to target.
func (o OrderStatus) CanTransition(target OrderStatus) bool {
	for _, candidate := range orderStatusTransitions[o] {
		if candidate == target {
			return true
		}
	}
	return false
}

// Editable reports whether the order's line items may still be amended.
// Edit, delete, accept and reject are only valid while the order is new.
func (o OrderStatus) Editable() bool {
	return o == OrderStatusNew
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
