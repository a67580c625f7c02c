package models

import (
	"fmt"
	"strings"
)

// OrderStatus is the closed set of states an order can be in. Source tables
// store the status as free text; rows with a status outside this set are
// rejected at the parse boundary instead of being passed through.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = map[string]OrderStatus{
	"pending":    StatusPending,
	"confirmed":  StatusConfirmed,
	"processing": StatusProcessing,
	"shipped":    StatusShipped,
	"delivered":  StatusDelivered,
	"cancelled":  StatusCancelled,
}

// ParseOrderStatus normalizes a raw status string into the enum.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	if status, ok := orderStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status, nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// WithdrawalStatus tracks an affiliate withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
	WithdrawalPaid     WithdrawalStatus = "paid"
)

// CanTransition reports whether a withdrawal may move from its current status
// to the requested one. Pending splits into approved or rejected; only
// approved requests can be marked paid.
func (s WithdrawalStatus) CanTransition(to WithdrawalStatus) bool {
	switch s {
	case WithdrawalPending:
		return to == WithdrawalApproved || to == WithdrawalRejected
	case WithdrawalApproved:
		return to == WithdrawalPaid
	default:
		return false
	}
}

// ParseWithdrawalStatus normalizes a raw withdrawal status string.
func ParseWithdrawalStatus(raw string) (WithdrawalStatus, error) {
	switch WithdrawalStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case WithdrawalPending:
		return WithdrawalPending, nil
	case WithdrawalApproved:
		return WithdrawalApproved, nil
	case WithdrawalRejected:
		return WithdrawalRejected, nil
	case WithdrawalPaid:
		return WithdrawalPaid, nil
	}
	return "", fmt.Errorf("unknown withdrawal status %q", raw)
}
