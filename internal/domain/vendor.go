package domain

import "time"

const (
	VendorStatusPending   = "pending"
	VendorStatusApproved  = "approved"
	VendorStatusSuspended = "suspended"
)

// Vendor is a seller account. A user holds at most one.
type Vendor struct {
	ID                  string
	UserID              string
	BusinessName        string
	BusinessDescription string
	BusinessLogoURL     *string
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CanChangeVendorStatus allows an admin to approve pending or suspended
// vendors and to suspend pending or approved ones.
func CanChangeVendorStatus(from, to string) bool {
	switch to {
	case VendorStatusApproved:
		return from == VendorStatusPending || from == VendorStatusSuspended
	case VendorStatusSuspended:
		return from == VendorStatusPending || from == VendorStatusApproved
	}
	return false
}

// VendorTransaction is one order as seen by a vendor: only the vendor's own
// lines count towards VendorAmount.
type VendorTransaction struct {
	OrderID       string
	VendorAmount  int64
	PaymentStatus string
	CreatedAt     time.Time
}
