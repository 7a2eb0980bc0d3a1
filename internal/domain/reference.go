package domain

import "strings"

// referenceSeparator splits a payment reference into <orderId>.<attempt>.
// Order ids are UUIDs and never contain it.
const referenceSeparator = "."

// NewPaymentReference builds the reference handed to the gateway for one
// payment attempt on orderID.
func NewPaymentReference(orderID string, attempt string) string {
	return orderID + referenceSeparator + attempt
}

// ReferenceOrderID returns the order id embedded in reference.
func ReferenceOrderID(reference string) (string, bool) {
	i := strings.LastIndex(reference, referenceSeparator)
	if i <= 0 || i == len(reference)-1 {
		return "", false
	}
	return reference[:i], true
}

// ReferenceBelongsTo reports whether reference was issued for orderID.
func ReferenceBelongsTo(reference string, orderID string) bool {
	id, ok := ReferenceOrderID(reference)
	return ok && id == orderID
}
