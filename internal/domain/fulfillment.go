package domain

const (
	FulfillmentPending   = "pending"
	FulfillmentConfirmed = "confirmed"
	FulfillmentPreparing = "preparing"
	FulfillmentShipped   = "shipped"
	FulfillmentDelivered = "delivered"
)

var fulfillmentSteps = []string{
	FulfillmentPending,
	FulfillmentConfirmed,
	FulfillmentPreparing,
	FulfillmentShipped,
	FulfillmentDelivered,
}

func fulfillmentIndex(status string) int {
	for i, s := range fulfillmentSteps {
		if s == status {
			return i
		}
	}
	return -1
}

func IsValidFulfillmentStatus(status string) bool {
	return fulfillmentIndex(status) >= 0
}

// CanAdvanceFulfillment allows moving forward any number of steps, never back.
func CanAdvanceFulfillment(from, to string) bool {
	fi, ti := fulfillmentIndex(from), fulfillmentIndex(to)
	if fi < 0 || ti < 0 {
		return false
	}
	return ti > fi
}
