package notify

// DeliveryStatus is the terminal state of one rule for one event.
type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "delivered"
	StatusSkipped   DeliveryStatus = "skipped"
	StatusFailed    DeliveryStatus = "failed"
)

// DeliveryResult is the outcome of evaluating one rule against one event.
type DeliveryResult struct {
	Rule   string
	Status DeliveryStatus
	Text   string // Rendered message text (empty when skipped)
	Err    string // Delivery error (only when failed)
}

// Rule names.
const (
	RuleReadyForReview = "ready-for-review"
	RuleMerged         = "merged"
)
