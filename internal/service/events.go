package service

// EventSink receives settlement events for fan-out to stream subscribers.
// Sinks must not block: services publish inline with the settlement path.
type EventSink interface {
	Publish(eventType string, payload interface{})
}

const (
	EventSaleInitialized   = "sale_initialized"
	EventPurchaseSettled   = "purchase_settled"
	EventPolicyInitialized = "policy_initialized"
	EventPolicyUpdated     = "policy_updated"
	EventTransferPermitted = "transfer_permitted"
	EventTransferRejected  = "transfer_rejected"
)
