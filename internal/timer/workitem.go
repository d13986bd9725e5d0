package timer

// WorkItemClient is the capability the engine needs from an external
// work-item tracker: verify credentials and append a comment to an item.
// Implementations return typed errors (auth vs. request) so callers can
// surface a meaningful status string.
type WorkItemClient interface {
	Connect() error
	AddComment(workItemID int64, text string) error
}

// WorkItemRegistry resolves the client configured for a customer, or nil
// when the customer has no tracker connection. The engine never calls the
// tracker on its own; only the explicit comment flow does, and it runs
// outside the serialized storage queue so a slow network call cannot stall
// queued tasks.
type WorkItemRegistry interface {
	ClientFor(customerName string) WorkItemClient
}

// NopWorkItemRegistry has no connections. Used when DevOps is unconfigured.
type NopWorkItemRegistry struct{}

func (NopWorkItemRegistry) ClientFor(string) WorkItemClient { return nil }
