package events

// Topic constants for domain events emitted by the procurement service.
const (
	TopicSupplierCreated       = "supplier.created"
	TopicSupplierStatusChanged = "supplier.compliance_changed"
	TopicOrderCreated          = "order.created"
	TopicOrderStatusChanged    = "order.status_changed"
	TopicComplianceUploaded    = "compliance.document_uploaded"
	TopicComplianceVerified    = "compliance.verified"
	TopicComplianceExpired     = "compliance.expired"
)

// DefaultTopics returns the canonical list of topics.
func DefaultTopics() []string {
	return []string{
		TopicSupplierCreated,
		TopicSupplierStatusChanged,
		TopicOrderCreated,
		TopicOrderStatusChanged,
		TopicComplianceUploaded,
		TopicComplianceVerified,
		TopicComplianceExpired,
	}
}
