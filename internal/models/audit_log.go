package models

// Audit actions recorded by the engine.
const (
	AuditActionTransferIn     = "TRANSFER_IN"
	AuditActionTransferOut    = "TRANSFER_OUT"
	AuditActionActivateBudget = "ACTIVATE_BUDGET"
	AuditActionCloseBudget    = "CLOSE_BUDGET"
	AuditActionArchiveBudget  = "ARCHIVE_BUDGET"
	AuditActionCreateBudget   = "CREATE_BUDGET"
	AuditActionUpdateBudget   = "UPDATE_BUDGET"
	AuditActionRemoveBudget   = "REMOVE_BUDGET"
)

// AuditLog records every state-changing action with before/after values.
// Append-only; the engine never reads entries back.
type AuditLog struct {
	Base
	ActorID      uint   `gorm:"not null;index" json:"actor_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   uint   `gorm:"index" json:"resource_id"`
	Reference    string `gorm:"index" json:"reference,omitempty"`
	Reason       string `json:"reason,omitempty"`
	IPAddress    string `json:"ip_address,omitempty"`
	Changes      string `json:"changes,omitempty"`
}
