package domain

type AuditAction string

const (
	ActionLogin    AuditAction = "LOGIN"
	ActionLogout   AuditAction = "LOGOUT"
	ActionCreate   AuditAction = "CREATE"
	ActionUpdate   AuditAction = "UPDATE"
	ActionDelete   AuditAction = "DELETE"
	ActionView     AuditAction = "VIEW"
	ActionSale     AuditAction = "SALE"
	ActionHomepage AuditAction = "HOMEPAGE"
)

// AuditEvent is an append-only record of a user action. UserID and ShopID are
// zero when unknown (e.g. a failed login).
type AuditEvent struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id,omitempty"`
	ShopID    int64          `json:"shop_id,omitempty"`
	Action    AuditAction    `json:"action"`
	Model     string         `json:"model,omitempty"`
	ObjectID  string         `json:"object_id,omitempty"`
	Details   map[string]any `json:"details"`
	IP        string         `json:"ip_address,omitempty"`
	CreatedAt string         `json:"timestamp"`
}
