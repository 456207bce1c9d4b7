package domain

// OrderStatus represents the lifecycle of a WhatsApp order
type OrderStatus string

const (
	// OrderStatusClicked - customer tapped the WhatsApp button; nothing confirmed yet
	OrderStatusClicked OrderStatus = "clicked"
	// OrderStatusConfirmed - staff confirmed the order with the customer
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusFulfilled - handed over / delivered
	OrderStatusFulfilled OrderStatus = "fulfilled"
	// OrderStatusCancelled - dropped by staff or customer
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in display order
var OrderStatuses = []OrderStatus{
	OrderStatusClicked,
	OrderStatusConfirmed,
	OrderStatusFulfilled,
	OrderStatusCancelled,
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusClicked,
		OrderStatusConfirmed,
		OrderStatusFulfilled,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid.
// Re-applying the current status is allowed so repeated staff actions stay idempotent.
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	if !newStatus.IsValid() {
		return false
	}
	if s == newStatus {
		return true
	}

	switch s {
	case OrderStatusClicked:
		return newStatus == OrderStatusConfirmed ||
			newStatus == OrderStatusFulfilled ||
			newStatus == OrderStatusCancelled
	case OrderStatusConfirmed:
		return newStatus == OrderStatusFulfilled ||
			newStatus == OrderStatusCancelled
	case OrderStatusFulfilled, OrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// SyncStatus is the catalog sync state stored in store_settings
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusError   SyncStatus = "error"
)

// WebhookEventType is the event_type sent by Zoho Inventory webhooks
type WebhookEventType string

const (
	WebhookEventItemCreated WebhookEventType = "item_created"
	WebhookEventItemUpdated WebhookEventType = "item_updated"
	WebhookEventItemDeleted WebhookEventType = "item_deleted"
)

// StaffRole controls which admin endpoints a staff member may reach
type StaffRole string

const (
	// StaffRoleAdmin has full access
	StaffRoleAdmin StaffRole = "admin"
	// StaffRoleStaff can view the dashboard and manage orders
	StaffRoleStaff StaffRole = "staff"
	// StaffRolePartner has the same restricted access as staff
	StaffRolePartner StaffRole = "partner"
)

// IsValid checks if the role is known
func (r StaffRole) IsValid() bool {
	switch r {
	case StaffRoleAdmin, StaffRoleStaff, StaffRolePartner:
		return true
	default:
		return false
	}
}

// Settings keys in the store_settings table
const (
	SettingZohoAccessToken    = "zoho_access_token"
	SettingZohoRefreshToken   = "zoho_refresh_token"
	SettingZohoTokenExpiresAt = "zoho_token_expires_at"
	SettingZohoSyncStatus     = "zoho_sync_status"
	SettingZohoSyncError      = "zoho_sync_error"
	SettingZohoLastSyncAt     = "zoho_last_sync_at"
	SettingZohoWebhookToken   = "zoho_webhook_token"
	SettingWhatsAppNumber     = "whatsapp_number"
	SettingStoreName          = "store_name"
)
