package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionCreateRecurringTemplate   = "CREATE_RECURRING_TEMPLATE"
	ActionUpdateRecurringTemplate   = "UPDATE_RECURRING_TEMPLATE"
	ActionToggleRecurringTemplate   = "TOGGLE_RECURRING_TEMPLATE"
	ActionDeleteRecurringTemplate   = "DELETE_RECURRING_TEMPLATE"
	ActionGenerateRecurringInvoice  = "GENERATE_RECURRING_INVOICE"
	ActionScheduledRecurringInvoice = "SCHEDULED_RECURRING_INVOICE"
)

// AuditLog tracks Who, What, and When for changes to a company's data
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"` // nil for the scheduler
	User       *User          `gorm:"foreignKey:UserID" json:"user"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
