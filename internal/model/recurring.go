package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringTemplate is a recurring billing agreement with a customer. The scheduler turns it
// into a draft invoice every time NextIssueDate is due.
type RecurringTemplate struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer         *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Name             string          `gorm:"type:varchar(255);not null" json:"name"`
	Description      *string         `gorm:"type:text" json:"description"`
	Frequency        string          `gorm:"type:varchar(20);not null" json:"frequency"` // weekly, biweekly, monthly, quarterly, yearly
	DayOfMonth       *int            `gorm:"type:smallint" json:"day_of_month"`          // monthly/quarterly/yearly only
	DayOfWeek        *int            `gorm:"type:smallint" json:"day_of_week"`           // weekly/biweekly only, 0 = Sunday
	PaymentTermsDays int             `gorm:"not null;default:14" json:"payment_terms_days"`
	Notes            *string         `gorm:"type:text" json:"notes"`
	StartDate        time.Time       `gorm:"type:date;not null" json:"start_date"`
	NextIssueDate    time.Time       `gorm:"type:date;not null;index:idx_recurring_due,priority:2" json:"next_issue_date"`
	IsActive         bool            `gorm:"not null;default:true;index:idx_recurring_due,priority:1" json:"is_active"`
	LastIssuedAt     *time.Time      `json:"last_issued_at"`
	CreatedBy        uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	Lines            []RecurringLine `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (RecurringTemplate) TableName() string {
	return "recurring_invoice_templates"
}

// RecurringLine is one billable line of a template. Lines are replaced as a whole set on
// every edit.
type RecurringLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TemplateID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recurring_line_number" json:"template_id"`
	LineNumber  int             `gorm:"not null;uniqueIndex:idx_recurring_line_number" json:"line_number"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(20);not null" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TaxRate     string          `gorm:"type:varchar(20);not null" json:"tax_rate"` // standard_20, reduced_10, reduced_13, zero
	ProjectID   *uuid.UUID      `gorm:"type:uuid;index" json:"project_id"`
}

func (RecurringLine) TableName() string {
	return "recurring_invoice_lines"
}

// NetAmount is quantity * unit price.
func (l RecurringLine) NetAmount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}
