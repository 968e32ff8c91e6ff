package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document type and status written by the recurring engine. Other values belong to the
// documents subsystem.
const (
	DocumentTypeInvoice = "invoice"
	DocumentStatusDraft = "draft"
)

// Document is an invoice, quote or credit note. Numbering, issuing and payment belong to
// the documents subsystem; the recurring engine only creates drafts.
type Document struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	CustomerID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"customer_id"`
	DocumentType        string         `gorm:"type:varchar(20);not null" json:"document_type"`
	Status              string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	DocumentNumber      *string        `gorm:"type:varchar(30)" json:"document_number"` // assigned on issue
	PaymentTermsDays    int            `gorm:"not null;default:14" json:"payment_terms_days"`
	Notes               *string        `gorm:"type:text" json:"notes"`
	RecurringTemplateID *uuid.UUID     `gorm:"type:uuid;index" json:"recurring_template_id"`
	Lines               []DocumentLine `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// DocumentLine is a line item of a Document.
type DocumentLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	LineNumber  int             `gorm:"not null" json:"line_number"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(20);not null" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TaxRate     string          `gorm:"type:varchar(20);not null" json:"tax_rate"`
	ProjectID   *uuid.UUID      `gorm:"type:uuid;index" json:"project_id"`
}

func (l DocumentLine) NetAmount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// TaxAmount applies the line's Austrian VAT category to the net amount, rounded to cents.
func (l DocumentLine) TaxAmount() decimal.Decimal {
	return l.NetAmount().Mul(TaxRatePercent(l.TaxRate)).Div(decimal.NewFromInt(100)).Round(2)
}
