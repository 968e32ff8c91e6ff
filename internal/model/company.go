package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a tenant. All business data is owned by exactly one company.
type Company struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	VatID     string         `gorm:"type:varchar(20)" json:"vat_id"` // e.g. ATU12345678
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CompanyMember grants a user a role inside a company
type CompanyMember struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_member" json:"company_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_member" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null" json:"role"` // superadmin, admin, employee
	CreatedAt time.Time `json:"created_at"`
}

// Customer is a billing counterparty of a company
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	VatID     string         `gorm:"type:varchar(20)" json:"vat_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
