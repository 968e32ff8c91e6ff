package repository

import (
	"context"

	"invoicing/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipRepository resolves which role a user holds in a company
type MembershipRepository interface {
	Find(ctx context.Context, companyID, userID uuid.UUID) (*model.CompanyMember, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Find(ctx context.Context, companyID, userID uuid.UUID) (*model.CompanyMember, error) {
	var member model.CompanyMember
	if err := GetDB(ctx, r.db).First(&member, "company_id = ? AND user_id = ?", companyID, userID).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
