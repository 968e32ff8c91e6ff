package repository

import (
	"context"
	"time"

	"invoicing/internal/model"
	"invoicing/internal/schedule"
	"invoicing/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecurringListFilter narrows a company's template listing
type RecurringListFilter struct {
	CompanyID uuid.UUID
	Active    *bool
	Page      int
	Limit     int
}

// RecurringRepository persists recurring invoice templates and their lines.
// Methods taking a companyID never return rows of another company.
type RecurringRepository interface {
	Create(ctx context.Context, tmpl *model.RecurringTemplate) error
	UpdateHeader(ctx context.Context, tmpl *model.RecurringTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.RecurringTemplate, error)
	List(ctx context.Context, filter RecurringListFilter) ([]model.RecurringTemplate, int64, error)

	// ListDue is the scheduler's cross-company query: active templates with
	// next_issue_date <= today.
	ListDue(ctx context.Context, today time.Time) ([]model.RecurringTemplate, error)

	FindLines(ctx context.Context, templateID uuid.UUID) ([]model.RecurringLine, error)
	CreateLines(ctx context.Context, lines []model.RecurringLine) error
	DeleteLines(ctx context.Context, templateID uuid.UUID) error

	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	StampIssued(ctx context.Context, id uuid.UUID, issuedAt time.Time) error

	// AdvanceSchedule moves next_issue_date from expected to next and stamps last_issued_at.
	// It reports false when the row no longer has next_issue_date = expected.
	AdvanceSchedule(ctx context.Context, id uuid.UUID, expected, next, issuedAt time.Time) (bool, error)
}

type recurringRepository struct {
	db *gorm.DB
}

func NewRecurringRepository(db *gorm.DB) RecurringRepository {
	return &recurringRepository{db: db}
}

func (r *recurringRepository) Create(ctx context.Context, tmpl *model.RecurringTemplate) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(tmpl).Error
}

func (r *recurringRepository) UpdateHeader(ctx context.Context, tmpl *model.RecurringTemplate) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(tmpl).Error
}

func (r *recurringRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RecurringTemplate{}).Error
}

func (r *recurringRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.RecurringTemplate, error) {
	var tmpl model.RecurringTemplate
	err := withDetails(GetDB(ctx, r.db)).
		First(&tmpl, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *recurringRepository) List(ctx context.Context, filter RecurringListFilter) ([]model.RecurringTemplate, int64, error) {
	var templates []model.RecurringTemplate
	var total int64

	db := GetDB(ctx, r.db)
	scoped := func(q *gorm.DB) *gorm.DB {
		q = q.Where("company_id = ?", filter.CompanyID)
		if filter.Active != nil {
			q = q.Where("is_active = ?", *filter.Active)
		}
		return q
	}

	if err := scoped(db.Model(&model.RecurringTemplate{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p := pagination.New(filter.Page, filter.Limit)
	if err := scoped(withDetails(db)).Order("created_at desc").Offset(p.Offset()).Limit(p.Limit).Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

func (r *recurringRepository) ListDue(ctx context.Context, today time.Time) ([]model.RecurringTemplate, error) {
	var templates []model.RecurringTemplate
	err := GetDB(ctx, r.db).
		Where("is_active = ? AND next_issue_date <= ?", true, today.Format(schedule.DateLayout)).
		Order("next_issue_date asc").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *recurringRepository) FindLines(ctx context.Context, templateID uuid.UUID) ([]model.RecurringLine, error) {
	var lines []model.RecurringLine
	if err := GetDB(ctx, r.db).Where("template_id = ?", templateID).Order("line_number asc").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *recurringRepository) CreateLines(ctx context.Context, lines []model.RecurringLine) error {
	if len(lines) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&lines).Error
}

func (r *recurringRepository) DeleteLines(ctx context.Context, templateID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("template_id = ?", templateID).Delete(&model.RecurringLine{}).Error
}

func (r *recurringRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return GetDB(ctx, r.db).Model(&model.RecurringTemplate{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *recurringRepository) StampIssued(ctx context.Context, id uuid.UUID, issuedAt time.Time) error {
	return GetDB(ctx, r.db).Model(&model.RecurringTemplate{}).Where("id = ?", id).Update("last_issued_at", issuedAt).Error
}

func (r *recurringRepository) AdvanceSchedule(ctx context.Context, id uuid.UUID, expected, next, issuedAt time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.RecurringTemplate{}).
		Where("id = ? AND is_active = ? AND next_issue_date = ?", id, true, expected.Format(schedule.DateLayout)).
		Updates(map[string]interface{}{
			"next_issue_date": next.Format(schedule.DateLayout),
			"last_issued_at":  issuedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").Preload("Lines", func(q *gorm.DB) *gorm.DB {
		return q.Order("line_number asc")
	})
}
