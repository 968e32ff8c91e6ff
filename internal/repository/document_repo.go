package repository

import (
	"context"

	"invoicing/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	CreateLines(ctx context.Context, lines []model.DocumentLine) error
	// Delete removes a document together with its lines.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Document, error)
	CountByTemplate(ctx context.Context, templateID uuid.UUID) (int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(doc).Error
}

func (r *documentRepository) CreateLines(ctx context.Context, lines []model.DocumentLine) error {
	if len(lines) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&lines).Error
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("document_id = ?", id).Delete(&model.DocumentLine{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Document{}).Error
}

func (r *documentRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := GetDB(ctx, r.db).
		Preload("Lines", func(q *gorm.DB) *gorm.DB { return q.Order("line_number asc") }).
		First(&doc, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) CountByTemplate(ctx context.Context, templateID uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Document{}).Where("recurring_template_id = ?", templateID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
