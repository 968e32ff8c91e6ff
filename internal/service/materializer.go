package service

import (
	"context"

	"invoicing/internal/apperr"
	"invoicing/internal/compensate"
	"invoicing/internal/model"
	"invoicing/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentLineResponse is a line of a generated draft invoice
type DocumentLineResponse struct {
	LineNumber  int     `json:"line_number"`
	Description string  `json:"description"`
	Quantity    string  `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   string  `json:"unit_price"`
	TaxRate     string  `json:"tax_rate"`
	ProjectID   *string `json:"project_id"`
	NetAmount   string  `json:"net_amount"`
	TaxAmount   string  `json:"tax_amount"`
}

// DocumentResponse is a generated draft invoice with computed totals
type DocumentResponse struct {
	ID                  string                 `json:"id"`
	CompanyID           string                 `json:"company_id"`
	CustomerID          string                 `json:"customer_id"`
	DocumentType        string                 `json:"document_type"`
	Status              string                 `json:"status"`
	PaymentTermsDays    int                    `json:"payment_terms_days"`
	Notes               *string                `json:"notes"`
	RecurringTemplateID string                 `json:"recurring_template_id"`
	NetTotal            string                 `json:"net_total"`
	TaxTotal            string                 `json:"tax_total"`
	GrossTotal          string                 `json:"gross_total"`
	Lines               []DocumentLineResponse `json:"lines"`
	CreatedAt           string                 `json:"created_at"`
}

// Materializer turns a template into a draft invoice. It never touches the template itself.
type Materializer interface {
	// Materialize creates one draft Document plus a copy of every template line. tmpl.Lines
	// must be loaded. On failure nothing of the attempt remains.
	Materialize(ctx context.Context, tmpl *model.RecurringTemplate) (*model.Document, error)
}

type materializer struct {
	docRepo repository.DocumentRepository
}

func NewMaterializer(docRepo repository.DocumentRepository) Materializer {
	return &materializer{docRepo: docRepo}
}

func (m *materializer) Materialize(ctx context.Context, tmpl *model.RecurringTemplate) (*model.Document, error) {
	if len(tmpl.Lines) == 0 {
		return nil, apperr.Validation("materialize", "template has no lines")
	}

	templateID := tmpl.ID
	doc := &model.Document{
		ID:                  uuid.New(),
		CompanyID:           tmpl.CompanyID,
		CustomerID:          tmpl.CustomerID,
		DocumentType:        model.DocumentTypeInvoice,
		Status:              model.DocumentStatusDraft,
		PaymentTermsDays:    tmpl.PaymentTermsDays,
		Notes:               tmpl.Notes,
		RecurringTemplateID: &templateID,
	}

	lines := make([]model.DocumentLine, 0, len(tmpl.Lines))
	for _, l := range tmpl.Lines {
		lines = append(lines, model.DocumentLine{
			ID:          uuid.New(),
			DocumentID:  doc.ID,
			CompanyID:   doc.CompanyID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			ProjectID:   l.ProjectID,
		})
	}

	err := compensate.CreateWithChildren(ctx,
		func(ctx context.Context) error { return m.docRepo.Create(ctx, doc) },
		func(ctx context.Context) error { return m.docRepo.CreateLines(ctx, lines) },
		func(ctx context.Context) error { return m.docRepo.Delete(ctx, doc.ID) },
	)
	if err != nil {
		return nil, storeErr("materialize", "template not found", err)
	}

	doc.Lines = lines
	return doc, nil
}

func mapDocumentResponse(doc *model.Document) DocumentResponse {
	net, tax := decimal.Zero, decimal.Zero
	lines := make([]DocumentLineResponse, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		lineNet, lineTax := l.NetAmount(), l.TaxAmount()
		net = net.Add(lineNet)
		tax = tax.Add(lineTax)
		lines = append(lines, DocumentLineResponse{
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity.String(),
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			TaxRate:     l.TaxRate,
			ProjectID:   uuidPtrString(l.ProjectID),
			NetAmount:   lineNet.StringFixed(2),
			TaxAmount:   lineTax.StringFixed(2),
		})
	}

	res := DocumentResponse{
		ID:               doc.ID.String(),
		CompanyID:        doc.CompanyID.String(),
		CustomerID:       doc.CustomerID.String(),
		DocumentType:     doc.DocumentType,
		Status:           doc.Status,
		PaymentTermsDays: doc.PaymentTermsDays,
		Notes:            doc.Notes,
		NetTotal:         net.StringFixed(2),
		TaxTotal:         tax.StringFixed(2),
		GrossTotal:       net.Add(tax).StringFixed(2),
		Lines:            lines,
	}
	if doc.RecurringTemplateID != nil {
		res.RecurringTemplateID = doc.RecurringTemplateID.String()
	}
	if !doc.CreatedAt.IsZero() {
		res.CreatedAt = doc.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return res
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
