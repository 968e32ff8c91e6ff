package service

import (
	"context"
	"fmt"
	"time"

	"invoicing/internal/access"
	"invoicing/internal/apperr"
	"invoicing/internal/compensate"
	"invoicing/internal/model"
	"invoicing/internal/repository"
	"invoicing/internal/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RecurringLineRequest struct {
	Description string  `json:"description" binding:"required,max=1000"`
	Quantity    string  `json:"quantity" binding:"required"`
	Unit        string  `json:"unit" binding:"required,max=20"`
	UnitPrice   string  `json:"unit_price" binding:"required"`
	TaxRate     string  `json:"tax_rate" binding:"required,oneof=standard_20 reduced_10 reduced_13 zero"`
	ProjectID   *string `json:"project_id" binding:"omitempty,uuid"`
}

// RecurringTemplateRequest is the full header and line set of a template. Updates send the
// complete template; lines are replaced, never merged.
type RecurringTemplateRequest struct {
	CustomerID       string                 `json:"customer_id" binding:"required,uuid"`
	Name             string                 `json:"name" binding:"required,max=255"`
	Description      *string                `json:"description"`
	Frequency        string                 `json:"frequency" binding:"required,oneof=weekly biweekly monthly quarterly yearly"`
	DayOfMonth       *int                   `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	DayOfWeek        *int                   `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	PaymentTermsDays *int                   `json:"payment_terms_days" binding:"omitempty,min=0,max=365"`
	Notes            *string                `json:"notes"`
	StartDate        string                 `json:"start_date" binding:"required,datetime=2006-01-02"`
	Lines            []RecurringLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type RecurringFilter struct {
	Active *bool
	Page   int
	Limit  int
}

type RecurringLineResponse struct {
	ID          string  `json:"id"`
	LineNumber  int     `json:"line_number"`
	Description string  `json:"description"`
	Quantity    string  `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   string  `json:"unit_price"`
	TaxRate     string  `json:"tax_rate"`
	ProjectID   *string `json:"project_id"`
	NetAmount   string  `json:"net_amount"`
}

type RecurringTemplateResponse struct {
	ID               string                  `json:"id"`
	CustomerID       string                  `json:"customer_id"`
	CustomerName     string                  `json:"customer_name"`
	Name             string                  `json:"name"`
	Description      *string                 `json:"description"`
	Frequency        string                  `json:"frequency"`
	DayOfMonth       *int                    `json:"day_of_month"`
	DayOfWeek        *int                    `json:"day_of_week"`
	PaymentTermsDays int                     `json:"payment_terms_days"`
	Notes            *string                 `json:"notes"`
	StartDate        string                  `json:"start_date"`
	NextIssueDate    string                  `json:"next_issue_date"`
	IsActive         bool                    `json:"is_active"`
	LastIssuedAt     *string                 `json:"last_issued_at"`
	NetTotal         string                  `json:"net_total"`
	Lines            []RecurringLineResponse `json:"lines"`
	CreatedAt        string                  `json:"created_at"`
}

// --- Interface ---

// RecurringService manages a company's recurring invoice templates. Every call is bound to
// the caller's verified scope; mutations and GenerateNow require the superadmin role.
type RecurringService interface {
	CreateTemplate(ctx context.Context, scope access.Scope, req RecurringTemplateRequest) (RecurringTemplateResponse, error)
	UpdateTemplate(ctx context.Context, scope access.Scope, id string, req RecurringTemplateRequest) (RecurringTemplateResponse, error)
	ToggleTemplate(ctx context.Context, scope access.Scope, id string) (RecurringTemplateResponse, error)
	DeleteTemplate(ctx context.Context, scope access.Scope, id string) error
	ListTemplates(ctx context.Context, scope access.Scope, filter RecurringFilter) ([]RecurringTemplateResponse, int64, error)
	GetTemplate(ctx context.Context, scope access.Scope, id string) (RecurringTemplateResponse, error)
	GenerateNow(ctx context.Context, scope access.Scope, id string) (DocumentResponse, error)
}

type recurringService struct {
	recurringRepo repository.RecurringRepository
	customerRepo  repository.CustomerRepository
	documentRepo  repository.DocumentRepository
	auditRepo     repository.AuditRepository
	materializer  Materializer
	txManager     repository.TransactionManager
	location      *time.Location
	now           func() time.Time
}

func NewRecurringService(
	recurringRepo repository.RecurringRepository,
	customerRepo repository.CustomerRepository,
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	materializer Materializer,
	txManager repository.TransactionManager,
	location *time.Location,
) RecurringService {
	if location == nil {
		location = time.UTC
	}
	return &recurringService{
		recurringRepo: recurringRepo,
		customerRepo:  customerRepo,
		documentRepo:  documentRepo,
		auditRepo:     auditRepo,
		materializer:  materializer,
		txManager:     txManager,
		location:      location,
		now:           time.Now,
	}
}

// --- Implementation ---

func (s *recurringService) CreateTemplate(ctx context.Context, scope access.Scope, req RecurringTemplateRequest) (RecurringTemplateResponse, error) {
	const op = "recurring.create"
	if err := access.RequireSuperadmin(scope, op); err != nil {
		return RecurringTemplateResponse{}, err
	}

	in, err := s.parseRequest(ctx, op, scope, req)
	if err != nil {
		return RecurringTemplateResponse{}, err
	}

	tmpl := &model.RecurringTemplate{
		ID:        uuid.New(),
		CompanyID: scope.CompanyID,
		IsActive:  true,
		CreatedBy: scope.UserID,
	}
	in.applyTo(tmpl)
	lines := in.linesFor(tmpl.ID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		err := compensate.CreateWithChildren(txCtx,
			func(ctx context.Context) error { return s.recurringRepo.Create(ctx, tmpl) },
			func(ctx context.Context) error { return s.recurringRepo.CreateLines(ctx, lines) },
			func(ctx context.Context) error { return s.recurringRepo.Delete(ctx, tmpl.ID) },
		)
		if err != nil {
			return storeErr(op, "template not found", err)
		}

		return s.audit(txCtx, scope, model.ActionCreateRecurringTemplate, tmpl, map[string]interface{}{
			"frequency":       tmpl.Frequency,
			"next_issue_date": tmpl.NextIssueDate.Format(schedule.DateLayout),
			"lines":           len(lines),
		})
	})
	if err != nil {
		return RecurringTemplateResponse{}, err
	}

	return s.GetTemplate(ctx, scope, tmpl.ID.String())
}

func (s *recurringService) UpdateTemplate(ctx context.Context, scope access.Scope, id string, req RecurringTemplateRequest) (RecurringTemplateResponse, error) {
	const op = "recurring.update"
	if err := access.RequireSuperadmin(scope, op); err != nil {
		return RecurringTemplateResponse{}, err
	}

	tmpl, err := s.findTemplate(ctx, op, scope, id)
	if err != nil {
		return RecurringTemplateResponse{}, err
	}

	in, err := s.parseRequest(ctx, op, scope, req)
	if err != nil {
		return RecurringTemplateResponse{}, err
	}

	in.applyTo(tmpl)
	lines := in.linesFor(tmpl.ID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Full replace: drop the old set, then insert the new one numbered 1..N. The header
		// goes last so a failed line write never leaves the new header behind.
		if err := s.recurringRepo.DeleteLines(txCtx, tmpl.ID); err != nil {
			return storeErr(op, "template not found", err)
		}
		if err := s.recurringRepo.CreateLines(txCtx, lines); err != nil {
			return storeErr(op, "template not found", err)
		}
		if err := s.recurringRepo.UpdateHeader(txCtx, tmpl); err != nil {
			return storeErr(op, "template not found", err)
		}

		return s.audit(txCtx, scope, model.ActionUpdateRecurringTemplate, tmpl, map[string]interface{}{
			"frequency":       tmpl.Frequency,
			"next_issue_date": tmpl.NextIssueDate.Format(schedule.DateLayout),
			"lines":           len(lines),
		})
	})
	if err != nil {
		return RecurringTemplateResponse{}, err
	}

	return s.GetTemplate(ctx, scope, tmpl.ID.String())
}

func (s *recurringService) ToggleTemplate(ctx context.Context, scope access.Scope, id string) (RecurringTemplateResponse, error) {
	const op = "recurring.toggle"
	if err := access.RequireSuperadmin(scope, op); err != nil {
		return RecurringTemplateResponse{}, err
	}

	tmpl, err := s.findTemplate(ctx, op, scope, id)
	if err != nil {
		return RecurringTemplateResponse{}, err
	}

	active := !tmpl.IsActive
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.recurringRepo.SetActive(txCtx, tmpl.ID, active); err != nil {
			return storeErr(op, "template not found", err)
		}
		return s.audit(txCtx, scope, model.ActionToggleRecurringTemplate, tmpl, map[string]interface{}{
			"is_active": active,
		})
	})
	if err != nil {
		return RecurringTemplateResponse{}, err
	}

	tmpl.IsActive = active
	return mapTemplateResponse(tmpl), nil
}

func (s *recurringService) DeleteTemplate(ctx context.Context, scope access.Scope, id string) error {
	const op = "recurring.delete"
	if err := access.RequireSuperadmin(scope, op); err != nil {
		return err
	}

	tmpl, err := s.findTemplate(ctx, op, scope, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		used, err := s.documentRepo.CountByTemplate(txCtx, tmpl.ID)
		if err != nil {
			return storeErr(op, "template not found", err)
		}
		if used > 0 {
			return ErrTemplateInUse
		}

		if err := s.recurringRepo.DeleteLines(txCtx, tmpl.ID); err != nil {
			return storeErr(op, "template not found", err)
		}
		if err := s.recurringRepo.Delete(txCtx, tmpl.ID); err != nil {
			return storeErr(op, "template not found", err)
		}
		return s.audit(txCtx, scope, model.ActionDeleteRecurringTemplate, tmpl, nil)
	})
}

func (s *recurringService) ListTemplates(ctx context.Context, scope access.Scope, filter RecurringFilter) ([]RecurringTemplateResponse, int64, error) {
	const op = "recurring.list"
	if err := access.RequireMember(scope, op); err != nil {
		return nil, 0, err
	}

	templates, total, err := s.recurringRepo.List(ctx, repository.RecurringListFilter{
		CompanyID: scope.CompanyID,
		Active:    filter.Active,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, 0, storeErr(op, "template not found", err)
	}

	res := make([]RecurringTemplateResponse, 0, len(templates))
	for i := range templates {
		res = append(res, mapTemplateResponse(&templates[i]))
	}
	return res, total, nil
}

func (s *recurringService) GetTemplate(ctx context.Context, scope access.Scope, id string) (RecurringTemplateResponse, error) {
	const op = "recurring.get"
	if err := access.RequireMember(scope, op); err != nil {
		return RecurringTemplateResponse{}, err
	}

	tmpl, err := s.findTemplate(ctx, op, scope, id)
	if err != nil {
		return RecurringTemplateResponse{}, err
	}
	return mapTemplateResponse(tmpl), nil
}

// GenerateNow materializes a template on demand. Unlike the scheduler it leaves
// next_issue_date alone and only stamps last_issued_at.
func (s *recurringService) GenerateNow(ctx context.Context, scope access.Scope, id string) (DocumentResponse, error) {
	const op = "recurring.generate"
	if err := access.RequireSuperadmin(scope, op); err != nil {
		return DocumentResponse{}, err
	}

	tmpl, err := s.findTemplate(ctx, op, scope, id)
	if err != nil {
		return DocumentResponse{}, err
	}

	var doc *model.Document
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		created, err := s.materializer.Materialize(txCtx, tmpl)
		if err != nil {
			return err
		}
		doc = created

		if err := s.recurringRepo.StampIssued(txCtx, tmpl.ID, s.now()); err != nil {
			return storeErr(op, "template not found", err)
		}
		return s.audit(txCtx, scope, model.ActionGenerateRecurringInvoice, tmpl, map[string]interface{}{
			"document_id": doc.ID.String(),
		})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	return mapDocumentResponse(doc), nil
}

// --- Helpers ---

func (s *recurringService) findTemplate(ctx context.Context, op string, scope access.Scope, id string) (*model.RecurringTemplate, error) {
	templateID, err := parseID(op, "template id", id)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.recurringRepo.FindByID(ctx, scope.CompanyID, templateID)
	if err != nil {
		return nil, storeErr(op, "recurring template not found", err)
	}
	return tmpl, nil
}

func (s *recurringService) audit(ctx context.Context, scope access.Scope, action string, tmpl *model.RecurringTemplate, details map[string]interface{}) error {
	userID := scope.UserID
	if err := recordAudit(ctx, s.auditRepo, tmpl.CompanyID, &userID, action, tmpl.ID.String(), tmpl.Name, details); err != nil {
		return storeErr("audit.log", "audit log not found", err)
	}
	return nil
}

// templateInput is a validated request with parsed values.
type templateInput struct {
	customerID       uuid.UUID
	name             string
	description      *string
	frequency        schedule.Frequency
	dayOfMonth       *int
	dayOfWeek        *int
	paymentTermsDays int
	notes            *string
	startDate        time.Time
	nextIssueDate    time.Time
	lines            []model.RecurringLine
}

func (s *recurringService) parseRequest(ctx context.Context, op string, scope access.Scope, req RecurringTemplateRequest) (templateInput, error) {
	if err := validateRequest(op, req); err != nil {
		return templateInput{}, err
	}

	freq, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		return templateInput{}, apperr.Validation(op, err.Error())
	}
	if req.DayOfMonth != nil && !freq.MonthBased() {
		return templateInput{}, apperr.Validation(op, "day_of_month is only allowed for monthly, quarterly and yearly templates")
	}
	if req.DayOfWeek != nil && !freq.WeekBased() {
		return templateInput{}, apperr.Validation(op, "day_of_week is only allowed for weekly and biweekly templates")
	}

	startDate, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		return templateInput{}, apperr.Validation(op, "start_date must be a date in format YYYY-MM-DD")
	}

	customerID, err := parseID(op, "customer_id", req.CustomerID)
	if err != nil {
		return templateInput{}, err
	}
	if _, err := s.customerRepo.FindByID(ctx, scope.CompanyID, customerID); err != nil {
		return templateInput{}, storeErr(op, "customer not found", err)
	}

	lines, err := parseLines(op, req.Lines)
	if err != nil {
		return templateInput{}, err
	}

	today := schedule.Today(s.now(), s.location)
	next, err := schedule.NextIssueDate(freq, startDate, today, req.DayOfMonth)
	if err != nil {
		return templateInput{}, apperr.Validation(op, err.Error())
	}

	terms := 14
	if req.PaymentTermsDays != nil {
		terms = *req.PaymentTermsDays
	}

	return templateInput{
		customerID:       customerID,
		name:             req.Name,
		description:      req.Description,
		frequency:        freq,
		dayOfMonth:       req.DayOfMonth,
		dayOfWeek:        req.DayOfWeek,
		paymentTermsDays: terms,
		notes:            req.Notes,
		startDate:        startDate,
		nextIssueDate:    next,
		lines:            lines,
	}, nil
}

func parseLines(op string, reqs []RecurringLineRequest) ([]model.RecurringLine, error) {
	lines := make([]model.RecurringLine, 0, len(reqs))
	for i, l := range reqs {
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil || !qty.IsPositive() {
			return nil, apperr.Validation(op, fmt.Sprintf("lines[%d].quantity must be a number greater than 0", i))
		}
		price, err := decimal.NewFromString(l.UnitPrice)
		if err != nil || price.IsNegative() {
			return nil, apperr.Validation(op, fmt.Sprintf("lines[%d].unit_price must be a number of at least 0", i))
		}
		if !model.ValidTaxRate(l.TaxRate) {
			return nil, apperr.Validation(op, fmt.Sprintf("lines[%d].tax_rate is unknown", i))
		}

		var projectID *uuid.UUID
		if l.ProjectID != nil && *l.ProjectID != "" {
			parsed, err := uuid.Parse(*l.ProjectID)
			if err != nil {
				return nil, apperr.Validation(op, fmt.Sprintf("lines[%d].project_id is invalid", i))
			}
			projectID = &parsed
		}

		lines = append(lines, model.RecurringLine{
			LineNumber:  i + 1,
			Description: l.Description,
			Quantity:    qty,
			Unit:        l.Unit,
			UnitPrice:   price,
			TaxRate:     l.TaxRate,
			ProjectID:   projectID,
		})
	}
	return lines, nil
}

func (in templateInput) applyTo(tmpl *model.RecurringTemplate) {
	tmpl.CustomerID = in.customerID
	tmpl.Customer = nil
	tmpl.Name = in.name
	tmpl.Description = in.description
	tmpl.Frequency = string(in.frequency)
	tmpl.DayOfMonth = in.dayOfMonth
	tmpl.DayOfWeek = in.dayOfWeek
	tmpl.PaymentTermsDays = in.paymentTermsDays
	tmpl.Notes = in.notes
	tmpl.StartDate = in.startDate
	tmpl.NextIssueDate = in.nextIssueDate
	tmpl.Lines = nil
}

// linesFor returns fresh line rows owned by templateID.
func (in templateInput) linesFor(templateID uuid.UUID) []model.RecurringLine {
	lines := make([]model.RecurringLine, len(in.lines))
	for i, l := range in.lines {
		l.ID = uuid.New()
		l.TemplateID = templateID
		lines[i] = l
	}
	return lines
}

func mapTemplateResponse(t *model.RecurringTemplate) RecurringTemplateResponse {
	net := decimal.Zero
	lines := make([]RecurringLineResponse, 0, len(t.Lines))
	for _, l := range t.Lines {
		lineNet := l.NetAmount()
		net = net.Add(lineNet)
		lines = append(lines, RecurringLineResponse{
			ID:          l.ID.String(),
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity.String(),
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			TaxRate:     l.TaxRate,
			ProjectID:   uuidPtrString(l.ProjectID),
			NetAmount:   lineNet.StringFixed(2),
		})
	}

	res := RecurringTemplateResponse{
		ID:               t.ID.String(),
		CustomerID:       t.CustomerID.String(),
		Name:             t.Name,
		Description:      t.Description,
		Frequency:        t.Frequency,
		DayOfMonth:       t.DayOfMonth,
		DayOfWeek:        t.DayOfWeek,
		PaymentTermsDays: t.PaymentTermsDays,
		Notes:            t.Notes,
		StartDate:        t.StartDate.Format(schedule.DateLayout),
		NextIssueDate:    t.NextIssueDate.Format(schedule.DateLayout),
		IsActive:         t.IsActive,
		NetTotal:         net.StringFixed(2),
		Lines:            lines,
		CreatedAt:        t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if t.Customer != nil {
		res.CustomerName = t.Customer.Name
	}
	if t.LastIssuedAt != nil {
		ts := t.LastIssuedAt.Format(time.RFC3339)
		res.LastIssuedAt = &ts
	}
	return res
}
