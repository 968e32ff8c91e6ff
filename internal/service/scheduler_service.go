package service

import (
	"context"
	"errors"
	"time"

	"invoicing/internal/apperr"
	"invoicing/internal/lock"
	"invoicing/internal/model"
	"invoicing/internal/repository"
	"invoicing/internal/schedule"

	"github.com/rs/zerolog"
)

// Run result statuses
const (
	RunStatusCreated = "created"
	RunStatusError   = "error"
	RunStatusSkipped = "skipped"
)

const schedulerLockKey = "recurring-invoices"

// errAlreadyAdvanced means another run moved next_issue_date between our read and our write.
var errAlreadyAdvanced = errors.New("schedule already advanced by another run")

// --- DTOs ---

type RunResult struct {
	TemplateID    string  `json:"template_id"`
	TemplateName  string  `json:"template_name"`
	DocumentID    *string `json:"document_id"`
	Status        string  `json:"status"` // created, error, skipped
	Error         string  `json:"error,omitempty"`
	NextIssueDate string  `json:"next_issue_date,omitempty"`
}

type RunSummary struct {
	RunDate    string      `json:"run_date"`
	Processed  int         `json:"processed"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Skipped    int         `json:"skipped"`
	Results    []RunResult `json:"results"`
}

type DueTemplateResponse struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	Name          string `json:"name"`
	Frequency     string `json:"frequency"`
	NextIssueDate string `json:"next_issue_date"`
}

type SchedulerOptions struct {
	// Location decides which calendar day "today" is.
	Location *time.Location
	LockTTL  time.Duration
	Logger   zerolog.Logger
}

// --- Interface ---

// SchedulerService is the daily sweep over due templates. It runs with service privileges
// across all companies and has no caller scope.
type SchedulerService interface {
	// RunDue materializes every active template with next_issue_date <= today, one at a
	// time. A zero today means the current date in the configured location.
	RunDue(ctx context.Context, today time.Time) (RunSummary, error)
	// ListDue returns what RunDue would process without writing anything.
	ListDue(ctx context.Context, today time.Time) ([]DueTemplateResponse, error)
}

type schedulerService struct {
	recurringRepo repository.RecurringRepository
	documentRepo  repository.DocumentRepository
	auditRepo     repository.AuditRepository
	materializer  Materializer
	txManager     repository.TransactionManager
	locker        lock.Locker
	publisher     EventPublisher
	location      *time.Location
	lockTTL       time.Duration
	log           zerolog.Logger
	now           func() time.Time
}

func NewSchedulerService(
	recurringRepo repository.RecurringRepository,
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	materializer Materializer,
	txManager repository.TransactionManager,
	locker lock.Locker,
	publisher EventPublisher,
	opts SchedulerOptions,
) SchedulerService {
	if locker == nil {
		locker = lock.NewNoopLocker()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 15 * time.Minute
	}
	return &schedulerService{
		recurringRepo: recurringRepo,
		documentRepo:  documentRepo,
		auditRepo:     auditRepo,
		materializer:  materializer,
		txManager:     txManager,
		locker:        locker,
		publisher:     publisher,
		location:      opts.Location,
		lockTTL:       opts.LockTTL,
		log:           opts.Logger,
		now:           time.Now,
	}
}

// --- Implementation ---

func (s *schedulerService) RunDue(ctx context.Context, today time.Time) (RunSummary, error) {
	const op = "scheduler.run"
	today = s.resolveToday(today)

	release, err := s.locker.Acquire(ctx, schedulerLockKey, s.lockTTL)
	if errors.Is(err, lock.ErrLocked) {
		return RunSummary{}, ErrRunInProgress
	}
	if err != nil {
		return RunSummary{}, apperr.Persistence(op, "failed to acquire run lock", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Msg("Failed to release scheduler lock")
		}
	}()

	due, err := s.recurringRepo.ListDue(ctx, today)
	if err != nil {
		return RunSummary{}, storeErr(op, "template not found", err)
	}

	summary := RunSummary{
		RunDate: today.Format(schedule.DateLayout),
		Results: make([]RunResult, 0, len(due)),
	}

	for i := range due {
		res := s.process(ctx, &due[i], today)
		summary.Processed++
		switch res.Status {
		case RunStatusCreated:
			summary.Successful++
		case RunStatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		summary.Results = append(summary.Results, res)
	}

	s.log.Info().
		Str("run_date", summary.RunDate).
		Int("processed", summary.Processed).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("Recurring invoice run finished")

	return summary, nil
}

func (s *schedulerService) ListDue(ctx context.Context, today time.Time) ([]DueTemplateResponse, error) {
	due, err := s.recurringRepo.ListDue(ctx, s.resolveToday(today))
	if err != nil {
		return nil, storeErr("scheduler.run", "template not found", err)
	}

	res := make([]DueTemplateResponse, 0, len(due))
	for _, t := range due {
		res = append(res, DueTemplateResponse{
			ID:            t.ID.String(),
			CompanyID:     t.CompanyID.String(),
			Name:          t.Name,
			Frequency:     t.Frequency,
			NextIssueDate: t.NextIssueDate.Format(schedule.DateLayout),
		})
	}
	return res, nil
}

// process handles one template. Errors end up in the result, never in the caller.
func (s *schedulerService) process(ctx context.Context, tmpl *model.RecurringTemplate, today time.Time) RunResult {
	res := RunResult{
		TemplateID:   tmpl.ID.String(),
		TemplateName: tmpl.Name,
		Status:       RunStatusError,
	}
	log := s.log.With().Str("template_id", res.TemplateID).Str("company_id", tmpl.CompanyID.String()).Logger()

	freq, err := schedule.ParseFrequency(tmpl.Frequency)
	if err != nil {
		res.Error = err.Error()
		log.Error().Err(err).Msg("Recurring template has an invalid frequency")
		return res
	}
	expected := schedule.Truncate(tmpl.NextIssueDate)
	next, err := schedule.NextIssueDate(freq, expected, today, tmpl.DayOfMonth)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	var doc *model.Document
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		lines, err := s.recurringRepo.FindLines(txCtx, tmpl.ID)
		if err != nil {
			return storeErr("scheduler.run", "template not found", err)
		}
		tmpl.Lines = lines

		doc, err = s.materializer.Materialize(txCtx, tmpl)
		if err != nil {
			return err
		}

		if err := s.advance(txCtx, tmpl, expected, next); err != nil {
			s.discard(txCtx, doc, log)
			return err
		}
		return nil
	})

	if errors.Is(err, errAlreadyAdvanced) {
		res.Status = RunStatusSkipped
		res.Error = err.Error()
		log.Warn().Msg("Recurring template skipped, already advanced by another run")
		return res
	}
	if err != nil {
		res.Error = apperr.PublicMessage(err)
		log.Error().Err(err).Msg("Failed to generate recurring invoice")
		return res
	}

	docID := doc.ID.String()
	res.Status = RunStatusCreated
	res.DocumentID = &docID
	res.NextIssueDate = next.Format(schedule.DateLayout)
	log.Info().Str("document_id", docID).Str("next_issue_date", res.NextIssueDate).Msg("Recurring invoice created")

	s.publisher.PublishToCompany(tmpl.CompanyID, Event{
		Type: EventRecurringInvoiceCreated,
		Data: res,
	})
	return res
}

// advance claims the period by moving next_issue_date forward. Zero matching rows means
// another run already claimed it.
func (s *schedulerService) advance(ctx context.Context, tmpl *model.RecurringTemplate, expected, next time.Time) error {
	ok, err := s.recurringRepo.AdvanceSchedule(ctx, tmpl.ID, expected, next, s.now())
	if err != nil {
		return storeErr("scheduler.run", "template not found", err)
	}
	if !ok {
		return errAlreadyAdvanced
	}

	if err := recordAudit(ctx, s.auditRepo, tmpl.CompanyID, nil, model.ActionScheduledRecurringInvoice, tmpl.ID.String(), tmpl.Name, map[string]interface{}{
		"issue_date":      expected.Format(schedule.DateLayout),
		"next_issue_date": next.Format(schedule.DateLayout),
	}); err != nil {
		return storeErr("audit.log", "audit log not found", err)
	}
	return nil
}

// discard removes a document whose schedule advance failed. Inside a transaction the
// rollback already covers this and the delete may fail harmlessly.
func (s *schedulerService) discard(ctx context.Context, doc *model.Document, log zerolog.Logger) {
	if err := s.documentRepo.Delete(ctx, doc.ID); err != nil {
		log.Debug().Err(err).Str("document_id", doc.ID.String()).Msg("Compensating document delete failed")
	}
}

func (s *schedulerService) resolveToday(today time.Time) time.Time {
	if today.IsZero() {
		return schedule.Today(s.now(), s.location)
	}
	return schedule.Truncate(today)
}
