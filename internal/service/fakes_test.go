package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"invoicing/internal/lock"
	"invoicing/internal/model"
	"invoicing/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var errBoom = errors.New("boom")

// memStore is an in-memory stand-in for the repositories. failOn* hooks inject store
// failures for a given template id (uuid.Nil matches every call).
type memStore struct {
	mu sync.Mutex

	templates map[uuid.UUID]model.RecurringTemplate
	lines     map[uuid.UUID][]model.RecurringLine
	docs      map[uuid.UUID]model.Document
	docLines  map[uuid.UUID][]model.DocumentLine
	customers map[uuid.UUID]model.Customer
	audits    []model.AuditLog

	failTemplateLines bool
	failDocLinesFor   map[uuid.UUID]bool
	// advancedBehind simulates a concurrent run: AdvanceSchedule matches no row.
	advancedBehind map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		templates:       map[uuid.UUID]model.RecurringTemplate{},
		lines:           map[uuid.UUID][]model.RecurringLine{},
		docs:            map[uuid.UUID]model.Document{},
		docLines:        map[uuid.UUID][]model.DocumentLine{},
		customers:       map[uuid.UUID]model.Customer{},
		failDocLinesFor: map[uuid.UUID]bool{},
		advancedBehind:  map[uuid.UUID]bool{},
	}
}

func (m *memStore) addCustomer(companyID uuid.UUID, name string) model.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := model.Customer{ID: uuid.New(), CompanyID: companyID, Name: name}
	m.customers[c.ID] = c
	return c
}

func (m *memStore) addTemplate(t model.RecurringTemplate, lines ...model.RecurringLine) model.RecurringTemplate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].TemplateID = t.ID
		lines[i].LineNumber = i + 1
	}
	t.Lines = nil
	t.CreatedAt = time.Now()
	m.templates[t.ID] = t
	m.lines[t.ID] = lines
	return t
}

func (m *memStore) template(id uuid.UUID) (model.RecurringTemplate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	return t, ok
}

func (m *memStore) templateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.templates)
}

func (m *memStore) docsFor(templateID uuid.UUID) []model.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Document
	for _, d := range m.docs {
		if d.RecurringTemplateID != nil && *d.RecurringTemplateID == templateID {
			d.Lines = append([]model.DocumentLine(nil), m.docLines[d.ID]...)
			out = append(out, d)
		}
	}
	return out
}

// --- RecurringRepository ---

type memRecurringRepo struct{ *memStore }

func (r memRecurringRepo) Create(_ context.Context, tmpl *model.RecurringTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := *tmpl
	t.Lines = nil
	t.CreatedAt = time.Now()
	r.templates[t.ID] = t
	return nil
}

func (r memRecurringRepo) UpdateHeader(_ context.Context, tmpl *model.RecurringTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.templates[tmpl.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t := *tmpl
	t.Lines = nil
	t.Customer = nil
	t.CreatedAt = old.CreatedAt
	r.templates[t.ID] = t
	return nil
}

func (r memRecurringRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.templates, id)
	return nil
}

func (r memRecurringRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.RecurringTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.detailed(t), nil
}

func (r memRecurringRepo) List(_ context.Context, filter repository.RecurringListFilter) ([]model.RecurringTemplate, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.RecurringTemplate
	for _, t := range r.templates {
		if t.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Active != nil && t.IsActive != *filter.Active {
			continue
		}
		out = append(out, *r.detailed(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r memRecurringRepo) ListDue(_ context.Context, today time.Time) ([]model.RecurringTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.RecurringTemplate
	for _, t := range r.templates {
		if t.IsActive && !t.NextIssueDate.After(today) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memRecurringRepo) FindLines(_ context.Context, templateID uuid.UUID) ([]model.RecurringLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.RecurringLine(nil), r.lines[templateID]...), nil
}

func (r memRecurringRepo) CreateLines(_ context.Context, lines []model.RecurringLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTemplateLines {
		return errBoom
	}
	for _, l := range lines {
		r.lines[l.TemplateID] = append(r.lines[l.TemplateID], l)
	}
	return nil
}

func (r memRecurringRepo) DeleteLines(_ context.Context, templateID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, templateID)
	return nil
}

func (r memRecurringRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.templates[id]
	t.IsActive = active
	r.templates[id] = t
	return nil
}

func (r memRecurringRepo) StampIssued(_ context.Context, id uuid.UUID, issuedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.templates[id]
	t.LastIssuedAt = &issuedAt
	r.templates[id] = t
	return nil
}

func (r memRecurringRepo) AdvanceSchedule(_ context.Context, id uuid.UUID, expected, next, issuedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || r.advancedBehind[id] || !t.IsActive || !t.NextIssueDate.Equal(expected) {
		return false, nil
	}
	t.NextIssueDate = next
	t.LastIssuedAt = &issuedAt
	r.templates[id] = t
	return true, nil
}

// detailed mimics the Customer and Lines preloads. Caller holds the lock.
func (m *memStore) detailed(t model.RecurringTemplate) *model.RecurringTemplate {
	if c, ok := m.customers[t.CustomerID]; ok {
		t.Customer = &c
	}
	t.Lines = append([]model.RecurringLine(nil), m.lines[t.ID]...)
	return &t
}

// --- DocumentRepository ---

type memDocumentRepo struct{ *memStore }

func (r memDocumentRepo) Create(_ context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := *doc
	d.Lines = nil
	r.docs[d.ID] = d
	return nil
}

func (r memDocumentRepo) CreateLines(_ context.Context, lines []model.DocumentLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range lines {
		d := r.docs[l.DocumentID]
		if d.RecurringTemplateID != nil && (r.failDocLinesFor[*d.RecurringTemplateID] || r.failDocLinesFor[uuid.Nil]) {
			return errBoom
		}
	}
	for _, l := range lines {
		r.docLines[l.DocumentID] = append(r.docLines[l.DocumentID], l)
	}
	return nil
}

func (r memDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docLines, id)
	delete(r.docs, id)
	return nil
}

func (r memDocumentRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	d.Lines = append([]model.DocumentLine(nil), r.docLines[id]...)
	return &d, nil
}

func (r memDocumentRepo) CountByTemplate(_ context.Context, templateID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.docs {
		if d.RecurringTemplateID != nil && *d.RecurringTemplateID == templateID {
			n++
		}
	}
	return n, nil
}

// --- CustomerRepository / AuditRepository ---

type memCustomerRepo struct{ *memStore }

func (r memCustomerRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok || c.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

type memAuditRepo struct{ *memStore }

func (r memAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.CreatedAt = time.Now()
	r.audits = append(r.audits, *entry)
	return nil
}

func (r memAuditRepo) List(_ context.Context, companyID uuid.UUID, page, limit int) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditLog
	for _, a := range r.audits {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memStore) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.audits))
	for _, a := range m.audits {
		out = append(out, a.Action)
	}
	return out
}

// --- locker / publisher ---

type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string, time.Duration) (lock.Release, error) {
	return nil, lock.ErrLocked
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[uuid.UUID][]Event
}

func (p *recordingPublisher) PublishToCompany(companyID uuid.UUID, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[uuid.UUID][]Event{}
	}
	p.events[companyID] = append(p.events[companyID], event)
}

// --- fixtures ---

type fixture struct {
	store     *memStore
	recurring *recurringService
	scheduler *schedulerService
	publisher *recordingPublisher
}

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func newFixture() *fixture {
	store := newMemStore()
	docs := memDocumentRepo{store}
	mat := NewMaterializer(docs)
	tx := repository.NewPassthroughTransactionManager()
	pub := &recordingPublisher{}

	rs := NewRecurringService(memRecurringRepo{store}, memCustomerRepo{store}, docs, memAuditRepo{store}, mat, tx, time.UTC).(*recurringService)
	rs.now = func() time.Time { return fixedNow }

	ss := NewSchedulerService(memRecurringRepo{store}, docs, memAuditRepo{store}, mat, tx, nil, pub, SchedulerOptions{Logger: zerolog.Nop()}).(*schedulerService)
	ss.now = func() time.Time { return fixedNow }

	return &fixture{store: store, recurring: rs, scheduler: ss, publisher: pub}
}
