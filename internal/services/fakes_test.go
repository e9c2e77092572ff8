package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/repositories"
)

/*
memStore is a mutex-guarded in-memory database shared by the fake
repositories below. The atomic work-order operations reproduce the SQL
layer's semantics, including the row_version compare-and-set and its
error strings, so concurrency tests exercise the same paths the real
repositories do.
*/
type memStore struct {
	mu sync.Mutex

	workOrders  map[uuid.UUID]*models.WorkOrder
	quotes      map[uuid.UUID]*models.WorkOrderQuote
	quoteOrder  []uuid.UUID
	assignments map[uuid.UUID]*models.WorkOrderAssignment
	asgOrder    []uuid.UUID
	requests    map[uuid.UUID]*models.MaintenanceRequest
	vendors     map[uuid.UUID]*models.Vendor
	vendorOrder []uuid.UUID
	staff       map[uuid.UUID]*models.Staff
	staffOrder  []uuid.UUID
	properties  map[uuid.UUID]*models.Property
	policies    map[uuid.UUID]*models.EscalationPolicy // keyed by property
	schedules   map[uuid.UUID]*models.OnCallSchedule   // keyed by property
	slas        map[uuid.UUID]*models.WorkOrderSLA
}

func newMemStore() *memStore {
	return &memStore{
		workOrders:  map[uuid.UUID]*models.WorkOrder{},
		quotes:      map[uuid.UUID]*models.WorkOrderQuote{},
		assignments: map[uuid.UUID]*models.WorkOrderAssignment{},
		requests:    map[uuid.UUID]*models.MaintenanceRequest{},
		vendors:     map[uuid.UUID]*models.Vendor{},
		staff:       map[uuid.UUID]*models.Staff{},
		properties:  map[uuid.UUID]*models.Property{},
		policies:    map[uuid.UUID]*models.EscalationPolicy{},
		schedules:   map[uuid.UUID]*models.OnCallSchedule{},
		slas:        map[uuid.UUID]*models.WorkOrderSLA{},
	}
}

func copyWO(wo *models.WorkOrder) *models.WorkOrder {
	if wo == nil {
		return nil
	}
	cp := *wo
	return &cp
}

/*──────────────────────── work orders ────────────────────────*/

type fakeWorkOrderRepo struct{ s *memStore }

var _ repositories.WorkOrderRepository = (*fakeWorkOrderRepo)(nil)

func (r *fakeWorkOrderRepo) Create(_ context.Context, wo *models.WorkOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Persisted version and timestamps are written back into the
	// caller's struct, per the repository contract.
	wo.RowVersion = 1
	wo.CreatedAt = time.Now().UTC()
	wo.UpdatedAt = wo.CreatedAt
	cp := *wo
	r.s.workOrders[wo.ID] = &cp
	return nil
}

func (r *fakeWorkOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyWO(r.s.workOrders[id]), nil
}

func (r *fakeWorkOrderRepo) ListByPropertyID(_ context.Context, propertyID uuid.UUID, statuses []models.WorkOrderStatus) ([]*models.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.WorkOrder
	for _, wo := range r.s.workOrders {
		if wo.PropertyID != propertyID {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, st := range statuses {
				if wo.Status == st {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, copyWO(wo))
	}
	return out, nil
}

// lock mirrors the repository's FOR UPDATE + version check.
func (r *fakeWorkOrderRepo) lock(id uuid.UUID, expectedVersion int64) (*models.WorkOrder, error) {
	wo, ok := r.s.workOrders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if wo.RowVersion != expectedVersion {
		return copyWO(wo), fmt.Errorf("row_version_conflict")
	}
	return wo, nil
}

func (r *fakeWorkOrderRepo) SubmitQuoteAtomic(_ context.Context, q *models.WorkOrderQuote, expectedVersion int64) (*models.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wo, err := r.lock(q.WorkOrderID, expectedVersion)
	if err != nil {
		return wo, err
	}
	if wo.Status != models.WorkOrderStatusOpen && wo.Status != models.WorkOrderStatusQuoted {
		return copyWO(wo), fmt.Errorf("invalid_state: cannot quote a %s work order", wo.Status)
	}

	cp := *q
	cp.Status = models.QuoteStatusPending
	cp.CreatedAt = time.Now().UTC()
	r.s.quotes[q.ID] = &cp
	r.s.quoteOrder = append(r.s.quoteOrder, q.ID)

	if wo.Status == models.WorkOrderStatusOpen {
		wo.Status = models.WorkOrderStatusQuoted
	}
	wo.RowVersion++
	wo.UpdatedAt = time.Now().UTC()
	return copyWO(wo), nil
}

func (r *fakeWorkOrderRepo) ApproveQuoteAtomic(_ context.Context, workOrderID, quoteID uuid.UUID, expectedVersion int64) (*models.WorkOrder, *models.WorkOrderAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wo, err := r.lock(workOrderID, expectedVersion)
	if err != nil {
		return wo, nil, err
	}
	if wo.Status != models.WorkOrderStatusQuoted {
		return copyWO(wo), nil, fmt.Errorf("invalid_state: cannot approve a quote on a %s work order", wo.Status)
	}
	q, ok := r.s.quotes[quoteID]
	if !ok || q.WorkOrderID != workOrderID {
		return nil, nil, pgx.ErrNoRows
	}
	if q.Status != models.QuoteStatusPending {
		return copyWO(wo), nil, fmt.Errorf("invalid_state: quote is %s, not PENDING", q.Status)
	}

	q.Status = models.QuoteStatusAccepted
	for _, id := range r.s.quoteOrder {
		sib := r.s.quotes[id]
		if sib.WorkOrderID == workOrderID && sib.ID != quoteID && sib.Status == models.QuoteStatusPending {
			sib.Status = models.QuoteStatusRejected
		}
	}

	asg := &models.WorkOrderAssignment{
		ID:          uuid.New(),
		WorkOrderID: workOrderID,
		VendorID:    q.VendorID,
		Source:      models.AssignmentSourceQuote,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	r.s.assignments[asg.ID] = asg
	r.s.asgOrder = append(r.s.asgOrder, asg.ID)

	wo.Status = models.WorkOrderStatusAssigned
	wo.RowVersion++
	wo.UpdatedAt = time.Now().UTC()
	cp := *asg
	return copyWO(wo), &cp, nil
}

func (r *fakeWorkOrderRepo) AssignEmergencyAtomic(_ context.Context, workOrderID, vendorID uuid.UUID, expectedVersion int64) (*models.WorkOrder, *models.WorkOrderAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wo, err := r.lock(workOrderID, expectedVersion)
	if err != nil {
		return wo, nil, err
	}
	if wo.Status != models.WorkOrderStatusOpen {
		return copyWO(wo), nil, fmt.Errorf("invalid_state: cannot emergency-assign a %s work order", wo.Status)
	}

	asg := &models.WorkOrderAssignment{
		ID:          uuid.New(),
		WorkOrderID: workOrderID,
		VendorID:    vendorID,
		Source:      models.AssignmentSourceEmergency,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	r.s.assignments[asg.ID] = asg
	r.s.asgOrder = append(r.s.asgOrder, asg.ID)

	wo.Status = models.WorkOrderStatusAssigned
	wo.RowVersion++
	wo.UpdatedAt = time.Now().UTC()
	cp := *asg
	return copyWO(wo), &cp, nil
}

func (r *fakeWorkOrderRepo) ReleaseAssignmentAtomic(_ context.Context, workOrderID uuid.UUID, expectedVersion int64) (*models.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wo, err := r.lock(workOrderID, expectedVersion)
	if err != nil {
		return wo, err
	}
	if wo.Status != models.WorkOrderStatusAssigned && wo.Status != models.WorkOrderStatusInProgress {
		return copyWO(wo), fmt.Errorf("invalid_state: cannot decline a %s work order", wo.Status)
	}

	now := time.Now().UTC()
	for _, id := range r.s.asgOrder {
		a := r.s.assignments[id]
		if a.WorkOrderID == workOrderID && a.Active {
			a.Active = false
			a.ReleasedAt = &now
		}
	}

	wo.Status = models.WorkOrderStatusOpen
	wo.RowVersion++
	wo.UpdatedAt = now
	return copyWO(wo), nil
}

func (r *fakeWorkOrderRepo) UpdateStatusAtomic(_ context.Context, workOrderID uuid.UUID, newStatus models.WorkOrderStatus, expectedVersion int64) (*models.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wo, err := r.lock(workOrderID, expectedVersion)
	if err != nil {
		return wo, err
	}
	if !models.CanTransition(wo.Status, newStatus) {
		return copyWO(wo), fmt.Errorf("invalid_transition: %s -> %s", wo.Status, newStatus)
	}

	// Reopening edges release the active assignment, as the SQL
	// operation does.
	if newStatus == models.WorkOrderStatusOpen {
		now := time.Now().UTC()
		for _, id := range r.s.asgOrder {
			a := r.s.assignments[id]
			if a.WorkOrderID == workOrderID && a.Active {
				a.Active = false
				a.ReleasedAt = &now
			}
		}
	}

	wo.Status = newStatus
	wo.RowVersion++
	wo.UpdatedAt = time.Now().UTC()
	return copyWO(wo), nil
}

/*──────────────────────── quotes / assignments ────────────────────────*/

type fakeQuoteRepo struct{ s *memStore }

var _ repositories.QuoteRepository = (*fakeQuoteRepo)(nil)

func (r *fakeQuoteRepo) GetByID(_ context.Context, id uuid.UUID) (*models.WorkOrderQuote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotes[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (r *fakeQuoteRepo) ListByWorkOrderID(_ context.Context, workOrderID uuid.UUID) ([]*models.WorkOrderQuote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.WorkOrderQuote
	for _, id := range r.s.quoteOrder {
		q := r.s.quotes[id]
		if q.WorkOrderID == workOrderID {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeQuoteRepo) RejectPending(_ context.Context, id uuid.UUID) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotes[id]
	if !ok || q.Status != models.QuoteStatusPending {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	q.Status = models.QuoteStatusRejected
	return pgconn.CommandTag("UPDATE 1"), nil
}

type fakeAssignmentRepo struct{ s *memStore }

var _ repositories.AssignmentRepository = (*fakeAssignmentRepo)(nil)

func (r *fakeAssignmentRepo) GetActiveByWorkOrderID(_ context.Context, workOrderID uuid.UUID) (*models.WorkOrderAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.asgOrder {
		a := r.s.assignments[id]
		if a.WorkOrderID == workOrderID && a.Active {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAssignmentRepo) ListByWorkOrderID(_ context.Context, workOrderID uuid.UUID) ([]*models.WorkOrderAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.WorkOrderAssignment
	for _, id := range r.s.asgOrder {
		a := r.s.assignments[id]
		if a.WorkOrderID == workOrderID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) CountActiveByVendor(_ context.Context, vendorID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, a := range r.s.assignments {
		if a.VendorID == vendorID && a.Active {
			n++
		}
	}
	return n, nil
}

/*──────────────────────── vendors ────────────────────────*/

type fakeVendorRepo struct{ s *memStore }

var _ repositories.VendorRepository = (*fakeVendorRepo)(nil)

func (r *fakeVendorRepo) Create(_ context.Context, v *models.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *v
	cp.RowVersion = 1
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.s.vendors[v.ID] = &cp
	r.s.vendorOrder = append(r.s.vendorOrder, v.ID)
	return nil
}

func (r *fakeVendorRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVendorRepo) ListBySpecialtyAndArea(_ context.Context, specialty, area string) ([]*models.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Vendor
	for _, id := range r.s.vendorOrder {
		v := r.s.vendors[id]
		if v.Specialty == specialty && v.Availability == models.VendorAvailable && v.ServesArea(area) {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeVendorRepo) UpdateIfVersion(_ context.Context, v *models.Vendor, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.vendors[v.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	cp := *v
	cp.RowVersion = expected + 1
	r.s.vendors[v.ID] = &cp
	v.SetRowVersion(cp.RowVersion)
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeVendorRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Vendor) error) error {
	v, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return errors.New("vendor not found")
	}
	if err := mutate(v); err != nil {
		return err
	}
	tag, err := r.UpdateIfVersion(ctx, v, v.RowVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return errors.New("row_version_conflict")
	}
	return nil
}

/*──────────────────────── requests / staff / properties ────────────────────────*/

type fakeRequestRepo struct{ s *memStore }

var _ repositories.MaintenanceRequestRepository = (*fakeRequestRepo)(nil)

func (r *fakeRequestRepo) Create(_ context.Context, mr *models.MaintenanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *mr
	cp.RowVersion = 1
	cp.CreatedAt = time.Now().UTC()
	r.s.requests[mr.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	mr, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *mr
	return &cp, nil
}

func (r *fakeRequestRepo) ListByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.MaintenanceRequest
	for _, mr := range r.s.requests {
		if mr.PropertyID == propertyID {
			cp := *mr
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) BindWorkOrder(_ context.Context, requestID, workOrderID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	mr, ok := r.s.requests[requestID]
	if !ok || mr.WorkOrderID != nil {
		return false, nil
	}
	woID := workOrderID
	mr.WorkOrderID = &woID
	mr.Status = models.RequestStatusDispatched
	mr.RowVersion++
	return true, nil
}

func (r *fakeRequestRepo) SetStatus(_ context.Context, requestID uuid.UUID, status models.RequestStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if mr, ok := r.s.requests[requestID]; ok {
		mr.Status = status
		mr.RowVersion++
	}
	return nil
}

type fakeStaffRepo struct{ s *memStore }

var _ repositories.StaffRepository = (*fakeStaffRepo)(nil)

func (r *fakeStaffRepo) Create(_ context.Context, st *models.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *st
	r.s.staff[st.ID] = &cp
	r.s.staffOrder = append(r.s.staffOrder, st.ID)
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.staff[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *fakeStaffRepo) GetDefaultContact(_ context.Context) (*models.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.staffOrder {
		if r.s.staff[id].IsDefaultContact {
			cp := *r.s.staff[id]
			return &cp, nil
		}
	}
	return nil, nil
}

type fakePropertyRepo struct{ s *memStore }

var _ repositories.PropertyRepository = (*fakePropertyRepo)(nil)

func (r *fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.properties[p.ID] = &cp
	return nil
}

func (r *fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.properties[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

/*──────────────────────── policies / schedules / SLA ────────────────────────*/

type fakePolicyRepo struct{ s *memStore }

var _ repositories.EscalationPolicyRepository = (*fakePolicyRepo)(nil)

func (r *fakePolicyRepo) Create(_ context.Context, p *models.EscalationPolicy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.policies[p.PropertyID] = &cp
	return nil
}

func (r *fakePolicyRepo) GetByPropertyID(_ context.Context, propertyID uuid.UUID) (*models.EscalationPolicy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.policies[propertyID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type fakeScheduleRepo struct{ s *memStore }

var _ repositories.OnCallScheduleRepository = (*fakeScheduleRepo)(nil)

func (r *fakeScheduleRepo) Create(_ context.Context, sc *models.OnCallSchedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sc
	r.s.schedules[sc.PropertyID] = &cp
	return nil
}

func (r *fakeScheduleRepo) GetByPropertyID(_ context.Context, propertyID uuid.UUID) (*models.OnCallSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.schedules[propertyID]
	if !ok {
		return nil, nil
	}
	cp := *sc
	return &cp, nil
}

type fakeSLARepo struct{ s *memStore }

var _ repositories.SLARepository = (*fakeSLARepo)(nil)

func (r *fakeSLARepo) Create(_ context.Context, rec *models.WorkOrderSLA) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	cp.RowVersion = 1
	cp.LastFiredRuleOrder = models.NoRuleFired
	r.s.slas[rec.WorkOrderID] = &cp
	return nil
}

func (r *fakeSLARepo) GetByWorkOrderID(_ context.Context, workOrderID uuid.UUID) (*models.WorkOrderSLA, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.slas[workOrderID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeSLARepo) ListUnresponded(_ context.Context) ([]*models.WorkOrderSLA, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.WorkOrderSLA
	for _, rec := range r.s.slas {
		if rec.FirstResponseAt == nil {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSLARepo) RecordFirstResponse(_ context.Context, workOrderID uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.slas[workOrderID]
	if !ok || rec.FirstResponseAt != nil {
		return false, nil
	}
	t := at
	rec.FirstResponseAt = &t
	rec.RowVersion++
	return true, nil
}

func (r *fakeSLARepo) MarkRuleFired(_ context.Context, workOrderID uuid.UUID, ruleOrder, prevRuleOrder int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.slas[workOrderID]
	if !ok || rec.FirstResponseAt != nil || rec.LastFiredRuleOrder != prevRuleOrder {
		return false, nil
	}
	rec.LastFiredRuleOrder = ruleOrder
	rec.RowVersion++
	return true, nil
}

func (r *fakeSLARepo) DeleteRespondedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, rec := range r.s.slas {
		if rec.FirstResponseAt != nil && rec.FirstResponseAt.Before(cutoff) {
			delete(r.s.slas, id)
			n++
		}
	}
	return n, nil
}

/*──────────────────────── notifier ────────────────────────*/

type sentNotification struct {
	Kind    string // "staff" or "vendor"
	ID      uuid.UUID
	Subject string
	Body    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

var _ Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) NotifyStaff(_ context.Context, st *models.Staff, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{Kind: "staff", ID: st.ID, Subject: subject, Body: body})
	return nil
}

func (n *fakeNotifier) NotifyVendor(_ context.Context, v *models.Vendor, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{Kind: "vendor", ID: v.ID, Subject: subject, Body: body})
	return nil
}

func (n *fakeNotifier) sentTo(kind string, id uuid.UUID) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.Kind == kind && s.ID == id {
			c++
		}
	}
	return c
}
