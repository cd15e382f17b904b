package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tourbook/internal/domain"
)

// Submitter is the booking submission collaborator. Submit must report
// exactly one of a record or an error. Retract undoes a commit whose session
// was abandoned before the result was accepted.
type Submitter interface {
	Submit(ctx context.Context, draft domain.ReservationDraft, quote domain.Quote) (domain.ReservationRecord, error)
	Retract(ctx context.Context, rec domain.ReservationRecord) error
}

// WorkflowOption customises a Workflow.
type WorkflowOption func(*Workflow)

// WithClock replaces time.Now for date rules.
func WithClock(now func() time.Time) WorkflowOption {
	return func(w *Workflow) { w.now = now }
}

// WithLogger sets the logger used for flagged quotes and submission failures.
func WithLogger(l *slog.Logger) WorkflowOption {
	return func(w *Workflow) { w.logger = l }
}

// WithSubmitTimeout bounds a single submission call.
func WithSubmitTimeout(d time.Duration) WorkflowOption {
	return func(w *Workflow) { w.submitTimeout = d }
}

// WithOnConfirmed registers a callback run once the workflow accepts a
// successful submission. It runs on the submission goroutine.
func WithOnConfirmed(fn func(context.Context, domain.ReservationRecord)) WorkflowOption {
	return func(w *Workflow) { w.onConfirmed = fn }
}

// WithID fixes the session identifier instead of generating one.
func WithID(id uuid.UUID) WorkflowOption {
	return func(w *Workflow) { w.id = id }
}

// Workflow is the reservation state machine:
//
//	trip_details → personal_info → payment → submitting → submitted
//
// A failed submission returns to payment. Every method is safe for
// concurrent use; user mutations and the submission completion handler are
// serialised by the same mutex, so they never interleave.
type Workflow struct {
	mu sync.Mutex

	id            uuid.UUID
	rules         domain.FlowRules
	submitter     Submitter
	now           func() time.Time
	logger        *slog.Logger
	submitTimeout time.Duration
	onConfirmed   func(context.Context, domain.ReservationRecord)

	state         domain.State
	draft         domain.ReservationDraft
	basePrice     float64
	priceUnparsed bool
	lastError     string
	record        *domain.ReservationRecord
	cancel        context.CancelFunc
}

// NewWorkflow starts a reservation for pkg. It returns domain.ErrMissingContext
// when the destination or package reference is absent; callers send the user
// back to the catalog in that case.
func NewWorkflow(pkg domain.PackageContext, rules domain.FlowRules, submitter Submitter, opts ...WorkflowOption) (*Workflow, error) {
	if err := pkg.Validate(); err != nil {
		return nil, fmt.Errorf("service.NewWorkflow: %w", err)
	}
	w := &Workflow{
		id:        uuid.New(),
		rules:     rules,
		submitter: submitter,
		now:       time.Now,
		logger:    slog.Default(),
		state:     domain.StateTripDetails,
		draft:     domain.NewDraft(pkg),
	}
	for _, opt := range opts {
		opt(w)
	}

	base, err := ParsePriceLabel(pkg.PriceLabel)
	if err != nil {
		w.priceUnparsed = true
		w.logger.Warn("price label could not be parsed, quoting base price 0",
			"session_id", w.id,
			"destination_ref", pkg.DestinationRef,
			"package_ref", pkg.PackageRef,
			"price_label", pkg.PriceLabel,
		)
	}
	w.basePrice = base
	return w, nil
}

// ID returns the session identifier.
func (w *Workflow) ID() uuid.UUID { return w.id }

// State returns the current state.
func (w *Workflow) State() domain.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Quote prices the current draft.
func (w *Workflow) Quote() domain.Quote {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.quoteLocked()
}

// View returns a display snapshot with payment data masked.
func (w *Workflow) View() domain.SessionView {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := domain.SessionView{
		ID:              w.id,
		State:           w.state,
		Status:          w.draft.Status,
		Package:         w.draft.Package,
		Trip:            w.draft.Trip,
		Party:           w.draft.Party,
		Contact:         w.draft.Contact,
		AddOns:          w.draft.AddOns,
		Payment:         w.draft.Payment.View(),
		SpecialRequests: w.draft.SpecialRequests,
		Errors:          maps.Clone(w.draft.Errors),
		LastError:       w.lastError,
		Quote:           w.quoteLocked(),
	}
	if w.record != nil {
		rec := *w.record
		v.Record = &rec
		v.Quote = domain.Quote{BasePrice: rec.BasePrice, Total: rec.TotalPrice, PriceUnparsed: rec.PriceUnparsed}
	}
	return v
}

// Edit applies one step's field changes. Only the active step's data is
// accepted. Errors of the touched fields are cleared.
func (w *Workflow) Edit(data domain.StepData) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return fmt.Errorf("service.Workflow.Edit: %w", err)
	}
	if data.Step() != w.state.Step() {
		return fmt.Errorf("service.Workflow.Edit: %w: %s fields cannot be edited during %s",
			domain.ErrInvalidTransition, data.Step(), w.state)
	}
	for _, field := range data.Apply(&w.draft) {
		delete(w.draft.Errors, field)
	}
	return nil
}

// Advance validates the active step and moves to the next one. On failure
// the state is unchanged and the returned error is a domain.FieldErrors that
// also replaces the draft's displayed errors. The payment step is left via
// Submit, never Advance.
func (w *Workflow) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return fmt.Errorf("service.Workflow.Advance: %w", err)
	}
	step := w.state.Step()
	if step == domain.StepPayment {
		return fmt.Errorf("service.Workflow.Advance: %w: payment step completes with submit", domain.ErrInvalidTransition)
	}

	if errs := ValidateStep(step, w.draft, w.rules, w.now()); len(errs) > 0 {
		w.draft.Errors = errs
		return fmt.Errorf("service.Workflow.Advance: %w", errs)
	}

	w.draft.Errors = nil
	w.draft.Status = domain.StatusValidated
	w.draft.ValidatedStep = step
	w.state = domain.StateForStep(step + 1)
	return nil
}

// Retreat moves back one step without validating. Entered data is kept.
func (w *Workflow) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return fmt.Errorf("service.Workflow.Retreat: %w", err)
	}
	step := w.state.Step()
	if step <= domain.StepTripDetails {
		return fmt.Errorf("service.Workflow.Retreat: %w: already at the first step", domain.ErrInvalidTransition)
	}
	w.draft.Errors = nil
	w.state = domain.StateForStep(step - 1)
	return nil
}

// Submit re-validates the payment step and hands the draft to the Submitter
// on its own goroutine. The returned channel receives exactly one outcome:
// the committed record, a wrapped domain.ErrSubmission (state returns to
// payment for a retry), or domain.ErrAbandoned.
//
// The submission is detached from ctx cancellation; only Abandon or the
// submit timeout cancel it.
func (w *Workflow) Submit(ctx context.Context) (<-chan domain.SubmitOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return nil, fmt.Errorf("service.Workflow.Submit: %w", err)
	}
	if w.state != domain.StatePayment {
		return nil, fmt.Errorf("service.Workflow.Submit: %w: submit is only allowed from the payment step", domain.ErrInvalidTransition)
	}
	if errs := ValidatePayment(w.draft, w.now()); len(errs) > 0 {
		w.draft.Errors = errs
		return nil, fmt.Errorf("service.Workflow.Submit: %w", errs)
	}

	w.draft.Errors = nil
	w.draft.Status = domain.StatusSubmitted
	w.draft.ValidatedStep = domain.StepPayment
	w.lastError = ""
	w.state = domain.StateSubmitting

	base := context.WithoutCancel(ctx)
	var (
		subCtx context.Context
		cancel context.CancelFunc
	)
	if w.submitTimeout > 0 {
		subCtx, cancel = context.WithTimeout(base, w.submitTimeout)
	} else {
		subCtx, cancel = context.WithCancel(base)
	}
	w.cancel = cancel

	out := make(chan domain.SubmitOutcome, 1)
	go w.runSubmission(subCtx, cancel, w.draft, w.quoteLocked(), out)
	return out, nil
}

// Abandon discards the draft and cancels a pending submission. A record the
// submitter commits after this point is retracted when it reports back.
// Abandoning a submitted session is a no-op.
func (w *Workflow) Abandon() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == domain.StateSubmitted || w.state == domain.StateAbandoned {
		return
	}
	w.state = domain.StateAbandoned
	w.draft = domain.ReservationDraft{Package: w.draft.Package, Status: w.draft.Status}
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Workflow) runSubmission(ctx context.Context, cancel context.CancelFunc, draft domain.ReservationDraft, quote domain.Quote, out chan<- domain.SubmitOutcome) {
	defer cancel()

	rec, err := w.callSubmitter(ctx, draft, quote)
	outcome, confirmed := w.complete(ctx, rec, err)
	out <- outcome

	if confirmed && w.onConfirmed != nil {
		w.onConfirmed(context.WithoutCancel(ctx), *outcome.Record)
	}
}

// callSubmitter turns a panicking submitter into a failure so the outcome
// channel always receives a value.
func (w *Workflow) callSubmitter(ctx context.Context, draft domain.ReservationDraft, quote domain.Quote) (rec domain.ReservationRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: submitter panic: %v", domain.ErrSubmission, r)
		}
	}()
	return w.submitter.Submit(ctx, draft, quote)
}

// complete is the continuation of Submit. It runs under the mutex.
func (w *Workflow) complete(ctx context.Context, rec domain.ReservationRecord, err error) (domain.SubmitOutcome, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cancel = nil

	if w.state == domain.StateAbandoned {
		if err == nil {
			if rerr := w.submitter.Retract(context.WithoutCancel(ctx), rec); rerr != nil {
				w.logger.Error("failed to retract reservation committed after abandonment",
					"session_id", w.id, "reservation_id", rec.ID, "error", rerr)
			} else {
				w.logger.Warn("retracted reservation committed after abandonment",
					"session_id", w.id, "reservation_id", rec.ID)
			}
		}
		return domain.SubmitOutcome{Err: domain.ErrAbandoned}, false
	}

	if err != nil {
		if !errors.Is(err, domain.ErrSubmission) {
			err = fmt.Errorf("%w: %w", domain.ErrSubmission, err)
		}
		w.state = domain.StatePayment
		w.draft.Status = domain.StatusFailed
		w.lastError = "We could not complete your booking. Please review your details and try again."
		w.logger.Error("reservation submission failed", "session_id", w.id, "error", err)
		return domain.SubmitOutcome{Err: err}, false
	}

	w.state = domain.StateSubmitted
	w.record = &rec
	w.draft = domain.ReservationDraft{Package: w.draft.Package, Status: domain.StatusConfirmed}
	return domain.SubmitOutcome{Record: &rec}, true
}

// mutableLocked reports why the draft cannot change in the current state.
func (w *Workflow) mutableLocked() error {
	switch w.state {
	case domain.StateSubmitting:
		return domain.ErrSubmissionInFlight
	case domain.StateAbandoned:
		return domain.ErrSessionClosed
	case domain.StateSubmitted:
		return fmt.Errorf("%w: reservation already submitted", domain.ErrInvalidTransition)
	}
	return nil
}

func (w *Workflow) quoteLocked() domain.Quote {
	in := quoteInputFor(w.draft)
	in.BasePrice = w.basePrice
	q := CalculateQuote(in)
	q.PriceUnparsed = w.priceUnparsed
	return q
}
