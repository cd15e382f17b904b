package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/repo"
)

// ConfirmationNotifier is told about every reservation a session commits.
type ConfirmationNotifier interface {
	Confirmed(ctx context.Context, rec domain.ReservationRecord)
}

// SessionConfig holds the settings shared by every hosted workflow.
type SessionConfig struct {
	// Rules maps each flow to its trip step bounds. A flow without an entry
	// is unbounded.
	Rules         map[domain.FlowKind]domain.FlowRules
	TTL           time.Duration
	SubmitTimeout time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

// SessionOption customises a SessionService.
type SessionOption func(*SessionService)

// WithCatalog completes package context from the destination catalog on Start.
func WithCatalog(c *CatalogService) SessionOption {
	return func(s *SessionService) { s.catalog = c }
}

// WithNotifier registers the confirmation notifier.
func WithNotifier(n ConfirmationNotifier) SessionOption {
	return func(s *SessionService) { s.notify = n }
}

// WithIdempotency makes Submit honour idempotency keys. records resolves a
// remembered reservation ID back to its record.
func WithIdempotency(keys repo.IdempotencyRepo, records repo.ReservationRepo) SessionOption {
	return func(s *SessionService) {
		s.keys = keys
		s.records = records
	}
}

type session struct {
	wf       *Workflow
	lastSeen time.Time
	key      string
}

// SessionService hosts in-progress reservation workflows keyed by session ID.
type SessionService struct {
	cfg       SessionConfig
	submitter Submitter
	catalog   *CatalogService
	notify    ConfirmationNotifier
	keys      repo.IdempotencyRepo
	records   repo.ReservationRepo

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewSessionService constructs a SessionService that commits through submitter.
func NewSessionService(cfg SessionConfig, submitter Submitter, opts ...SessionOption) *SessionService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &SessionService{
		cfg:       cfg,
		submitter: submitter,
		sessions:  make(map[uuid.UUID]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a session for pkg. It returns domain.ErrMissingContext when
// the destination or package reference is absent.
func (s *SessionService) Start(ctx context.Context, pkg domain.PackageContext) (domain.SessionView, error) {
	if s.catalog != nil {
		pkg = s.catalog.Resolve(ctx, pkg)
	} else if pkg.Flow == "" {
		pkg.Flow = domain.FlowDestination
	}

	sess := &session{lastSeen: s.cfg.Now()}
	wf, err := NewWorkflow(pkg, s.cfg.Rules[pkg.Flow], s.submitter,
		WithClock(s.cfg.Now),
		WithLogger(s.cfg.Logger),
		WithSubmitTimeout(s.cfg.SubmitTimeout),
		WithOnConfirmed(func(ctx context.Context, rec domain.ReservationRecord) {
			s.confirmed(ctx, sess, rec)
		}),
	)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Start: %w", err)
	}
	sess.wf = wf

	s.mu.Lock()
	s.sessions[wf.ID()] = sess
	s.mu.Unlock()

	s.cfg.Logger.InfoContext(ctx, "reservation session started",
		"session_id", wf.ID(), "flow", pkg.Flow,
		"destination_ref", pkg.DestinationRef, "package_ref", pkg.PackageRef)
	return wf.View(), nil
}

// Get returns the session's current view.
func (s *SessionService) Get(id uuid.UUID) (domain.SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Get: %w", err)
	}
	return sess.wf.View(), nil
}

// Edit applies field changes to the active step.
func (s *SessionService) Edit(id uuid.UUID, data domain.StepData) (domain.SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Edit: %w", err)
	}
	if err := sess.wf.Edit(data); err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Edit: %w", err)
	}
	return sess.wf.View(), nil
}

// Advance validates the active step and moves forward. On a validation
// failure the error is a domain.FieldErrors.
func (s *SessionService) Advance(id uuid.UUID) (domain.SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Advance: %w", err)
	}
	if err := sess.wf.Advance(); err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Advance: %w", err)
	}
	return sess.wf.View(), nil
}

// Retreat moves back one step.
func (s *SessionService) Retreat(id uuid.UUID) (domain.SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Retreat: %w", err)
	}
	if err := sess.wf.Retreat(); err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Retreat: %w", err)
	}
	return sess.wf.View(), nil
}

// Submit commits the session's draft and waits for the outcome until ctx is
// done. When ctx ends first the submission keeps running and the caller gets
// domain.ErrSubmissionInFlight; the result is visible through Get.
//
// A non-empty key that already produced a reservation for this session
// returns that record without submitting again. A key used by another
// session is rejected with domain.ErrValidation.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID, key string) (domain.ReservationRecord, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("service.SessionService.Submit: %w", err)
	}

	if key != "" {
		if rec, ok := s.committedUnder(sess, key); ok {
			return rec, nil
		}
	}
	if key != "" && s.keys != nil {
		rec, found, err := s.replay(ctx, id, key)
		if err != nil {
			return domain.ReservationRecord{}, fmt.Errorf("service.SessionService.Submit: %w", err)
		}
		if found {
			return rec, nil
		}
	}

	s.mu.Lock()
	sess.key = key
	s.mu.Unlock()

	outcome, err := sess.wf.Submit(ctx)
	if err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("service.SessionService.Submit: %w", err)
	}

	select {
	case out := <-outcome:
		if out.Err != nil {
			return domain.ReservationRecord{}, fmt.Errorf("service.SessionService.Submit: %w", out.Err)
		}
		return *out.Record, nil
	case <-ctx.Done():
		return domain.ReservationRecord{}, fmt.Errorf("service.SessionService.Submit: %w: %w",
			domain.ErrSubmissionInFlight, ctx.Err())
	}
}

// Abandon discards the session's draft. The session stays addressable in the
// abandoned state until the janitor removes it.
func (s *SessionService) Abandon(id uuid.UUID) error {
	sess, err := s.lookup(id)
	if err != nil {
		return fmt.Errorf("service.SessionService.Abandon: %w", err)
	}
	sess.wf.Abandon()
	return nil
}

// Sweep abandons and removes sessions idle for longer than the TTL. Sessions
// with a submission in flight are left alone. It returns how many were removed.
func (s *SessionService) Sweep(now time.Time) int {
	if s.cfg.TTL <= 0 {
		return 0
	}

	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) <= s.cfg.TTL || sess.wf.State() == domain.StateSubmitting {
			continue
		}
		delete(s.sessions, id)
		expired = append(expired, sess)
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.wf.Abandon()
	}
	if len(expired) > 0 {
		s.cfg.Logger.Info("expired reservation sessions removed", "count", len(expired))
	}
	return len(expired)
}

// RunJanitor calls Sweep every interval until ctx is cancelled.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(s.cfg.Now())
		}
	}
}

// Len returns the number of hosted sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionService) lookup(id uuid.UUID) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sess.lastSeen = s.cfg.Now()
	return sess, nil
}

// committedUnder returns the session's record when it was submitted with key.
// It covers retries that arrive before the key reaches the idempotency store.
func (s *SessionService) committedUnder(sess *session, key string) (domain.ReservationRecord, bool) {
	s.mu.Lock()
	same := sess.key == key
	s.mu.Unlock()
	if !same {
		return domain.ReservationRecord{}, false
	}
	v := sess.wf.View()
	if v.State != domain.StateSubmitted || v.Record == nil {
		return domain.ReservationRecord{}, false
	}
	return *v.Record, true
}

func (s *SessionService) replay(ctx context.Context, id uuid.UUID, key string) (domain.ReservationRecord, bool, error) {
	entry, found, err := s.keys.Lookup(ctx, key)
	if err != nil || !found {
		return domain.ReservationRecord{}, false, err
	}
	if entry.SessionID != id {
		return domain.ReservationRecord{}, false, fmt.Errorf("%w: idempotency key already used by another booking", domain.ErrValidation)
	}
	rec, err := s.records.GetByID(ctx, entry.ReservationID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ReservationRecord{}, false, nil
	}
	if err != nil {
		return domain.ReservationRecord{}, false, err
	}
	return rec, true, nil
}

// confirmed runs on the submission goroutine once a workflow accepts a success.
func (s *SessionService) confirmed(ctx context.Context, sess *session, rec domain.ReservationRecord) {
	s.mu.Lock()
	key := sess.key
	s.mu.Unlock()

	if key != "" && s.keys != nil {
		entry := repo.IdempotencyEntry{SessionID: sess.wf.ID(), ReservationID: rec.ID}
		if err := s.keys.Remember(ctx, key, entry); err != nil {
			s.cfg.Logger.ErrorContext(ctx, "failed to remember idempotency key",
				"session_id", sess.wf.ID(), "reservation_id", rec.ID, "error", err)
		}
	}
	if s.notify != nil {
		s.notify.Confirmed(ctx, rec)
	}
}
