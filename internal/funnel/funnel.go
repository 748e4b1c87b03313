package funnel

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

// State is a point-in-time view of the funnel.
type State struct {
	SessionID string           `json:"sessionId"`
	Step      int              `json:"step"`
	StepName  string           `json:"stepName"`
	Completed bool             `json:"completed"`
	Record    types.FormRecord `json:"formData"`
}

// Funnel owns the current step and drives screens through the store,
// the compliance logger, and the sequencer.
type Funnel struct {
	mu         sync.Mutex
	local      types.Storage
	store      *FormStore
	continuity *Continuity
	compliance *Compliance
	screens    map[int]Screen
	current    int
	logger     *slog.Logger
}

// New builds a controller positioned at the initial step. Call Resume to
// restore a previous position.
func New(local types.Storage, store *FormStore, continuity *Continuity, compliance *Compliance, logger *slog.Logger) *Funnel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Funnel{
		local:      local,
		store:      store,
		continuity: continuity,
		compliance: compliance,
		screens:    Screens(),
		current:    types.StepInitial,
		logger:     logger,
	}
}

// Store returns the form store the funnel writes through.
func (f *Funnel) Store() *FormStore { return f.store }

// Continuity returns the session service.
func (f *Funnel) Continuity() *Continuity { return f.continuity }

// Compliance returns the consent logger.
func (f *Funnel) Compliance() *Compliance { return f.compliance }

// Current returns the current step.
func (f *Funnel) Current() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// State returns the current step with a copy of the record.
func (f *Funnel) State() State {
	f.mu.Lock()
	step := f.current
	f.mu.Unlock()

	rec := f.store.Record()
	completed, _ := rec.Bool("formCompleted")
	return State{
		SessionID: f.continuity.SessionID(),
		Step:      step,
		StepName:  types.StepName(step),
		Completed: completed,
		Record:    rec,
	}
}

// Resume processes a continuation token in currentURL, restores the
// persisted record, and picks the starting step: a token step in range,
// then the persisted step, then step 2 when the initial fields are all
// filled, then step 1.
func (f *Funnel) Resume(currentURL string) (int, error) {
	res := f.continuity.ProcessContinuationToken(currentURL)
	if err := f.store.Load(); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var step int
	if res.HasToken && types.ValidStep(res.Step) {
		step = res.Step
	} else {
		if res.HasToken {
			f.logger.Warn("continuation step out of range", "step", res.Step)
		}
		step = f.fallbackStepLocked()
	}

	if err := f.enterLocked(step); err != nil {
		return 0, err
	}
	return step, nil
}

func (f *Funnel) fallbackStepLocked() int {
	if raw, ok, err := f.local.Get(types.KeyCurrentStep); err == nil && ok {
		if n, err := strconv.Atoi(raw); err == nil && types.ValidStep(n) {
			return n
		}
	}
	rec := f.store.Record()
	for _, name := range []string{"firstName", "lastName", "email", "phone", "zipCode"} {
		if !rec.Filled(name) {
			return types.StepInitial
		}
	}
	return types.StepVerification
}

// Submit applies fields to the record and submits the current screen. On
// success it returns the new step. Validation failures return the current
// step and a *ValidationError.
func (f *Funnel) Submit(fields types.FormRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	step := f.current
	if step == types.StepFinal {
		return step, ErrFunnelComplete
	}
	screen, ok := f.screens[step]
	if !ok {
		return step, fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}

	if len(fields) > 0 {
		if err := f.store.Update(fields); err != nil {
			return step, err
		}
	}

	rec := f.store.Record()
	errs, declined := screen.Evaluate(rec)
	if len(errs) > 0 {
		return step, &ValidationError{Step: step, Fields: errs}
	}

	if declined {
		if len(screen.ResetOnDecline) > 0 {
			resets := make(types.FormRecord, len(screen.ResetOnDecline))
			for _, name := range screen.ResetOnDecline {
				resets[name] = nil
			}
			if err := f.store.Update(resets); err != nil {
				return step, err
			}
		}
	} else {
		if screen.Apply != nil {
			if err := f.store.Update(screen.Apply(rec)); err != nil {
				return step, err
			}
		}
		if screen.Consent != nil {
			consentType, text := screen.Consent(rec, f.compliance.DisclosureText())
			f.logConsentLocked(consentType, text)
		}
	}

	next := NextStep(step, f.store.Record())
	if !types.ValidStep(next) {
		next = types.StepFinal
	}
	if err := f.enterLocked(next); err != nil {
		return step, err
	}
	f.logger.Debug("step submitted", "from", types.StepName(step), "to", types.StepName(next), "declined", declined)
	return next, nil
}

// SaveField records a single field without submitting the screen.
func (f *Funnel) SaveField(name string, value any) error {
	return f.store.SaveFieldProgress(name, value)
}

// Back moves to the previous step, never below step 1.
func (f *Funnel) Back() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev := PrevStep(f.current)
	if prev < types.StepInitial {
		prev = types.StepInitial
	}
	if err := f.enterLocked(prev); err != nil {
		return f.current, err
	}
	return prev, nil
}

// Restart returns to step 1. The record is kept.
func (f *Funnel) Restart() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enterLocked(types.StepInitial); err != nil {
		return f.current, err
	}
	return types.StepInitial, nil
}

// Reset clears the record and returns to step 1.
func (f *Funnel) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.store.Reset(); err != nil {
		return err
	}
	return f.enterLocked(types.StepInitial)
}

// GoTo jumps to step, for tooling that drives the funnel out of order.
func (f *Funnel) GoTo(step int) error {
	if !types.ValidStep(step) {
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enterLocked(step)
}

// LogConsent records a consent event against the current record.
func (f *Funnel) LogConsent(consentType, text string) (types.ConsentRecord, error) {
	return f.compliance.LogConsent(consentType, f.store.Record(), text)
}

// Download logs the toolkit download. Only valid on the final step.
func (f *Funnel) Download() (types.ConsentRecord, error) {
	if f.Current() != types.StepFinal {
		return types.ConsentRecord{}, ErrNotAtFinalStep
	}
	return f.LogConsent("resource_download", "User downloaded job search toolkit")
}

// ContinuationLink returns a link that resumes the current step.
func (f *Funnel) ContinuationLink() (string, error) {
	rec := f.store.Record()
	return f.continuity.GenerateContinuationLink(rec.String("email"), rec.String("phone"), f.Current())
}

// Exit records an exit attempt and, when given, the partially typed email.
func (f *Funnel) Exit(partialEmail string) (int, error) {
	count, err := f.store.RecordExitAttempt()
	if err != nil {
		return 0, err
	}
	if err := f.store.SavePartialEmail(partialEmail); err != nil {
		return count, err
	}
	return count, nil
}

// logConsentLocked logs a screen's consent event. Persistence failures are
// logged and do not block advancement.
func (f *Funnel) logConsentLocked(consentType, text string) {
	if _, err := f.compliance.LogConsent(consentType, f.store.Record(), text); err != nil {
		f.logger.Warn("consent not persisted", "type", consentType, "error", err)
	}
}

// enterLocked moves to step, persists it, and marks completion on the final
// step. Caller holds f.mu.
func (f *Funnel) enterLocked(step int) error {
	f.current = step
	if err := f.local.Set(types.KeyCurrentStep, strconv.Itoa(step)); err != nil {
		return fmt.Errorf("writing current step: %w", err)
	}
	if step == types.StepFinal {
		if err := f.store.Update(types.FormRecord{"formCompleted": true}); err != nil {
			return err
		}
	}
	return nil
}
