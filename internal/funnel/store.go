package funnel

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

// FormStore holds the single mutable form record for a session and
// persists every change through Continuity.
type FormStore struct {
	mu         sync.Mutex
	record     types.FormRecord
	continuity *Continuity
	local      types.Storage
	logger     *slog.Logger
}

// NewFormStore returns a store seeded with the default record.
func NewFormStore(continuity *Continuity, logger *slog.Logger) *FormStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FormStore{
		record:     types.DefaultFormRecord(),
		continuity: continuity,
		local:      continuity.local,
		logger:     logger,
	}
}

// Load merges the persisted snapshot over the defaults. A missing snapshot
// leaves the defaults; a malformed one is logged and ignored.
func (s *FormStore) Load() error {
	raw, ok, err := s.local.Get(types.KeyFormData)
	if err != nil {
		return fmt.Errorf("reading form data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = types.DefaultFormRecord()
	if !ok || raw == "" {
		return nil
	}

	var stored map[string]any
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Warn("ignoring malformed form data", "error", err)
		return nil
	}
	for name, value := range stored {
		v, err := types.NormalizeValue(name, value)
		if err != nil {
			s.logger.Debug("dropping stored field", "field", name, "error", err)
			continue
		}
		s.record[name] = v
	}
	return nil
}

// Record returns a copy of the current record.
func (s *FormStore) Record() types.FormRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Update merges partial into the record, stamps the session id, and
// persists. Either every field is applied or none is.
func (s *FormStore) Update(partial types.FormRecord) error {
	clean, err := normalize(partial)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeLocked(clean)
}

// SaveFieldProgress records a single field. A non-empty email or phone also
// stores the abandonment contact.
func (s *FormStore) SaveFieldProgress(name string, value any) error {
	clean, err := normalize(types.FormRecord{name: value})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mergeLocked(clean); err != nil {
		return err
	}

	if (name == "email" || name == "phone") && s.record.String(name) != "" {
		s.trackAbandonmentLocked()
	}
	return nil
}

// Reset replaces the record with the defaults under the current session id
// and removes the persisted snapshot.
func (s *FormStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = types.DefaultFormRecord()
	s.record["sessionId"] = s.continuity.SessionID()
	if err := s.local.Remove(types.KeyFormData); err != nil {
		return fmt.Errorf("removing form data: %w", err)
	}
	return nil
}

// RecordExitAttempt increments the persisted exit-attempt counter and
// returns the new count.
func (s *FormStore) RecordExitAttempt() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	raw, ok, err := s.local.Get(types.KeyExitAttempts)
	if err != nil {
		return 0, fmt.Errorf("reading exit attempts: %w", err)
	}
	if ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			count = n
		}
	}
	count++
	if err := s.local.Set(types.KeyExitAttempts, strconv.Itoa(count)); err != nil {
		return 0, fmt.Errorf("writing exit attempts: %w", err)
	}
	return count, nil
}

// SavePartialEmail stores an email captured on exit intent. Blank input is
// ignored.
func (s *FormStore) SavePartialEmail(email string) error {
	email = sanitizeText(email)
	if email == "" {
		return nil
	}
	if err := s.local.Set(types.KeyPartialEmail, email); err != nil {
		return fmt.Errorf("writing partial email: %w", err)
	}
	return nil
}

// Abandonment returns the stored abandonment contact values.
func (s *FormStore) Abandonment() (email, phone string, err error) {
	email, _, err = s.local.Get(types.KeyAbandonEmail)
	if err != nil {
		return "", "", err
	}
	phone, _, err = s.local.Get(types.KeyAbandonPhone)
	if err != nil {
		return "", "", err
	}
	return email, phone, nil
}

// mergeLocked applies clean values and persists. Caller holds s.mu.
func (s *FormStore) mergeLocked(clean types.FormRecord) error {
	for name, value := range clean {
		s.record[name] = value
	}
	s.record["sessionId"] = s.continuity.SessionID()
	return s.continuity.SaveFormData(s.record)
}

// trackAbandonmentLocked is best effort; failures are logged. Caller holds s.mu.
func (s *FormStore) trackAbandonmentLocked() {
	if email := s.record.String("email"); email != "" {
		if err := s.local.Set(types.KeyAbandonEmail, email); err != nil {
			s.logger.Warn("storing abandonment email", "error", err)
		}
	}
	if phone := s.record.String("phone"); phone != "" {
		if err := s.local.Set(types.KeyAbandonPhone, phone); err != nil {
			s.logger.Warn("storing abandonment phone", "error", err)
		}
	}
}

// normalize validates and sanitizes every value in partial.
func normalize(partial types.FormRecord) (types.FormRecord, error) {
	clean := make(types.FormRecord, len(partial))
	for name, value := range partial {
		v, err := types.NormalizeValue(name, value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		clean[name] = sanitizeValue(v)
	}
	return clean, nil
}
