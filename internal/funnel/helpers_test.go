package funnel

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/leadfunnel/internal/memstore"
	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

var testTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func fixedClock() time.Time { return testTime }

type fixture struct {
	local      *memstore.Store
	transient  *memstore.Store
	continuity *Continuity
	compliance *Compliance
	store      *FormStore
	funnel     *Funnel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return buildFixture(t, memstore.New(), "sess-1")
}

// buildFixture wires every service over local. New session ids are taken
// from sessionID.
func buildFixture(t *testing.T, local *memstore.Store, sessionID string) *fixture {
	t.Helper()
	transient := memstore.New()
	cont, err := NewContinuity(local, transient, ContinuityOptions{
		Now:   fixedClock,
		NewID: func() string { return sessionID },
	})
	require.NoError(t, err)
	comp := NewCompliance(local, ComplianceOptions{Now: fixedClock})
	store := NewFormStore(cont, nil)
	return &fixture{
		local:      local,
		transient:  transient,
		continuity: cont,
		compliance: comp,
		store:      store,
		funnel:     New(local, store, cont, comp, nil),
	}
}

func validInitialFields() types.FormRecord {
	return types.FormRecord{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"phone":     "(555) 123-4567",
		"zipCode":   "90210",
	}
}

var errWriteFailed = errors.New("write failed")

// failingStorage wraps a Storage and fails writes to one key.
type failingStorage struct {
	types.Storage
	failKey string
}

func (s *failingStorage) Set(key, value string) error {
	if key == s.failKey {
		return errWriteFailed
	}
	return s.Storage.Set(key, value)
}
