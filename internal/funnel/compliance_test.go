package funnel

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/leadfunnel/internal/jsonl"
	"github.com/mesh-intelligence/leadfunnel/internal/memstore"
	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

func TestCompliance_DisclosureText(t *testing.T) {
	base := "By submitting, I agree to receive telemarketing calls and text messages via automated technology from JobResourceCenter and its marketing partners at the phone number provided. I understand this consent is not a condition of purchase. Msg & data rates may apply. Reply STOP to cancel. View our Privacy Policy."

	tests := []struct {
		region string
		want   string
	}{
		{"CA", base + " CA residents: See our CA Privacy Notice for additional rights."},
		{"NV", base + " Under Nevada law, you may opt out of the sale of your personal information."},
		{"VA", base + " Residents of VA, CT, and CO have additional privacy rights under state law."},
		{"CT", base + " Residents of VA, CT, and CO have additional privacy rights under state law."},
		{"co", base + " Residents of VA, CT, and CO have additional privacy rights under state law."},
		{"TX", base},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			c := NewCompliance(memstore.New(), ComplianceOptions{
				Location: types.Location{Country: "US", Region: tt.region},
			})
			assert.Equal(t, tt.want, c.DisclosureText())
		})
	}
}

func TestCompliance_Defaults(t *testing.T) {
	c := NewCompliance(memstore.New(), ComplianceOptions{Brand: "Acme"})

	assert.Equal(t, DefaultIPAddress, c.UserIP())
	assert.Equal(t, DefaultLocation, c.Location())
	assert.True(t, strings.Contains(c.DisclosureText(), "from Acme and its marketing partners"))
}

func TestCompliance_LogConsentAppendsOne(t *testing.T) {
	local := memstore.New()
	c := NewCompliance(local, ComplianceOptions{Now: fixedClock})

	before, err := c.PersistedLog()
	require.NoError(t, err)
	require.Empty(t, before)

	snapshot := types.FormRecord{"email": "jane@example.com"}
	rec, err := c.LogConsent("x", snapshot, "disclosure")
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "x", entries[0].Type)

	persisted, err := c.PersistedLog()
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "x", persisted[0].Type)
	assert.Equal(t, rec.ID, persisted[0].ID)
	assert.Equal(t, "disclosure", persisted[0].DisclosureText)
	assert.Equal(t, DefaultIPAddress, persisted[0].IPAddress)
	assert.Equal(t, DefaultUserAgent, persisted[0].UserAgent)
	assert.True(t, persisted[0].Timestamp.Equal(testTime))
	require.NotNil(t, persisted[0].Location)
	assert.Equal(t, "Los Angeles", persisted[0].Location.City)
	assert.Equal(t, "jane@example.com", persisted[0].FormData["email"])

	// Later changes to the caller's record do not reach the log.
	snapshot["email"] = "changed@example.com"
	assert.Equal(t, "jane@example.com", c.Entries()[0].FormData["email"])
}

func TestCompliance_LogConsentRejectsEmptyType(t *testing.T) {
	c := NewCompliance(memstore.New(), ComplianceOptions{})
	_, err := c.LogConsent("  ", nil, "")
	assert.ErrorIs(t, err, ErrInvalidConsentType)
	assert.Empty(t, c.Entries())
}

func TestCompliance_MalformedLogLeftUntouched(t *testing.T) {
	const damaged = `[{"type":"old"`
	local := memstore.New()
	require.NoError(t, local.Set(types.KeyConsentLog, damaged))
	c := NewCompliance(local, ComplianceOptions{})

	persisted, err := c.PersistedLog()
	require.NoError(t, err)
	assert.Empty(t, persisted)

	_, err = c.LogConsent("initial_form_submit", nil, "text")
	assert.ErrorIs(t, err, ErrMalformedConsentLog)
	assert.Len(t, c.Entries(), 1)

	stored, ok, err := local.Get(types.KeyConsentLog)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, damaged, stored)
}

func TestCompliance_UnknownEntriesCarried(t *testing.T) {
	local := memstore.New()
	require.NoError(t, local.Set(types.KeyConsentLog, `[{"legacy":true}]`))
	c := NewCompliance(local, ComplianceOptions{})

	_, err := c.LogConsent("x", nil, "")
	require.NoError(t, err)

	stored, _, err := local.Get(types.KeyConsentLog)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, `[{"legacy":true},`), stored)
}

func TestCompliance_PersistFailureKeepsEntry(t *testing.T) {
	local := &failingStorage{Storage: memstore.New(), failKey: types.KeyConsentLog}
	c := NewCompliance(local, ComplianceOptions{})

	_, err := c.LogConsent("x", nil, "")
	assert.ErrorIs(t, err, errWriteFailed)
	assert.Len(t, c.Entries(), 1)
}

func TestCompliance_Export(t *testing.T) {
	c := NewCompliance(memstore.New(), ComplianceOptions{})
	_, err := c.LogConsent("a", nil, "")
	require.NoError(t, err)
	_, err = c.LogConsent("b", nil, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "consent.jsonl")
	n, err := c.Export(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines, err := jsonl.Read(path)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"type":"a"`)
	assert.Contains(t, string(lines[1]), `"type":"b"`)
}
