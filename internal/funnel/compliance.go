package funnel

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/leadfunnel/internal/jsonl"
	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

// Compliance defaults used when no options are supplied.
const (
	DefaultBrand     = "JobResourceCenter"
	DefaultIPAddress = "192.168.1.1"
	DefaultUserAgent = "leadfunnel"
)

// DefaultLocation is the jurisdiction attributed to consent events when none
// is configured.
var DefaultLocation = types.Location{Country: "US", Region: "CA", City: "Los Angeles"}

const baseDisclosure = "By submitting, I agree to receive telemarketing calls and text messages via automated technology from %s and its marketing partners at the phone number provided. I understand this consent is not a condition of purchase. Msg & data rates may apply. Reply STOP to cancel. View our Privacy Policy."

var regionAddenda = map[string]string{
	"CA": " CA residents: See our CA Privacy Notice for additional rights.",
	"NV": " Under Nevada law, you may opt out of the sale of your personal information.",
	"VA": " Residents of VA, CT, and CO have additional privacy rights under state law.",
	"CT": " Residents of VA, CT, and CO have additional privacy rights under state law.",
	"CO": " Residents of VA, CT, and CO have additional privacy rights under state law.",
}

// ComplianceOptions configures a Compliance logger. Zero values select the
// package defaults.
type ComplianceOptions struct {
	Brand     string
	IPAddress string
	UserAgent string
	Location  types.Location
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

// Compliance records consent events in memory and appends them to the
// persisted consentLog array.
type Compliance struct {
	mu        sync.Mutex
	local     types.Storage
	entries   []types.ConsentRecord
	brand     string
	ipAddress string
	userAgent string
	location  types.Location
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

// NewCompliance builds a consent logger over local.
func NewCompliance(local types.Storage, opts ComplianceOptions) *Compliance {
	c := &Compliance{
		local:     local,
		brand:     opts.Brand,
		ipAddress: opts.IPAddress,
		userAgent: opts.UserAgent,
		location:  opts.Location,
		now:       opts.Now,
		newID:     opts.NewID,
		logger:    opts.Logger,
	}
	if c.brand == "" {
		c.brand = DefaultBrand
	}
	if c.ipAddress == "" {
		c.ipAddress = DefaultIPAddress
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.location == (types.Location{}) {
		c.location = DefaultLocation
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = newConsentID
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// newConsentID returns a time-ordered id so exported logs sort by creation.
func newConsentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// UserIP returns the address attributed to consent events.
func (c *Compliance) UserIP() string { return c.ipAddress }

// Location returns the jurisdiction attributed to consent events.
func (c *Compliance) Location() types.Location { return c.location }

// DisclosureText returns the TCPA disclosure for the configured region.
func (c *Compliance) DisclosureText() string {
	text := fmt.Sprintf(baseDisclosure, c.brand)
	return text + regionAddenda[strings.ToUpper(c.location.Region)]
}

// LogConsent appends a consent event. The record is always kept in memory;
// a persistence failure is returned alongside it.
func (c *Compliance) LogConsent(consentType string, snapshot types.FormRecord, disclosure string) (types.ConsentRecord, error) {
	if strings.TrimSpace(consentType) == "" {
		return types.ConsentRecord{}, ErrInvalidConsentType
	}
	if snapshot == nil {
		snapshot = types.FormRecord{}
	}

	loc := c.location
	rec := types.ConsentRecord{
		ID:             c.newID(),
		Type:           consentType,
		Timestamp:      c.now().UTC(),
		IPAddress:      c.ipAddress,
		UserAgent:      c.userAgent,
		FormData:       snapshot.Clone(),
		DisclosureText: disclosure,
		Location:       &loc,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, rec)
	c.logger.Info("consent logged", "type", consentType, "id", rec.ID)

	if err := c.appendPersisted(rec); err != nil {
		return rec, fmt.Errorf("persisting consent %s: %w", consentType, err)
	}
	return rec, nil
}

// appendPersisted adds rec to the stored array. Entries the process does not
// understand are carried through untouched, and a stored value that is not
// a JSON array is never overwritten. Caller holds c.mu.
func (c *Compliance) appendPersisted(rec types.ConsentRecord) error {
	var stored []json.RawMessage
	raw, ok, err := c.local.Get(types.KeyConsentLog)
	if err != nil {
		return err
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedConsentLog, err)
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	stored = append(stored, data)

	out, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return c.local.Set(types.KeyConsentLog, string(out))
}

// Entries returns the events logged by this process, oldest first.
func (c *Compliance) Entries() []types.ConsentRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.ConsentRecord(nil), c.entries...)
}

// PersistedLog returns the stored consent array. A malformed array reads as
// empty.
func (c *Compliance) PersistedLog() ([]types.ConsentRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok, err := c.local.Get(types.KeyConsentLog)
	if err != nil {
		return nil, fmt.Errorf("reading consent log: %w", err)
	}
	if !ok || raw == "" {
		return []types.ConsentRecord{}, nil
	}

	var records []types.ConsentRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		c.logger.Warn("malformed consent log", "error", err)
		return []types.ConsentRecord{}, nil
	}
	return records, nil
}

// Export writes the persisted consent log to path as JSON Lines and returns
// the number of records written.
func (c *Compliance) Export(path string) (int, error) {
	records, err := c.PersistedLog()
	if err != nil {
		return 0, err
	}
	lines, err := jsonl.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("encoding consent log: %w", err)
	}
	if err := jsonl.Write(path, lines); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(records), nil
}
