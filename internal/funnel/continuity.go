package funnel

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

// DefaultOrigin is the base URL continuation links point at when no origin
// is configured.
const DefaultOrigin = "https://example.com"

// isoMillis renders timestamps the way the persisted form snapshot expects:
// UTC with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z"

// ContinuityOptions configures a Continuity service. Zero values select
// defaults.
type ContinuityOptions struct {
	Origin string
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

// Resume is the outcome of looking for a continuation token in a URL.
type Resume struct {
	HasToken bool
	Step     int
}

// Continuity owns the session identifier, the persisted form snapshot, and
// continuation tokens.
type Continuity struct {
	mu        sync.Mutex
	local     types.Storage
	transient types.Storage
	origin    string
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	sessionID string
}

// NewContinuity builds the service and makes sure a session id exists.
// transient may be nil when no per-tab mirror is wanted.
func NewContinuity(local, transient types.Storage, opts ContinuityOptions) (*Continuity, error) {
	c := &Continuity{
		local:     local,
		transient: transient,
		origin:    opts.Origin,
		now:       opts.Now,
		newID:     opts.NewID,
		logger:    opts.Logger,
	}
	if c.origin == "" {
		c.origin = DefaultOrigin
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if _, err := c.GetOrCreateSessionID(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetOrCreateSessionID returns the persisted session id, generating and
// persisting a fresh one when none exists.
func (c *Continuity) GetOrCreateSessionID() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok, err := c.local.Get(types.KeySessionID)
	if err != nil {
		return "", fmt.Errorf("reading session id: %w", err)
	}
	if ok && id != "" {
		c.sessionID = id
		return id, nil
	}

	id = c.newID()
	if err := c.local.Set(types.KeySessionID, id); err != nil {
		return "", fmt.Errorf("writing session id: %w", err)
	}
	c.sessionID = id
	c.logger.Debug("session created", "session_id", id)
	return id, nil
}

// SessionID returns the id the service currently answers with.
func (c *Continuity) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Origin returns the base URL continuation links are built on.
func (c *Continuity) Origin() string {
	return c.origin
}

// SaveFormData persists record under the formData key with sessionId and
// lastUpdated added, and mirrors the raw record to the transient store.
func (c *Continuity) SaveFormData(record types.FormRecord) error {
	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()

	payload := record.Clone()
	payload["sessionId"] = sessionID
	payload["lastUpdated"] = c.now().UTC().Format(isoMillis)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding form data: %w", err)
	}
	if err := c.local.Set(types.KeyFormData, string(data)); err != nil {
		return fmt.Errorf("writing form data: %w", err)
	}

	if c.transient != nil {
		raw, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encoding form data: %w", err)
		}
		if err := c.transient.Set(types.KeyFormData, string(raw)); err != nil {
			return fmt.Errorf("writing transient form data: %w", err)
		}
	}
	return nil
}

// GenerateContinuationLink returns origin?continue=<token> for the current
// session and step. email and phone are accepted for future delivery and
// are not embedded in the link.
func (c *Continuity) GenerateContinuationLink(email, phone string, step int) (string, error) {
	u, err := url.Parse(c.origin)
	if err != nil {
		return "", fmt.Errorf("parsing origin %q: %w", c.origin, err)
	}
	q := u.Query()
	q.Set(ContinueParam, EncodeToken(c.SessionID(), step, c.now()))
	u.RawQuery = q.Encode()

	c.logger.Debug("continuation link generated",
		"step", step,
		"has_email", email != "",
		"has_phone", phone != "")
	return u.String(), nil
}

// QRCodeData returns the payload a QR code for step should encode. It is the
// same as the continuation link.
func (c *Continuity) QRCodeData(step int) (string, error) {
	return c.GenerateContinuationLink("", "", step)
}

// ProcessContinuationToken looks for a continue parameter in currentURL. A
// well-formed token replaces the persisted session id and yields its step.
// Missing or malformed tokens leave the session untouched.
func (c *Continuity) ProcessContinuationToken(currentURL string) Resume {
	if currentURL == "" {
		return Resume{}
	}
	u, err := url.Parse(currentURL)
	if err != nil {
		c.logger.Debug("unparseable url", "url", currentURL, "error", err)
		return Resume{}
	}
	raw := u.Query().Get(ContinueParam)
	if raw == "" {
		return Resume{}
	}

	tok, err := DecodeToken(raw)
	if err != nil {
		c.logger.Warn("ignoring continuation token", "error", err)
		return Resume{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.local.Set(types.KeySessionID, tok.SessionID); err != nil {
		c.logger.Error("persisting resumed session id", "error", err)
	}
	c.sessionID = tok.SessionID
	c.logger.Info("session resumed", "session_id", tok.SessionID, "step", tok.Step)
	return Resume{HasToken: true, Step: tok.Step}
}
