package types

import "time"

// Location is the jurisdiction a consent event is attributed to.
type Location struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

// ConsentRecord is one append-only consent event. Records are never edited
// or deduplicated once logged.
type ConsentRecord struct {
	ID             string     `json:"id,omitempty"`
	Type           string     `json:"type"`
	Timestamp      time.Time  `json:"timestamp"`
	IPAddress      string     `json:"ipAddress"`
	UserAgent      string     `json:"userAgent"`
	FormData       FormRecord `json:"formData"`
	DisclosureText string     `json:"tcpaText"`
	Location       *Location  `json:"location,omitempty"`
}
