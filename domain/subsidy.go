package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// SubsidyType tags where a user's subsidy came from.
type SubsidyType string

const (
	SubsidyTypeLicense SubsidyType = "license"
)

const (
	subsidyStartField      = "startDate"
	subsidyExpirationField = "expirationDate"
	subsidyTypeField       = "subsidyType"
)

var subsidyDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// SubsidyPayload is the normalized body returned by a subsidy service.
type SubsidyPayload map[string]any

// StartDate returns the parsed start of the subsidy window.
func (p SubsidyPayload) StartDate() (time.Time, bool) {
	return p.date(subsidyStartField)
}

// ExpirationDate returns the parsed end of the subsidy window.
func (p SubsidyPayload) ExpirationDate() (time.Time, bool) {
	return p.date(subsidyExpirationField)
}

// ValidAt reports whether both window bounds are present and well formed and
// now falls inside them, bounds included.
func (p SubsidyPayload) ValidAt(now time.Time) bool {
	start, ok := p.StartDate()
	if !ok {
		return false
	}
	expiration, ok := p.ExpirationDate()
	if !ok {
		return false
	}
	return !now.Before(start) && !now.After(expiration)
}

func (p SubsidyPayload) date(field string) (time.Time, bool) {
	raw, ok := p[field].(string)
	if !ok {
		return time.Time{}, false
	}
	return ParseSubsidyDate(raw)
}

// ParseSubsidyDate accepts the timestamp shapes the subsidy services emit.
// Values without a zone are read as UTC.
func ParseSubsidyDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range subsidyDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Subsidy is the single subsidy selected for a user, tagged with its source.
type Subsidy struct {
	Type    SubsidyType
	Payload SubsidyPayload
}

// MarshalJSON flattens the payload next to the subsidyType tag.
func (s Subsidy) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Payload)+1)
	for k, v := range s.Payload {
		out[k] = v
	}
	out[subsidyTypeField] = s.Type
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *Subsidy) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if tag, ok := raw[subsidyTypeField].(string); ok {
		s.Type = SubsidyType(tag)
	}
	delete(raw, subsidyTypeField)
	s.Payload = raw
	return nil
}
