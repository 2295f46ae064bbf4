package report

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrNoReport is returned when an inbound payload carries no report text.
// Its text is the exact error body sent back to the caller.
var ErrNoReport = errors.New("No report data provided")

// InboundReport is the payload posted by the intelligence tool.
// Only the report text is required; timestamp and source are best-effort
// display metadata for the message footer.
type InboundReport struct {
	Report    string    `json:"report"`
	Timestamp Timestamp `json:"timestamp,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// Validate checks the single invariant of the payload.
func (r InboundReport) Validate() error {
	if strings.TrimSpace(r.Report) == "" {
		return ErrNoReport
	}
	return nil
}

// Timestamp decodes the loosely-typed timestamp field. The Python tool
// sends an ISO-8601 string, older callers send epoch milliseconds or
// seconds. A value that cannot be interpreted behaves as absent rather
// than failing the request.
type Timestamp struct {
	time.Time
	Valid bool
}

const epochMillisCutoff = 1e11

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Valid = false

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return t.parseString(s)
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if f, err := n.Float64(); err == nil {
			if f >= epochMillisCutoff {
				t.Time = time.UnixMilli(int64(f)).UTC()
			} else {
				t.Time = time.Unix(int64(f), 0).UTC()
			}
			t.Valid = true
		}
	}
	return nil
}

func (t *Timestamp) parseString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			t.Valid = true
			return nil
		}
	}

	// Numeric string, e.g. "1700000000000"
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f >= epochMillisCutoff {
			t.Time = time.UnixMilli(int64(f)).UTC()
		} else {
			t.Time = time.Unix(int64(f), 0).UTC()
		}
		t.Valid = true
	}
	return nil
}

// ParseTimestamp interprets a CLI-provided timestamp value. Like JSON
// decoding, an uninterpretable value behaves as absent.
func ParseTimestamp(s string) Timestamp {
	var t Timestamp
	_ = t.parseString(s)
	return t
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
