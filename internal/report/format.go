package report

import (
	"fmt"
	"unicode/utf8"
)

const (
	// TruncationNotice is appended when a report exceeds the length budget.
	TruncationNotice = "\n... [report truncated]"

	// UnknownTime marks a missing or unparseable generation timestamp.
	UnknownTime = "Unknown time"

	// DefaultSource labels reports that arrive without a source field.
	DefaultSource = "unknown"

	footerFormat = "\n\n:bar_chart: Generated: %s | Source: %s"
	timeLayout   = "2006-01-02 15:04:05 MST"

	// truncationReserve is how much of the budget is held back for the
	// truncation notice and footer when a report is cut down.
	truncationReserve = 100
)

// Formatter renders an inbound report into the final message text.
type Formatter struct {
	MaxLength int
}

// Format truncates the report to fit the length budget and appends the
// footer. Truncation operates on runes so multi-byte text is never split
// mid-character.
func (f Formatter) Format(in InboundReport) string {
	footer := fmt.Sprintf(footerFormat, generatedAt(in.Timestamp), sourceLabel(in.Source))

	text := in.Report
	if runes := []rune(text); f.MaxLength > 0 && len(runes) > f.MaxLength {
		keep := f.MaxLength - truncationReserve
		// The reserve must cover the notice and the footer; a long source
		// label shrinks the kept text rather than busting the budget.
		if overhead := Length(TruncationNotice) + Length(footer); keep > f.MaxLength-overhead {
			keep = f.MaxLength - overhead
		}
		if keep < 0 {
			keep = 0
		}
		text = string(runes[:keep]) + TruncationNotice
	}
	return text + footer
}

// Length reports message length the way the caller sees it: in characters.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

func generatedAt(ts Timestamp) string {
	if !ts.Valid {
		return UnknownTime
	}
	return ts.UTC().Format(timeLayout)
}

func sourceLabel(source string) string {
	if source == "" {
		return DefaultSource
	}
	return source
}
