// Package minutes models standup/workshop minutes and their mapping to and
// from Word documents.
package minutes

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DateFormat is the date layout used in filenames and document headers.
const DateFormat = "2006-01-02"

// ErrInvalidDate indicates a date that is not a valid YYYY-MM-DD value.
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// Status describes how the team is tracking against plan.
type Status string

const (
	StatusOnTrack        Status = "on-track"
	StatusSlightlyBehind Status = "slightly-behind"
	StatusNeedsHelp      Status = "needs-help"
)

// Label returns the display label used in generated documents.
func (s Status) Label() string {
	switch s {
	case StatusSlightlyBehind:
		return "🟡 Lite efter"
	case StatusNeedsHelp:
		return "🔴 Behöver hjälp"
	default:
		return "🟢 På spår"
	}
}

// ParseStatus maps a slug, a display label, or any string carrying one of
// the status emoji back to a Status. Unknown input defaults to on-track.
func ParseStatus(s string) Status {
	switch Status(strings.TrimSpace(strings.ToLower(s))) {
	case StatusOnTrack, StatusSlightlyBehind, StatusNeedsHelp:
		return Status(strings.TrimSpace(strings.ToLower(s)))
	}
	switch {
	case strings.Contains(s, "🟡"):
		return StatusSlightlyBehind
	case strings.Contains(s, "🔴"):
		return StatusNeedsHelp
	default:
		return StatusOnTrack
	}
}

// Minutes is one standup or workshop record.
type Minutes struct {
	Team         string
	Date         string
	Participants string
	Worked       []string
	Obstacles    []string
	Status       Status
	NextSteps    []string
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDate reports whether d is a well-formed, calendar-valid YYYY-MM-DD date.
func ValidDate(d string) bool {
	if !dateRe.MatchString(strings.TrimSpace(d)) {
		return false
	}
	_, err := time.Parse(DateFormat, strings.TrimSpace(d))
	return err == nil
}

// Validate checks the record before document generation.
func (m *Minutes) Validate() error {
	if !ValidDate(m.Date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, m.Date)
	}
	return nil
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^A-Za-z0-9_\-ÅÄÖåäö]`)
)

// SafeFilename converts a team name into a filename-safe token: whitespace
// collapses to underscores, anything outside [A-Za-z0-9_-ÅÄÖåäö] is
// dropped, and an empty result becomes "Team".
func SafeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = whitespaceRe.ReplaceAllString(s, "_")
	s = disallowedRe.ReplaceAllString(s, "")
	if s == "" {
		return "Team"
	}
	return s
}

// Filename returns the document filename for this record.
func (m *Minutes) Filename() string {
	return fmt.Sprintf("protokoll_%s_%s.docx", SafeFilename(m.Team), m.Date)
}

// PlannedPath computes the output path for a team and date under outputDir.
func PlannedPath(outputDir, team, date string) string {
	filename := fmt.Sprintf("protokoll_%s_%s.docx", SafeFilename(team), date)
	return filepath.Join(outputDir, filename)
}

// SplitLines splits free text into non-empty trimmed lines, one section
// item per line.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
