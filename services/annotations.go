package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Annotation lines are prepended to a record's notes field. The status change
// format is also read back by the timeline for cases without recorded events.

func statusChangeAnnotation(status string, at time.Time, text string) string {
	return fmt.Sprintf("[Status Change: %s] %s: %s", status, FormatISO(at), text)
}

func settlementAnnotation(at time.Time, amount *float64, terms *string) string {
	parts := []string{}
	if amount != nil {
		parts = append(parts, fmt.Sprintf("Amount: %.2f", *amount))
	}
	if terms != nil && *terms != "" {
		parts = append(parts, "Terms: "+*terms)
	}
	if len(parts) == 0 {
		parts = append(parts, "Case settled")
	}
	return fmt.Sprintf("[Case Settled] %s: %s", FormatISO(at), strings.Join(parts, "; "))
}

func assignmentAnnotation(at time.Time, mediatorID, actorID string) string {
	return fmt.Sprintf("[Mediator Assigned] %s: Mediator %s assigned by %s", FormatISO(at), mediatorID, actorID)
}

func sessionOutcomeAnnotation(at time.Time, text string) string {
	return fmt.Sprintf("[Session Outcome] %s: %s", FormatISO(at), text)
}

var statusChangePattern = regexp.MustCompile(`^\[Status Change: ([A-Z_]+)\] (\S+): ?(.*)$`)

type statusAnnotation struct {
	Status string
	At     time.Time
	Text   string
}

// parseStatusAnnotations extracts status change lines from a notes log, skipping
// lines whose timestamp does not parse
func parseStatusAnnotations(notes string) []statusAnnotation {
	var out []statusAnnotation
	for _, line := range strings.Split(notes, "\n") {
		m := statusChangePattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		at, err := time.Parse(time.RFC3339Nano, strings.TrimSuffix(m[2], ":"))
		if err != nil {
			continue
		}
		out = append(out, statusAnnotation{Status: m[1], At: at.UTC(), Text: m[3]})
	}
	return out
}
