package triage

import (
	"strings"
	"time"
)

// previewLimit is the maximum preview length in runes before truncation.
const previewLimit = 80

// Phase is the lifecycle phase of an item. Submitting and Awaiting are the
// two pending sub-phases: the first while the remote create call is
// outstanding, the second while the created job is being polled.
type Phase int

const (
	PhaseSubmitting Phase = iota
	PhaseAwaiting
	PhaseResolved
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaiting:
		return "awaiting"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further automatic transition occurs.
func (p Phase) Terminal() bool {
	return p == PhaseResolved || p == PhaseFailed
}

// Outcome is a classification returned by the remote service.
type Outcome string

const (
	OutcomeProductive   Outcome = "Productive"
	OutcomeUnproductive Outcome = "Unproductive"
	OutcomeUnknown      Outcome = "Unknown"
)

// NormalizeOutcome maps a wire classification onto the closed outcome set.
// Anything missing or unexpected becomes Unknown.
func NormalizeOutcome(s string) Outcome {
	switch Outcome(s) {
	case OutcomeProductive, OutcomeUnproductive, OutcomeUnknown:
		return Outcome(s)
	default:
		return OutcomeUnknown
	}
}

// Item is one user-authored message tracked through submission and
// classification.
type Item struct {
	ID             string
	Title          string
	Body           string
	Preview        string
	ReceivedAt     time.Time
	Phase          Phase
	RemoteJobID    string  // set once submission succeeds; opaque, foreign-owned
	Outcome        Outcome // valid only when Phase is PhaseResolved
	SuggestedReply string
}

// DisplayState collapses the internal phase machine to the badge shown in
// the list: "Pending", the classification outcome, or "Error".
func (it Item) DisplayState() string {
	switch it.Phase {
	case PhaseResolved:
		return string(it.Outcome)
	case PhaseFailed:
		return "Error"
	default:
		return "Pending"
	}
}

// DisplayReceivedAt formats the creation time at minute granularity.
func (it Item) DisplayReceivedAt() string {
	return it.ReceivedAt.Format("2006-01-02 15:04")
}

// Preview derives the list preview for a body: whitespace collapsed to
// single spaces, trimmed, and capped at 80 runes with a "..." marker when
// truncated.
func Preview(body string) string {
	text := strings.Join(strings.Fields(body), " ")
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "..."
}
