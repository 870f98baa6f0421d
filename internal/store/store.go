// Package store persists the mailbox collection as a single JSON blob.
// Writes are fire-and-forget: a failed save is logged and swallowed so
// durability loss never interrupts the in-memory flow. A blob that cannot
// be parsed is discarded wholesale; there is no migration or repair.
package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mailtriage/internal/triage"
)

// Mailbox reads and writes the item collection at a fixed path.
type Mailbox struct {
	path   string
	logger *slog.Logger
}

// New creates a Mailbox persisting to the given file path.
func New(path string) *Mailbox {
	return &Mailbox{path: path, logger: slog.Default()}
}

// persistedItem is the stored shape of one item. Phases and outcomes are
// stored as strings so the blob stays readable and stable across versions.
type persistedItem struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Preview        string    `json:"preview"`
	ReceivedAt     time.Time `json:"received_at"`
	Phase          string    `json:"phase"`
	RemoteJobID    string    `json:"remote_job_id,omitempty"`
	Classification string    `json:"classification,omitempty"`
	SuggestedReply string    `json:"suggested_reply"`
}

// Load reads the persisted collection. Missing, corrupt, or structurally
// invalid data (not an array, or any element without an id) yields an
// empty collection. Corruption must never crash startup.
func (m *Mailbox) Load() []triage.Item {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Debug("mailbox unreadable, starting empty", "path", m.path, "error", err)
		}
		return nil
	}

	var records []persistedItem
	if err := json.Unmarshal(data, &records); err != nil {
		m.logger.Debug("mailbox unparseable, starting empty", "path", m.path, "error", err)
		return nil
	}

	items := make([]triage.Item, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			m.logger.Debug("mailbox record without id, starting empty", "path", m.path)
			return nil
		}
		phase, ok := parsePhase(r.Phase)
		if !ok {
			m.logger.Debug("mailbox record with unknown phase, starting empty", "path", m.path, "phase", r.Phase)
			return nil
		}
		it := triage.Item{
			ID:             r.ID,
			Title:          r.Title,
			Body:           r.Body,
			Preview:        r.Preview,
			ReceivedAt:     r.ReceivedAt,
			Phase:          phase,
			RemoteJobID:    r.RemoteJobID,
			SuggestedReply: r.SuggestedReply,
		}
		if phase == triage.PhaseResolved {
			it.Outcome = triage.NormalizeOutcome(r.Classification)
		}
		items = append(items, it)
	}
	return items
}

// Save serializes the full collection and writes it through a temp file
// and rename, so a reader never observes a partial write. Failures are
// swallowed by policy.
func (m *Mailbox) Save(items []triage.Item) {
	records := make([]persistedItem, len(items))
	for i, it := range items {
		records[i] = persistedItem{
			ID:             it.ID,
			Title:          it.Title,
			Body:           it.Body,
			Preview:        it.Preview,
			ReceivedAt:     it.ReceivedAt,
			Phase:          it.Phase.String(),
			RemoteJobID:    it.RemoteJobID,
			Classification: string(it.Outcome),
			SuggestedReply: it.SuggestedReply,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		m.logger.Debug("mailbox marshal failed", "error", err)
		return
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		m.logger.Debug("mailbox dir unavailable", "path", dir, "error", err)
		return
	}

	tmp, err := os.CreateTemp(dir, "mailbox-*.json")
	if err != nil {
		m.logger.Debug("mailbox temp file failed", "error", err)
		return
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		m.logger.Debug("mailbox write failed", "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		m.logger.Debug("mailbox close failed", "error", err)
		return
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		m.logger.Debug("mailbox rename failed", "error", err)
	}
}

func parsePhase(s string) (triage.Phase, bool) {
	switch s {
	case triage.PhaseSubmitting.String():
		return triage.PhaseSubmitting, true
	case triage.PhaseAwaiting.String():
		return triage.PhaseAwaiting, true
	case triage.PhaseResolved.String():
		return triage.PhaseResolved, true
	case triage.PhaseFailed.String():
		return triage.PhaseFailed, true
	default:
		return 0, false
	}
}
