package triage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const untitledFallback = "(Untitled)"

// Reply texts shown while no real suggested reply exists. The failed text
// doubles as the retry prompt.
const (
	replyPending  = "Pending…"
	replyRetrying = "Retrying…"
	replyFailed   = "Processing failed. Please retry."
)

// ErrEmptyDraft is returned when both title and body are empty after
// trimming. The caller is expected to refocus input; nothing is stored.
var ErrEmptyDraft = errors.New("draft has no title and no body")

// ErrUnknownItem is returned for operations on an id not in the collection.
var ErrUnknownItem = errors.New("unknown item")

// ErrNotRetryable is returned when retry is requested for an item that is
// not in the failed phase. Retry is only ever offered from Failed.
var ErrNotRetryable = errors.New("item is not in a retryable state")

// Store persists the mailbox collection. Save is fire-and-forget by policy:
// implementations swallow write failures so durability loss never blocks
// the in-memory flow.
type Store interface {
	Load() []Item
	Save(items []Item)
}

// Result is the terminal answer for a submitted item.
type Result struct {
	Classification string
	SuggestedReply string
}

// Classifier is the remote classification service as the controller sees
// it: create a job, then block until the job reports done or the poll
// budget is exhausted.
type Classifier interface {
	Submit(ctx context.Context, title, body string) (jobID string, err error)
	Await(ctx context.Context, jobID string) (Result, error)
}

// View is the rendering collaborator. It is read-only with respect to item
// data and is notified after every persisted state transition.
type View interface {
	CollectionChanged(items []Item)
	SelectionChanged(item *Item) // nil means render the empty selection
}

// Controller owns the item collection and selection and is their sole
// mutator. It drives each item through submission, polling, and terminal
// resolution, persisting before every view notification so a reload never
// observes state older than what was last shown.
type Controller struct {
	store Store
	svc   Classifier
	view  View

	mu         sync.Mutex
	items      []*Item // front is newest
	selectedID string
	inflight   map[string]struct{}

	wg     sync.WaitGroup
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewController loads the persisted collection and returns a controller
// over it. Items left in a pending phase by a previous process have no
// surviving attempt, so they are reconciled to Failed with the retry
// prompt (and persisted if anything changed).
func NewController(store Store, svc Classifier, view View) *Controller {
	c := &Controller{
		store:    store,
		svc:      svc,
		view:     view,
		inflight: make(map[string]struct{}),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}

	loaded := store.Load()
	changed := false
	for i := range loaded {
		it := loaded[i]
		if !it.Phase.Terminal() {
			it.Phase = PhaseFailed
			it.SuggestedReply = replyFailed
			changed = true
		}
		c.items = append(c.items, &it)
	}
	if changed {
		c.store.Save(c.snapshotLocked())
	}
	return c
}

// CreateDraft builds a new item in the submitting phase, inserts it at the
// front of the collection, selects it, persists, notifies, and launches the
// submission asynchronously. A draft with empty title and empty body is
// rejected with ErrEmptyDraft and changes nothing.
func (c *Controller) CreateDraft(ctx context.Context, title, body string) (string, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" && body == "" {
		return "", ErrEmptyDraft
	}
	if title == "" {
		title = untitledFallback
	}

	c.mu.Lock()
	it := &Item{
		ID:             c.newID(),
		Title:          title,
		Body:           body,
		Preview:        Preview(body),
		ReceivedAt:     c.now(),
		Phase:          PhaseSubmitting,
		SuggestedReply: replyPending,
	}
	c.items = append([]*Item{it}, c.items...)
	c.selectedID = it.ID
	c.persistAndNotifyLocked(it.ID)
	c.beginAttemptLocked(ctx, it.ID, it.Title, it.Body)
	c.mu.Unlock()

	return it.ID, nil
}

// Retry replays the submission path for a failed item, reusing its
// identity. It is legal only from the failed phase. While an attempt for
// the item is still outstanding a second call is a no-op, so the trigger
// can be invoked repeatedly without racing two terminal writes.
func (c *Controller) Retry(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	it := c.findLocked(id)
	if it == nil {
		return ErrUnknownItem
	}
	if _, busy := c.inflight[id]; busy {
		return nil
	}
	if it.Phase != PhaseFailed {
		return ErrNotRetryable
	}

	it.Phase = PhaseSubmitting
	it.RemoteJobID = ""
	it.Outcome = ""
	it.SuggestedReply = replyRetrying
	c.persistAndNotifyLocked(id)
	c.beginAttemptLocked(ctx, id, it.Title, it.Body)
	return nil
}

// RetryEnabled reports whether the retry affordance should be offered for
// the item: failed, with no attempt outstanding.
func (c *Controller) RetryEnabled(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := c.findLocked(id)
	if it == nil {
		return false
	}
	_, busy := c.inflight[id]
	return it.Phase == PhaseFailed && !busy
}

// Select marks the item as the one shown in the detail view and notifies
// the view. Selecting an unknown id is an error and changes nothing.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := c.findLocked(id)
	if it == nil {
		return ErrUnknownItem
	}
	c.selectedID = id
	detail := *it
	c.view.SelectionChanged(&detail)
	c.view.CollectionChanged(c.snapshotLocked())
	return nil
}

// ClearAll empties the whole collection and the selection. There is no
// per-item delete.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.selectedID = ""
	c.store.Save(nil)
	c.view.CollectionChanged(nil)
	c.view.SelectionChanged(nil)
}

// Items returns a snapshot of the collection, newest first.
func (c *Controller) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Selected returns a copy of the currently selected item, if any.
func (c *Controller) Selected() (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := c.findLocked(c.selectedID)
	if it == nil {
		return Item{}, false
	}
	return *it, true
}

// Wait blocks until every launched attempt has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// beginAttemptLocked marks the item's attempt as outstanding and launches
// the submission flow. Caller holds c.mu.
func (c *Controller) beginAttemptLocked(ctx context.Context, id, title, body string) {
	c.inflight[id] = struct{}{}
	c.wg.Add(1)
	go c.runAttempt(ctx, id, title, body)
}

// runAttempt drives one submission to a terminal phase. Submission errors,
// poll errors, and poll timeouts are all absorbed here into the failed
// phase; nothing propagates to the view layer.
func (c *Controller) runAttempt(ctx context.Context, id, title, body string) {
	defer c.wg.Done()
	defer c.settle(id)

	jobID, err := c.svc.Submit(ctx, title, body)
	if err != nil {
		c.logger.Warn("submission failed", "item_id", id, "error", err)
		c.fail(id)
		return
	}

	c.apply(id, func(it *Item) {
		it.Phase = PhaseAwaiting
		it.RemoteJobID = jobID
	})

	res, err := c.svc.Await(ctx, jobID)
	if err != nil {
		c.logger.Warn("polling failed", "item_id", id, "job_id", jobID, "error", err)
		c.fail(id)
		return
	}

	c.apply(id, func(it *Item) {
		it.Phase = PhaseResolved
		it.Outcome = NormalizeOutcome(res.Classification)
		it.SuggestedReply = res.SuggestedReply
	})
}

func (c *Controller) fail(id string) {
	c.apply(id, func(it *Item) {
		it.Phase = PhaseFailed
		it.Outcome = ""
		it.SuggestedReply = replyFailed
	})
}

// apply mutates one item under the lock, then persists and notifies. If
// the item vanished (clear all raced the attempt), the result is dropped.
func (c *Controller) apply(id string, mutate func(*Item)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := c.findLocked(id)
	if it == nil {
		return
	}
	mutate(it)
	c.persistAndNotifyLocked(id)
}

// settle re-enables the retry affordance for the item, unconditionally,
// whether the attempt succeeded or failed.
func (c *Controller) settle(id string) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

// persistAndNotifyLocked saves the whole collection, then refreshes the
// list, then redraws the detail if the affected item is selected. Persist
// happens strictly before the notifications. Caller holds c.mu.
func (c *Controller) persistAndNotifyLocked(affectedID string) {
	c.store.Save(c.snapshotLocked())
	c.view.CollectionChanged(c.snapshotLocked())
	if affectedID == c.selectedID {
		if it := c.findLocked(affectedID); it != nil {
			detail := *it
			c.view.SelectionChanged(&detail)
		}
	}
}

func (c *Controller) findLocked(id string) *Item {
	if id == "" {
		return nil
	}
	for _, it := range c.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (c *Controller) snapshotLocked() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = *it
	}
	return out
}
