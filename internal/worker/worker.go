// Package worker drains the pending email queue: each claimed email is
// classified (model server first, keyword heuristic as fallback), a reply
// is drafted, and the terminal result is written back for pollers to find.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mailtriage/internal/classifier"
	"mailtriage/internal/llm"
	"mailtriage/internal/storage"
)

// errorReply is the terminal reply recorded when processing itself blows
// up. The row still completes as done so polling clients converge.
const errorReply = "Processing failed. Please retry."

// EmailStore abstracts the queue operations.
type EmailStore interface {
	ClaimPending(limit int) ([]storage.Email, error)
	CompleteEmail(id, classification, suggestedReply string) error
	RequeueEmail(id string) error
}

// ChatEngine abstracts the model server.
type ChatEngine interface {
	Chat(ctx context.Context, model string, messages []llm.Message) (string, error)
}

// Processor turns pending emails into done rows.
type Processor struct {
	store       EmailStore
	engine      ChatEngine // optional; nil means heuristics only
	model       string
	poll        time.Duration
	concurrency int
	logger      *slog.Logger
}

// NewProcessor creates a Processor with the given dependencies. If
// pollInterval is <= 0 it defaults to 500ms; concurrency below 1 defaults
// to 2.
func NewProcessor(store EmailStore, engine ChatEngine, model string, pollInterval time.Duration, concurrency int) *Processor {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if concurrency < 1 {
		concurrency = 2
	}
	return &Processor{
		store:       store,
		engine:      engine,
		model:       model,
		poll:        pollInterval,
		concurrency: concurrency,
		logger:      slog.Default(),
	}
}

// Run polls for pending emails until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		n, err := p.RunOnce(ctx)
		if err != nil {
			p.logger.Error("worker iteration failed", "error", err)
		}
		if n > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.poll):
		}
	}
}

// RunOnce claims up to the concurrency limit of pending emails and
// processes them in parallel. Returns how many were claimed.
func (p *Processor) RunOnce(ctx context.Context) (int, error) {
	claimed, err := p.store.ClaimPending(p.concurrency)
	if err != nil {
		return 0, fmt.Errorf("claiming pending emails: %w", err)
	}
	if len(claimed) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, e := range claimed {
		g.Go(func() error {
			p.process(gctx, e)
			return nil
		})
	}
	g.Wait()
	return len(claimed), nil
}

// process resolves one claimed email to a terminal row. A cancelled
// context requeues the claim instead; any other failure completes the row
// as an error so the submitting client still converges.
func (p *Processor) process(ctx context.Context, e storage.Email) {
	if ctx.Err() != nil {
		if err := p.store.RequeueEmail(e.ID); err != nil {
			p.logger.Error("failed to requeue email", "email_id", e.ID, "error", err)
		}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("processing panicked", "email_id", e.ID, "panic", r)
			if err := p.store.CompleteEmail(e.ID, "Error", errorReply); err != nil {
				p.logger.Error("failed to record processing error", "email_id", e.ID, "error", err)
			}
		}
	}()

	classification, reply := p.resolve(ctx, e)
	if err := p.store.CompleteEmail(e.ID, classification, reply); err != nil {
		p.logger.Error("failed to complete email", "email_id", e.ID, "error", err)
	}
}

// resolve never fails: the model server is asked first and the keyword
// heuristic answers whenever it cannot.
func (p *Processor) resolve(ctx context.Context, e storage.Email) (string, string) {
	classification, err := p.classifyWithEngine(ctx, e)
	if err != nil {
		if p.engine != nil {
			p.logger.Warn("model classification failed, using heuristic", "email_id", e.ID, "error", err)
		}
		classification = classifier.Classify(classifier.Preprocess(e.Title, e.Content))
	}

	reply, err := p.draftReply(ctx, e, classification)
	if err != nil {
		if p.engine != nil {
			p.logger.Warn("model reply failed, using canned reply", "email_id", e.ID, "error", err)
		}
		reply = classifier.SuggestReply(classification)
	}
	return classification, reply
}

func (p *Processor) classifyWithEngine(ctx context.Context, e storage.Email) (string, error) {
	if p.engine == nil {
		return "", fmt.Errorf("no model engine configured")
	}

	prompt := "Classify the email strictly as either 'Productive' or 'Unproductive'.\n" +
		"Return ONLY the single word: Productive or Unproductive.\n\n" +
		"Email:\n" + e.Title + "\n\n" + e.Content

	callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	answer, err := p.engine.Chat(callCtx, p.model, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}

	text := strings.ToLower(strings.TrimSpace(answer))
	switch {
	case strings.Contains(text, "unproductive"):
		return classifier.Unproductive, nil
	case strings.Contains(text, "productive"):
		return classifier.Productive, nil
	default:
		return classifier.Unproductive, nil
	}
}

func (p *Processor) draftReply(ctx context.Context, e storage.Email, classification string) (string, error) {
	if p.engine == nil {
		return "", fmt.Errorf("no model engine configured")
	}

	prompt := fmt.Sprintf("Context classification: %s.\nEmail content:\n%s\n\nDraft a helpful reply.",
		classification, e.Content)

	callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	answer, err := p.engine.Chat(callCtx, p.model, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}
	return answer, nil
}
