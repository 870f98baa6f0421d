package main

import (
	"fmt"
	"io"

	"mailtriage/internal/triage"
)

// consoleView is the rendering collaborator for one-shot commands. It
// prints each state transition of the item being worked on; full list and
// detail rendering is pulled on demand by the commands.
type consoleView struct {
	w           io.Writer
	transitions bool
}

func newConsoleView(w io.Writer, transitions bool) *consoleView {
	return &consoleView{w: w, transitions: transitions}
}

func (v *consoleView) CollectionChanged(items []triage.Item) {}

func (v *consoleView) SelectionChanged(it *triage.Item) {
	if !v.transitions || it == nil {
		return
	}
	fmt.Fprintf(v.w, "  %s\n", colorize(colorBold, it.DisplayState()))
}

func badge(state string) string {
	switch state {
	case "Productive":
		return colorize(colorGreen, state)
	case "Unproductive":
		return colorize(colorYellow, state)
	case "Error":
		return colorize(colorRed, state)
	default:
		return colorize(colorCyan, state)
	}
}

func renderList(w io.Writer, items []triage.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No emails yet. Use `mailtriage compose` to add one.")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "%s  %s  %-12s  %s\n",
			colorize(colorCyan, shortID(it.ID)),
			it.DisplayReceivedAt(),
			badge(it.DisplayState()),
			it.Title,
		)
		if it.Preview != "" {
			fmt.Fprintf(w, "          %s\n", it.Preview)
		}
	}
	fmt.Fprintf(w, "\n%d items\n", len(items))
}

func renderDetail(w io.Writer, it triage.Item, retryEnabled bool) {
	fmt.Fprintf(w, "%s\n", colorize(colorBold, it.Title))
	fmt.Fprintf(w, "%s • %s • %s\n", shortID(it.ID), it.DisplayReceivedAt(), badge(it.DisplayState()))
	if it.Body != "" {
		fmt.Fprintf(w, "\n%s\n", it.Body)
	}
	fmt.Fprintf(w, "\n%s\n%s\n", colorize(colorBold, "Suggested reply"), it.SuggestedReply)
	if retryEnabled {
		fmt.Fprintf(w, "\n%s\n", colorize(colorYellow, "Processing failed. Run `mailtriage retry "+shortID(it.ID)+"` to try again."))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
