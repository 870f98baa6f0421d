package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mailtriage/internal/config"
	"mailtriage/internal/importer"
	"mailtriage/internal/remote"
	"mailtriage/internal/store"
	"mailtriage/internal/triage"
)

// newController wires the client engine: mailbox blob, remote service,
// console view.
func newController(cfg config.Config, view triage.View) *triage.Controller {
	svc := remote.NewService(cfg.Remote.BaseURL, pollConfig(cfg))
	mbox := store.New(cfg.Mailbox())
	return triage.NewController(mbox, svc, view)
}

func pollConfig(cfg config.Config) remote.PollConfig {
	var pc remote.PollConfig
	if d, err := time.ParseDuration(cfg.Remote.PollInterval); err == nil {
		pc.Interval = d
	} else {
		slog.Warn("invalid poll interval, using default", "value", cfg.Remote.PollInterval, "error", err)
	}
	if d, err := time.ParseDuration(cfg.Remote.PollTimeout); err == nil {
		pc.Timeout = d
	} else {
		slog.Warn("invalid poll timeout, using default", "value", cfg.Remote.PollTimeout, "error", err)
	}
	return pc
}

// resolveID matches a user-supplied id (possibly shortened) against the
// collection.
func resolveID(items []triage.Item, arg string) (string, error) {
	for _, it := range items {
		if it.ID == arg || strings.HasPrefix(it.ID, arg) {
			return it.ID, nil
		}
	}
	return "", fmt.Errorf("no email matches %q", arg)
}

// submitAndReport waits for the launched attempt to settle and prints the
// terminal state.
func submitAndReport(c *triage.Controller) error {
	c.Wait()

	it, ok := c.Selected()
	if !ok {
		return fmt.Errorf("item vanished before completion")
	}
	fmt.Fprintln(os.Stdout)
	renderDetail(os.Stdout, it, c.RetryEnabled(it.ID))
	if it.Phase == triage.PhaseFailed {
		return fmt.Errorf("classification failed")
	}
	return nil
}

// --- compose ---

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Draft an email and submit it for classification",
	Long: `Draft an email and submit it for classification.

Examples:
  mailtriage compose --title "Invoice #42" --body "Payment is due on Friday."
  mailtriage compose --body "limited offer, click here"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		c := newController(cfg, newConsoleView(os.Stderr, true))
		id, err := c.CreateDraft(cmd.Context(), title, body)
		if errors.Is(err, triage.ErrEmptyDraft) {
			printWarning("Nothing to submit. Give the draft a title or a body.")
			return err
		}
		if err != nil {
			return err
		}

		printStep("Submitted %s", shortID(id))
		return submitAndReport(c)
	},
}

func init() {
	composeCmd.Flags().String("title", "", "email subject line")
	composeCmd.Flags().String("body", "", "email body")
}

// --- import ---

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an email from a .txt, .md, .pdf, or .html file and submit it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleOverride, _ := cmd.Flags().GetString("title")

		draft, err := importer.Read(args[0])
		if err != nil {
			return err
		}
		if titleOverride != "" {
			draft.Title = titleOverride
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		c := newController(cfg, newConsoleView(os.Stderr, true))
		id, err := c.CreateDraft(cmd.Context(), draft.Title, draft.Body)
		if errors.Is(err, triage.ErrEmptyDraft) {
			printWarning("File %s has no usable text.", args[0])
			return err
		}
		if err != nil {
			return err
		}

		printStep("Imported %s as %s", args[0], shortID(id))
		return submitAndReport(c)
	},
}

func init() {
	importCmd.Flags().String("title", "", "override the title derived from the file name")
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all emails, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		c := newController(cfg, newConsoleView(os.Stderr, false))
		renderList(os.Stdout, c.Items())
		return nil
	},
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one email with its classification and suggested reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		c := newController(cfg, newConsoleView(os.Stderr, false))
		id, err := resolveID(c.Items(), args[0])
		if err != nil {
			return err
		}
		if err := c.Select(id); err != nil {
			return err
		}

		it, _ := c.Selected()
		renderDetail(os.Stdout, it, c.RetryEnabled(id))
		return nil
	},
}

// --- retry ---

var retryCmd = &cobra.Command{
	Use:   "retry [id]",
	Short: "Re-submit a failed email, keeping its identity",
	Long: `Re-submit a failed email, keeping its identity.

Without an id, the newest failed email is retried.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		c := newController(cfg, newConsoleView(os.Stderr, true))

		var id string
		if len(args) == 1 {
			id, err = resolveID(c.Items(), args[0])
			if err != nil {
				return err
			}
		} else {
			for _, it := range c.Items() {
				if it.Phase == triage.PhaseFailed {
					id = it.ID
					break
				}
			}
			if id == "" {
				printWarning("Nothing to retry: no failed emails.")
				return nil
			}
		}

		if err := c.Select(id); err != nil {
			return err
		}
		if err := c.Retry(cmd.Context(), id); err != nil {
			if errors.Is(err, triage.ErrNotRetryable) {
				printWarning("Email %s is not in an error state.", shortID(id))
			}
			return err
		}

		printStep("Retrying %s", shortID(id))
		return submitAndReport(c)
	},
}

// --- clear ---

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all emails from the local mailbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This will delete ALL local emails. Use --confirm to proceed.")
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		c := newController(cfg, newConsoleView(os.Stderr, false))
		n := len(c.Items())
		c.ClearAll()
		printSuccess("Cleared %d emails", n)
		return nil
	},
}

func init() {
	clearCmd.Flags().Bool("confirm", false, "confirm deletion")
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service health and local mailbox counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		client := &http.Client{Timeout: 2 * time.Second}
		resp, err := client.Get(strings.TrimRight(cfg.Remote.BaseURL, "/") + "/health")
		if err != nil {
			printStatus("Service", "unreachable at %s", cfg.Remote.BaseURL)
		} else {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				printStatus("Service", "running at %s", cfg.Remote.BaseURL)
			} else {
				printStatus("Service", "error (HTTP %d)", resp.StatusCode)
			}
		}

		mbox := store.New(cfg.Mailbox())
		items := mbox.Load()
		counts := make(map[string]int)
		for _, it := range items {
			counts[it.DisplayState()]++
		}
		printStatus("Mailbox", "%s (%d items)", cfg.Mailbox(), len(items))
		for _, state := range []string{"Pending", "Productive", "Unproductive", "Unknown", "Error"} {
			if counts[state] > 0 {
				printStatus(state, "%d", counts[state])
			}
		}
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
