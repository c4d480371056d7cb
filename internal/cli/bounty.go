package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/debayudh07/connectx/pkg/client"
)

func createBountyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bounty",
		Short: "Create and manage bounties",
	}

	cmd.AddCommand(createBountyCreateCmd())
	cmd.AddCommand(createBountyListCmd())
	cmd.AddCommand(createBountyInfoCmd())
	cmd.AddCommand(createBountyClaimCmd())
	cmd.AddCommand(createBountySubmitCmd())
	cmd.AddCommand(createBountyVerifyCmd())
	cmd.AddCommand(createBountyDisputeCmd())
	cmd.AddCommand(createBountyResolveCmd())
	cmd.AddCommand(createBountyCancelCmd())

	return cmd
}

func createBountyCreateCmd() *cobra.Command {
	var amount string
	var deadline string
	var title string
	var description string
	var issueURL string
	var repoURL string
	var skills []string
	var difficulty string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a bounty and lock its reward in escrow",
		Long: `Create a bounty. The reward amount is locked in escrow from your
balance until the bounty is paid out, refunded, or cancelled.

Amounts are decimal with up to 6 fractional digits (e.g. 1.5).

EXAMPLES:
  # Post a bounty due in 30 days
  connectx bounty create --amount 1.5 --title "Fix flaky websocket reconnect" \
    --issue https://github.com/acme/widget/issues/42 --difficulty medium

  # Explicit deadline
  connectx bounty create --amount 0.25 --title "Typo sweep" --deadline 2026-12-31
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			micros, err := parseAmount(amount)
			if err != nil {
				return err
			}
			due, err := parseDeadline(deadline)
			if err != nil {
				return err
			}

			// Project config fills unset defaults
			if cfg := loadProjectConfigSilent(); cfg != nil {
				if repoURL == "" {
					repoURL = cfg.RepoURL
				}
				if len(skills) == 0 {
					skills = cfg.Skills
				}
				if !cmd.Flags().Changed("difficulty") && cfg.Difficulty != "" {
					difficulty = cfg.Difficulty
				}
			}

			c := client.New(getServer(), getAPIKey())
			b, err := c.CreateBounty(context.Background(), client.CreateBountyRequest{
				RewardAmount:   micros,
				Deadline:       due,
				Title:          title,
				Description:    description,
				IssueURL:       issueURL,
				RepoURL:        repoURL,
				RequiredSkills: skills,
				Difficulty:     difficulty,
			})
			if err != nil {
				return fmt.Errorf("failed to create bounty: %w", err)
			}

			fmt.Printf("✅ Bounty #%d created: %s\n", b.ID, b.Title)
			fmt.Printf("   Reward:   %s (locked in escrow)\n", formatAmount(b.RewardAmount))
			fmt.Printf("   Deadline: %s\n", formatUnix(b.Deadline))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "reward amount (required)")
	cmd.Flags().StringVar(&deadline, "deadline", "30d", "deadline: YYYY-MM-DD, RFC3339, or a duration like 30d")
	cmd.Flags().StringVar(&title, "title", "", "bounty title (required)")
	cmd.Flags().StringVar(&description, "description", "", "longer description")
	cmd.Flags().StringVar(&issueURL, "issue", "", "issue URL the bounty tracks")
	cmd.Flags().StringVar(&repoURL, "repo", "", "repository URL (default from config)")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "required skills (default from config)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "medium", "difficulty: easy, medium, hard")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func createBountyListCmd() *cobra.Command {
	var status string
	var maintainer string
	var developer string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bounties",
		Long: `List bounties, optionally filtered by status or participant.

EXAMPLES:
  # Open bounties
  connectx bounty list --status open

  # Everything a maintainer has posted
  connectx bounty list --maintainer 0xabc...

  # Output as JSON
  connectx bounty list --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			resp, err := c.ListBounties(context.Background(), client.ListBountiesOptions{
				Status:     status,
				Maintainer: maintainer,
				Developer:  developer,
				Limit:      limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list bounties: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			if len(resp.Data) == 0 {
				fmt.Println("No bounties found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tREWARD\tDIFFICULTY\tDEADLINE\tTITLE")
			for _, b := range resp.Data {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					b.ID, b.Status, formatAmount(b.RewardAmount), b.Difficulty, formatUnix(b.Deadline), b.Title)
			}
			w.Flush()

			if resp.Pagination.HasMore {
				fmt.Printf("\n(more available, rerun with --limit or cursor %d)\n", resp.Pagination.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (open, claimed, submitted, disputed, paid, cancelled)")
	cmd.Flags().StringVar(&maintainer, "maintainer", "", "filter by maintainer address")
	cmd.Flags().StringVar(&developer, "developer", "", "filter by claiming developer address")
	cmd.Flags().IntVar(&limit, "limit", 50, "number of items to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func createBountyInfoCmd() *cobra.Command {
	var jsonOutput bool
	var showEvents bool

	cmd := &cobra.Command{
		Use:   "info <id>",
		Short: "Show bounty details, submissions, and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBountyID(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			c := client.New(getServer(), getAPIKey())

			b, err := c.GetBounty(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get bounty: %w", err)
			}
			subs, err := c.ListSubmissions(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get submissions: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"bounty":      b,
					"submissions": subs,
				})
			}

			fmt.Printf("Bounty #%d: %s\n\n", b.ID, b.Title)
			fmt.Printf("  Status:     %s\n", b.Status)
			fmt.Printf("  Reward:     %s\n", formatAmount(b.RewardAmount))
			fmt.Printf("  Difficulty: %s\n", b.Difficulty)
			fmt.Printf("  Maintainer: %s\n", b.Maintainer)
			if b.ClaimedBy != "" {
				fmt.Printf("  Claimed by: %s\n", b.ClaimedBy)
			}
			fmt.Printf("  Deadline:   %s\n", formatUnix(b.Deadline))
			if b.IssueURL != "" {
				fmt.Printf("  Issue:      %s\n", b.IssueURL)
			}
			if b.RepoURL != "" {
				fmt.Printf("  Repo:       %s\n", b.RepoURL)
			}
			if len(b.RequiredSkills) > 0 {
				fmt.Printf("  Skills:     %s\n", strings.Join(b.RequiredSkills, ", "))
			}
			if b.Description != "" {
				fmt.Printf("\n%s\n", b.Description)
			}

			if len(subs) > 0 {
				fmt.Printf("\nSubmissions:\n")
				for _, s := range subs {
					verified := ""
					if s.IsVerified {
						verified = " (verified)"
					}
					fmt.Printf("  #%d %s %s%s\n", s.Seq, formatUnix(s.SubmittedAt), s.PRURL, verified)
				}
			}

			if showEvents {
				evts, err := c.ListEvents(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to get events: %w", err)
				}
				fmt.Printf("\nHistory:\n")
				for _, e := range evts {
					fmt.Printf("  %s  %-22s %s\n", formatUnix(e.CreatedAt), e.Type, e.Actor)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&showEvents, "events", false, "include the event history")

	return cmd
}

func createBountyClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <id>",
		Short: "Claim an open bounty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBountyID(args[0])
			if err != nil {
				return err
			}

			c := client.New(getServer(), getAPIKey())
			b, err := c.ClaimBounty(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to claim bounty: %w", err)
			}

			fmt.Printf("✅ Bounty #%d claimed\n", b.ID)
			fmt.Printf("   Deadline: %s\n", formatUnix(b.Deadline))
			return nil
		},
	}
}

func createBountySubmitCmd() *cobra.Command {
	var prURL string
	var description string

	cmd := &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit a pull request against a claimed bounty",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one bounty ID")
			}
			id, err := parseBountyID(args[0])
			if err != nil {
				return err
			}

			c := client.New(getServer(), getAPIKey())
			b, err := c.SubmitWork(context.Background(), id, client.SubmitRequest{
				PRURL:       prURL,
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("failed to submit work: %w", err)
			}

			fmt.Printf("✅ Work submitted for bounty #%d\n", b.ID)
			fmt.Println("   A verifier will review your submission.")
			return nil
		},
	}

	cmd.Flags().StringVar(&prURL, "pr", "", "pull request URL (required)")
	cmd.Flags().StringVar(&description, "description", "", "notes for the verifier")
	_ = cmd.MarkFlagRequired("pr")

	return cmd
}

func createBountyVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Approve the latest submission and pay the developer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBountyID(args[0])
			if err != nil {
				return err
			}

			c := client.New(getServer(), getAPIKey())
			b, err := c.VerifyBounty(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to verify bounty: %w", err)
			}

			fmt.Printf("✅ Bounty #%d verified and paid to %s\n", b.ID, b.ClaimedBy)
			return nil
		},
	}
}

func createBountyDisputeCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "dispute <id>",
		Short: "Flag a bounty for admin resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBountyID(args[0])
			if err != nil {
				return err
			}

			c := client.New(getServer(), getAPIKey())
			b, err := c.DisputeBounty(context.Background(), id, reason)
			if err != nil {
				return fmt.Errorf("failed to dispute bounty: %w", err)
			}

			fmt.Printf("⚠️  Bounty #%d disputed. An admin will resolve it.\n", b.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the bounty is disputed (required)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func createBountyResolveCmd() *cobra.Command {
	var payDeveloper bool
	var refund bool
	var note string

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Settle a disputed bounty (admin only)",
		Long: `Settle a disputed bounty. Exactly one of --pay-developer or
--refund must be given: pay out through the regular fee split, or
refund the maintainer and cancel.

EXAMPLES:
  connectx bounty resolve 7 --pay-developer --note "work checks out"
  connectx bounty resolve 7 --refund --note "submission was plagiarized"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if payDeveloper == refund {
				return fmt.Errorf("exactly one of --pay-developer or --refund is required")
			}
			id, err := parseBountyID(args[0])
			if err != nil {
				return err
			}

			c := client.New(getServer(), getAPIKey())
			b, err := c.ResolveBounty(context.Background(), id, client.ResolveRequest{
				PayDeveloper: payDeveloper,
				Note:         note,
			})
			if err != nil {
				return fmt.Errorf("failed to resolve bounty: %w", err)
			}

			if payDeveloper {
				fmt.Printf("✅ Bounty #%d resolved: paid to %s\n", b.ID, b.ClaimedBy)
			} else {
				fmt.Printf("✅ Bounty #%d resolved: refunded to %s\n", b.ID, b.Maintainer)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&payDeveloper, "pay-developer", false, "pay out to the developer")
	cmd.Flags().BoolVar(&refund, "refund", false, "refund the maintainer and cancel")
	cmd.Flags().StringVar(&note, "note", "", "resolution note for the record")

	return cmd
}

func createBountyCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a bounty and refund the escrowed reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBountyID(args[0])
			if err != nil {
				return err
			}

			c := client.New(getServer(), getAPIKey())
			b, err := c.CancelBounty(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to cancel bounty: %w", err)
			}

			fmt.Printf("✅ Bounty #%d cancelled, %s refunded\n", b.ID, formatAmount(b.RewardAmount))
			return nil
		},
	}
}

func createStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show platform totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			s, err := c.GetStats(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			fmt.Printf("Bounties:      %d\n", s.TotalBounties)
			fmt.Printf("Locked escrow: %s\n", formatAmount(s.TotalLocked))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

// microUnit is the number of micro-units in one whole unit
const microUnit = 1_000_000

// parseAmount converts a decimal amount string to micro-units.
// At most six fractional digits are accepted.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	var f int64
	if frac != "" {
		if len(frac) > 6 {
			return 0, fmt.Errorf("amount %q has more than 6 decimal places", s)
		}
		padded := frac + strings.Repeat("0", 6-len(frac))
		f, err = strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}

	return w*microUnit + f, nil
}

// formatAmount renders micro-units as a decimal string with trailing
// zeros trimmed.
func formatAmount(micros int64) string {
	sign := ""
	if micros < 0 {
		sign = "-"
		micros = -micros
	}
	whole := micros / microUnit
	frac := micros % microUnit
	if frac == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%06d", frac), "0")
	return fmt.Sprintf("%s%d.%s", sign, whole, fracStr)
}

// parseDeadline accepts YYYY-MM-DD, RFC3339, or a relative duration
// like 30d or 72h, and returns unix seconds.
func parseDeadline(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("deadline is required")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		// End of that day, UTC
		return t.Add(24*time.Hour - time.Second).Unix(), nil
	}

	// Relative: Nd for days, otherwise anything time.ParseDuration takes
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err == nil && days > 0 {
			return time.Now().Add(time.Duration(days) * 24 * time.Hour).Unix(), nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return time.Now().Add(d).Unix(), nil
	}

	return 0, fmt.Errorf("invalid deadline %q: use YYYY-MM-DD, RFC3339, or a duration like 30d", s)
}

func parseBountyID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid bounty ID %q", s)
	}
	return id, nil
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
}
