package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/debayudh07/connectx/pkg/client"
)

func createAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect accounts",
	}

	cmd.AddCommand(createAccountBalanceCmd())
	cmd.AddCommand(createAccountBountiesCmd())
	cmd.AddCommand(createAccountClaimsCmd())
	cmd.AddCommand(createAccountCompletionsCmd())

	return cmd
}

func createAccountBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show an account's available balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			balance, err := c.Balance(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get balance: %w", err)
			}
			fmt.Println(formatAmount(balance))
			return nil
		},
	}
}

func createAccountBountiesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "bounties <address>",
		Short: "List bounties posted by an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			list, err := c.MaintainerBounties(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list bounties: %w", err)
			}
			return printBountyTable(list, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func createAccountClaimsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "claims <address>",
		Short: "List bounties claimed by an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			list, err := c.DeveloperClaims(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list claims: %w", err)
			}
			return printBountyTable(list, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func createAccountCompletionsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "completions <address>",
		Short: "List bounties an account has completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			list, err := c.DeveloperCompletions(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list completions: %w", err)
			}
			return printBountyTable(list, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func printBountyTable(list []client.Bounty, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("No bounties found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tREWARD\tDIFFICULTY\tTITLE")
	for _, b := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			b.ID, b.Status, formatAmount(b.RewardAmount), b.Difficulty, b.Title)
	}
	w.Flush()
	return nil
}
