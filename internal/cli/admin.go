package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/debayudh07/connectx/pkg/client"
)

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Platform administration",
		Long:  `Administer roles, platform configuration, and account balances. Most subcommands require the ADMIN role.`,
	}

	cmd.AddCommand(createAdminRoleCmd())
	cmd.AddCommand(createAdminPauseCmd())
	cmd.AddCommand(createAdminUnpauseCmd())
	cmd.AddCommand(createAdminConfigCmd())
	cmd.AddCommand(createAdminDepositCmd())
	cmd.AddCommand(createAdminWithdrawCmd())

	return cmd
}

func createAdminRoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage roles",
	}

	grant := &cobra.Command{
		Use:   "grant <role> <account>",
		Short: "Grant a role to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			if err := c.GrantRole(context.Background(), args[0], args[1]); err != nil {
				return fmt.Errorf("failed to grant role: %w", err)
			}
			fmt.Printf("✅ %s granted to %s\n", args[0], args[1])
			return nil
		},
	}

	revoke := &cobra.Command{
		Use:   "revoke <role> <account>",
		Short: "Revoke a role from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			if err := c.RevokeRole(context.Background(), args[0], args[1]); err != nil {
				return fmt.Errorf("failed to revoke role: %w", err)
			}
			fmt.Printf("✅ %s revoked from %s\n", args[0], args[1])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list <role>",
		Short: "List accounts holding a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			accounts, err := c.RoleAccounts(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list role accounts: %w", err)
			}
			if len(accounts) == 0 {
				fmt.Printf("No accounts hold %s\n", args[0])
				return nil
			}
			for _, a := range accounts {
				fmt.Println(a)
			}
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check <role> <account>",
		Short: "Check whether an account holds a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			granted, err := c.HasRole(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to check role: %w", err)
			}
			if granted {
				fmt.Printf("%s holds %s\n", args[1], args[0])
			} else {
				fmt.Printf("%s does not hold %s\n", args[1], args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(grant, revoke, list, check)
	return cmd
}

func createAdminPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Halt all mutating platform operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			if err := c.Pause(context.Background()); err != nil {
				return fmt.Errorf("failed to pause: %w", err)
			}
			fmt.Println("⚠️  Platform paused. Reads still work; run 'connectx admin unpause' to resume.")
			return nil
		},
	}
}

func createAdminUnpauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpause",
		Short: "Resume normal operation",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			if err := c.Unpause(context.Background()); err != nil {
				return fmt.Errorf("failed to unpause: %w", err)
			}
			fmt.Println("✅ Platform unpaused")
			return nil
		},
	}
}

func createAdminConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update platform configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the platform configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer(), getAPIKey())
			cfg, err := c.GetConfig(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get config: %w", err)
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			fmt.Printf("Platform fee:       %d bps\n", cfg.PlatformFeeBps)
			fmt.Printf("Minimum bounty:     %s\n", formatAmount(cfg.MinimumBountyAmount))
			fmt.Printf("Max claim duration: %s\n", (time.Duration(cfg.MaximumClaimDurationSeconds) * time.Second).String())
			if cfg.FeeRecipient != "" {
				fmt.Printf("Fee recipient:      %s\n", cfg.FeeRecipient)
			} else {
				fmt.Println("Fee recipient:      (unset, fees disabled)")
			}
			if cfg.Paused {
				fmt.Println("Status:             PAUSED")
			} else {
				fmt.Println("Status:             active")
			}
			return nil
		},
	}
	show.Flags().Bool("json", false, "output as JSON")

	setFee := &cobra.Command{
		Use:   "set-fee <bps>",
		Short: "Set the platform fee in basis points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bps int64
			if _, err := fmt.Sscanf(args[0], "%d", &bps); err != nil {
				return fmt.Errorf("invalid basis points %q", args[0])
			}
			c := client.New(getServer(), getAPIKey())
			if err := c.SetPlatformFee(context.Background(), bps); err != nil {
				return fmt.Errorf("failed to set fee: %w", err)
			}
			fmt.Printf("✅ Platform fee set to %d bps\n", bps)
			return nil
		},
	}

	setMin := &cobra.Command{
		Use:   "set-min-amount <amount>",
		Short: "Set the minimum bounty amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			micros, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			c := client.New(getServer(), getAPIKey())
			if err := c.SetMinimumBountyAmount(context.Background(), micros); err != nil {
				return fmt.Errorf("failed to set minimum amount: %w", err)
			}
			fmt.Printf("✅ Minimum bounty amount set to %s\n", formatAmount(micros))
			return nil
		},
	}

	setDuration := &cobra.Command{
		Use:   "set-claim-duration <duration>",
		Short: "Set the maximum claim duration (e.g. 168h or 14d)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().Unix()
			due, err := parseDeadline(args[0])
			if err != nil {
				return err
			}
			seconds := due - now
			if seconds <= 0 {
				return fmt.Errorf("invalid duration %q", args[0])
			}
			c := client.New(getServer(), getAPIKey())
			if err := c.SetMaximumClaimDuration(context.Background(), seconds); err != nil {
				return fmt.Errorf("failed to set claim duration: %w", err)
			}
			fmt.Printf("✅ Maximum claim duration set to %s\n", (time.Duration(seconds) * time.Second).String())
			return nil
		},
	}

	setRecipient := &cobra.Command{
		Use:   "set-fee-recipient [address]",
		Short: "Set the fee recipient; omit the address to disable fees",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipient := ""
			if len(args) == 1 {
				recipient = args[0]
			}
			c := client.New(getServer(), getAPIKey())
			if err := c.SetFeeRecipient(context.Background(), recipient); err != nil {
				return fmt.Errorf("failed to set fee recipient: %w", err)
			}
			if recipient == "" {
				fmt.Println("✅ Fee recipient cleared, fees disabled")
			} else {
				fmt.Printf("✅ Fee recipient set to %s\n", recipient)
			}
			return nil
		},
	}

	cmd.AddCommand(show, setFee, setMin, setDuration, setRecipient)
	return cmd
}

func createAdminDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <account> <amount>",
		Short: "Credit an account's balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			micros, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			c := client.New(getServer(), getAPIKey())
			if err := c.Deposit(context.Background(), args[0], micros); err != nil {
				return fmt.Errorf("failed to deposit: %w", err)
			}
			fmt.Printf("✅ Deposited %s to %s\n", formatAmount(micros), args[0])
			return nil
		},
	}
}

func createAdminWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <account> <amount>",
		Short: "Debit an account's balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			micros, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			c := client.New(getServer(), getAPIKey())
			if err := c.Withdraw(context.Background(), args[0], micros); err != nil {
				return fmt.Errorf("failed to withdraw: %w", err)
			}
			fmt.Printf("✅ Withdrew %s from %s\n", formatAmount(micros), args[0])
			return nil
		},
	}
}
