package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// projectConfigFiles is the search order for project config files
var projectConfigFiles = []string{"connectx.toml", "cx.toml"}

// ProjectConfig is the project-level TOML configuration
type ProjectConfig struct {
	Server     string   `toml:"server"`
	RepoURL    string   `toml:"repo_url,omitempty"`
	Skills     []string `toml:"skills,omitempty"`
	Difficulty string   `toml:"difficulty,omitempty"`
}

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(createConfigInitCmd())
	cmd.AddCommand(createConfigShowCmd())

	return cmd
}

func createConfigInitCmd() *cobra.Command {
	var serverURL string
	var repoURL string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config file",
		Long: `Create a connectx.toml configuration file in the current directory.

This file stores project-specific settings like the server URL and the
repository defaults used when creating bounties.

EXAMPLES:
  # Create config with default server
  connectx config init

  # Create config for a specific server and repo
  connectx config init --server https://connectx.example.com --repo https://github.com/acme/widget

  # Overwrite existing config
  connectx config init --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(serverURL, repoURL, force)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "server URL")
	cmd.Flags().StringVar(&repoURL, "repo", "", "repository URL used as the default for new bounties")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")

	return cmd
}

func createConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}
}

func runConfigInit(serverURL, repoURL string, force bool) error {
	configPath := "connectx.toml"

	for _, cfgFile := range projectConfigFiles {
		if _, err := os.Stat(cfgFile); err == nil && !force {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", cfgFile)
		}
	}

	content := fmt.Sprintf(`# ConnectX project configuration

server = "%s"
repo_url = "%s"

# Default difficulty for new bounties (easy, medium, hard)
difficulty = "medium"

# Default required skills for new bounties
# skills = ["go", "sql"]
`, serverURL, repoURL)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  1. Edit %s to customize settings\n", configPath)
	fmt.Println("  2. Run 'connectx auth login' to authenticate")
	fmt.Println("  3. Run 'connectx bounty create --amount 1.0 --title \"...\"' to post a bounty")

	return nil
}

func runConfigShow() error {
	fmt.Println("Configuration sources (in order of precedence):")
	fmt.Println()

	fmt.Println("1. Command line flags")
	fmt.Println("   --server, --api-key, --config")
	fmt.Println()

	fmt.Println("2. Environment variables")
	if serverEnv := os.Getenv("CONNECTX_SERVER"); serverEnv != "" {
		fmt.Printf("   CONNECTX_SERVER=%s\n", serverEnv)
	} else {
		fmt.Println("   CONNECTX_SERVER=(not set)")
	}
	if keyEnv := os.Getenv("CONNECTX_API_KEY"); keyEnv != "" {
		fmt.Printf("   CONNECTX_API_KEY=%s\n", maskAPIKey(keyEnv))
	} else {
		fmt.Println("   CONNECTX_API_KEY=(not set)")
	}
	fmt.Println()

	fmt.Println("3. Local project config (connectx.toml or cx.toml)")
	projectConfig, configPath, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("   (not found)")
		} else {
			fmt.Printf("   Error: %v\n", err)
		}
	} else {
		fmt.Printf("   Loaded from: %s\n", configPath)
		if projectConfig.Server != "" {
			fmt.Printf("   server: %s\n", projectConfig.Server)
		}
		if projectConfig.RepoURL != "" {
			fmt.Printf("   repo_url: %s\n", projectConfig.RepoURL)
		}
		if projectConfig.Difficulty != "" {
			fmt.Printf("   difficulty: %s\n", projectConfig.Difficulty)
		}
		if len(projectConfig.Skills) > 0 {
			fmt.Printf("   skills: %v\n", projectConfig.Skills)
		}
	}
	fmt.Println()

	fmt.Println("4. Credentials (~/.connectx/credentials)")
	creds, err := loadCredentials()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("   (not found)")
		} else {
			fmt.Printf("   Error: %v\n", err)
		}
	} else {
		if len(creds.Servers) == 0 {
			fmt.Println("   (no credentials stored)")
		} else {
			for server, cred := range creds.Servers {
				fmt.Printf("   %s: %s\n", server, maskAPIKey(cred.APIKey))
			}
		}
	}
	fmt.Println()

	fmt.Println("Effective configuration:")
	fmt.Printf("   Server:  %s\n", getServer())
	if key := getAPIKey(); key != "" {
		fmt.Printf("   API Key: %s\n", maskAPIKey(key))
	} else {
		fmt.Println("   API Key: (not set)")
	}

	return nil
}

// loadProjectConfig loads the project config from the first matching config file.
// Returns the config, the path it was loaded from, and an error.
func loadProjectConfig() (*ProjectConfig, string, error) {
	// If --config flag was provided, use that directly
	if cfgFile != "" {
		config, err := loadProjectConfigFromPath(cfgFile)
		if err != nil {
			return nil, cfgFile, err
		}
		return config, cfgFile, nil
	}

	for _, name := range projectConfigFiles {
		if _, err := os.Stat(name); err == nil {
			config, err := loadProjectConfigFromPath(name)
			if err != nil {
				return nil, name, err
			}
			return config, name, nil
		}
	}
	return nil, "", os.ErrNotExist
}

func loadProjectConfigFromPath(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config ProjectConfig
	if _, err := toml.Decode(string(data), &config); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	return &config, nil
}

// loadProjectConfigSilent loads the project config without returning errors for
// missing files. Parse failures are reported once to stderr.
func loadProjectConfigSilent() *ProjectConfig {
	config, _, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		fmt.Fprintf(os.Stderr, "Warning: failed to load project config: %v\n", err)
		return nil
	}
	return config
}

func credentialsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".connectx"
	}
	return filepath.Join(home, ".connectx")
}
