package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// cliConfig is the on-disk CLI configuration, kubeconfig-style: named
// contexts plus a pointer to the current one.
type cliConfig struct {
	CurrentContext string               `yaml:"current-context"`
	Contexts       map[string]ctxConfig `yaml:"contexts"`
}

type ctxConfig struct {
	APIURL string `yaml:"api-url"`
	Token  string `yaml:"token,omitempty"`
}

var loadedConfig cliConfig

func configPath() string {
	if p := os.Getenv("USERDESK_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".userdesk.yaml"
	}
	return filepath.Join(home, ".userdesk", "config.yaml")
}

func loadConfigFile(path string) (cliConfig, error) {
	var cfg cliConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func initConfig() {
	cfg, err := loadConfigFile(configPath())
	if err != nil {
		// A missing file just means no contexts are configured yet.
		if !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
		return
	}
	loadedConfig = cfg
}

func saveConfig() error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(loadedConfig)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// currentContext resolves flags, environment and config file, in that
// order.
func currentContext() (ctxConfig, error) {
	cc := ctxConfig{}

	name := flagContext
	if name == "" {
		name = os.Getenv("USERDESK_CONTEXT")
	}
	if name == "" {
		name = loadedConfig.CurrentContext
	}
	if name != "" {
		if stored, ok := loadedConfig.Contexts[name]; ok {
			cc = stored
		} else {
			return cc, fmt.Errorf("context %q not found in %s", name, configPath())
		}
	}

	if env := os.Getenv("USERDESK_API_URL"); env != "" {
		cc.APIURL = env
	}
	if env := os.Getenv("USERDESK_TOKEN"); env != "" {
		cc.Token = env
	}
	if flagAPIURL != "" {
		cc.APIURL = flagAPIURL
	}
	if flagToken != "" {
		cc.Token = flagToken
	}

	if cc.APIURL == "" {
		return cc, fmt.Errorf("no API URL configured; use --api-url or %q", "userdesk-admin config set-context")
	}
	return cc, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI contexts",
}

var configSetContextCmd = &cobra.Command{
	Use:   "set-context NAME",
	Short: "Create or update a context and make it current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		apiURL, _ := cmd.Flags().GetString("api-url")
		token, _ := cmd.Flags().GetString("token")
		if apiURL == "" {
			return fmt.Errorf("--api-url is required")
		}

		if loadedConfig.Contexts == nil {
			loadedConfig.Contexts = map[string]ctxConfig{}
		}
		loadedConfig.Contexts[name] = ctxConfig{APIURL: apiURL, Token: token}
		loadedConfig.CurrentContext = name

		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Printf("Context %q saved and set as current\n", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context NAME",
	Short: "Switch the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, ok := loadedConfig.Contexts[name]; !ok {
			return fmt.Errorf("context %q not found", name)
		}
		loadedConfig.CurrentContext = name
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Printf("Switched to context %q\n", name)
		return nil
	},
}

var configGetContextsCmd = &cobra.Command{
	Use:   "get-contexts",
	Short: "List configured contexts",
	Run: func(cmd *cobra.Command, args []string) {
		for name, c := range loadedConfig.Contexts {
			marker := " "
			if name == loadedConfig.CurrentContext {
				marker = "*"
			}
			fmt.Printf("%s %s\t%s\n", marker, name, c.APIURL)
		}
	},
}

func init() {
	configSetContextCmd.Flags().String("api-url", "", "API base URL")
	configSetContextCmd.Flags().String("token", "", "Access token")

	configCmd.AddCommand(configSetContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextsCmd)
}
