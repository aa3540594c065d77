package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version string

	// Global flags.
	flagAPIURL  string
	flagToken   string
	flagContext string
	flagOutput  string
)

var rootCmd = &cobra.Command{
	Use:   "userdesk-admin",
	Short: "UserDesk administration CLI",
	Long: `userdesk-admin is a kubectl-style CLI for the UserDesk API.

It provides commands to inspect users, roles and assignments, grant and
revoke roles, and read the audit trail.

Use "userdesk-admin config set-context" to configure your connection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Override API URL (env: USERDESK_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Override access token (env: USERDESK_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&flagContext, "context", "c", "", "Use specific context (env: USERDESK_CONTEXT)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "Output format: table, json")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(auditCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("userdesk-admin %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
	},
}
