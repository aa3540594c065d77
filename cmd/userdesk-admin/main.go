// Command userdesk-admin is a kubectl-style CLI for operating the UserDesk
// API: inspecting users, roles and assignments, and performing grants.
package main

import (
	"fmt"
	"os"

	"github.com/userdeskio/api/cmd/userdesk-admin/cmd"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
