package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// Wire shapes, mirrored from the server responses. Only the fields the CLI
// prints are declared.
type userItem struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type roleItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Level       int      `json:"level"`
	IsSystem    bool     `json:"is_system"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions"`
}

type assignmentItem struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	RoleID    string     `json:"role_id"`
	IsActive  bool       `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type listEnvelope[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "List resources",
}

var getUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var resp listEnvelope[userItem]
		if err := client.get("/api/v1/users?limit=200", &resp); err != nil {
			return err
		}
		if flagOutput == "json" {
			return printJSON(resp.Items)
		}

		w := newTabWriter()
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tSTATUS")
		for _, u := range resp.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Status)
		}
		return w.Flush()
	},
}

var getRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the role catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var resp listEnvelope[roleItem]
		if err := client.get("/api/v1/roles", &resp); err != nil {
			return err
		}
		if flagOutput == "json" {
			return printJSON(resp.Items)
		}

		w := newTabWriter()
		fmt.Fprintln(w, "ID\tNAME\tLEVEL\tSYSTEM\tACTIVE\tPERMISSIONS")
		for _, r := range resp.Items {
			fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%t\t%d\n",
				r.ID, r.Name, r.Level, r.IsSystem, r.IsActive, len(r.Permissions))
		}
		return w.Flush()
	},
}

var getAssignmentsCmd = &cobra.Command{
	Use:   "assignments USER_ID",
	Short: "List a user's role assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var resp listEnvelope[assignmentItem]
		if err := client.get("/api/v1/users/"+args[0]+"/assignments", &resp); err != nil {
			return err
		}
		if flagOutput == "json" {
			return printJSON(resp.Items)
		}

		w := newTabWriter()
		fmt.Fprintln(w, "ID\tROLE_ID\tACTIVE\tEXPIRES")
		for _, a := range resp.Items {
			expires := "-"
			if a.ExpiresAt != nil {
				expires = a.ExpiresAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", a.ID, a.RoleID, a.IsActive, expires)
		}
		return w.Flush()
	},
}

func init() {
	getCmd.AddCommand(getUsersCmd)
	getCmd.AddCommand(getRolesCmd)
	getCmd.AddCommand(getAssignmentsCmd)
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
