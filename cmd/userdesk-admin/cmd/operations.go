package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var grantCmd = &cobra.Command{
	Use:   "grant USER_ID ROLE_ID",
	Short: "Grant a role to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]any{
			"user_id": args[0],
			"role_id": args[1],
		}
		if ttl, _ := cmd.Flags().GetDuration("ttl"); ttl > 0 {
			body["expires_at"] = time.Now().Add(ttl).UTC()
		}

		var created assignmentItem
		if err := client.post("/api/v1/assignments", body, &created); err != nil {
			return err
		}
		fmt.Printf("Assignment %s created\n", created.ID)
		return nil
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke ASSIGNMENT_ID",
	Short: "Revoke a role assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		var revoked assignmentItem
		if err := client.post("/api/v1/assignments/"+args[0]+"/revoke", nil, &revoked); err != nil {
			return err
		}
		fmt.Printf("Assignment %s revoked\n", revoked.ID)
		return nil
	},
}

type auditItem struct {
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	RoleName  string    `json:"role_name"`
	Timestamp time.Time `json:"timestamp"`
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent access-change events",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		var resp listEnvelope[auditItem]
		if err := client.get(fmt.Sprintf("/api/v1/audit/events?limit=%d", limit), &resp); err != nil {
			return err
		}
		if flagOutput == "json" {
			return printJSON(resp.Items)
		}

		w := newTabWriter()
		fmt.Fprintln(w, "TIME\tEVENT\tUSER\tROLE")
		for _, e := range resp.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.Timestamp.Format(time.RFC3339), e.EventType, e.UserID, e.RoleName)
		}
		return w.Flush()
	},
}

func init() {
	grantCmd.Flags().Duration("ttl", 0, "Expire the grant after this duration (e.g. 720h)")
	auditCmd.Flags().Int("limit", 50, "Maximum number of events")
}
