package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/estatedesk/backoffice/client"
)

func newAuditCmd() *cobra.Command {
	var (
		opts  client.AuditQueryOptions
		since string
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the approval audit log",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			checkPage(opts.Limit, opts.Offset)
			if since != "" {
				t, err := parseSince(since, time.Now())
				if err != nil {
					fatal("invalid --since", err)
				}
				opts.Since = &t
			}
			entries, _, err := apiClient.Audit.Query(context.Background(), &opts)
			if err != nil {
				fatal("query audit", err)
			}
			outputAudit(entries)
		},
	}
	cmd.Flags().StringVar(&opts.ActorID, "actor", "", "Filter by actor user ID")
	cmd.Flags().StringVar(&opts.Action, "action", "", "Filter by action (APPROVE, REJECT, ARCHIVE, MARK_SOLD, RESUBMIT)")
	cmd.Flags().StringVar(&opts.EntityID, "entity", "", "Filter by entity ID")
	cmd.Flags().StringVar(&since, "since", "", "Only entries at or after this time (RFC3339 or a duration such as 24h)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "Max results")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Offset")
	return cmd
}

// parseSince accepts an RFC3339 timestamp or a duration counted back from now.
func parseSince(v string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return time.Time{}, fmt.Errorf("%q is neither RFC3339 nor a positive duration", v)
	}
	return now.Add(-d), nil
}
