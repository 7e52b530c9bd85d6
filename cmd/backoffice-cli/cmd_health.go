package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server liveness and readiness",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			health, err := apiClient.Health(ctx)
			if err != nil {
				fatal("health", err)
			}
			ready, readyErr := apiClient.Ready(ctx)

			switch flagFmt {
			case "table":
				rows := [][]string{
					{"status", health.Status},
					{"version", health.Version},
					{"database", health.Database},
					{"schema_version", strconv.Itoa(health.SchemaVersion)},
					{"approval_model", health.ApprovalModel},
					{"ws_clients", strconv.Itoa(health.WSClients)},
					{"uptime", (time.Duration(health.UptimeSeconds) * time.Second).String()},
				}
				if readyErr != nil {
					rows = append(rows, []string{"ready", "unavailable"})
				} else {
					rows = append(rows, []string{"ready", ready.Status})
					names := make([]string, 0, len(ready.Checks))
					for name := range ready.Checks {
						names = append(names, name)
					}
					sort.Strings(names)
					for _, name := range names {
						rows = append(rows, []string{"check." + name, ready.Checks[name]})
					}
				}
				formatTable([]string{"FIELD", "VALUE"}, rows)
			case "quiet":
				fmt.Println(health.Status)
			default:
				formatJSON(map[string]any{"health": health, "ready": ready})
			}

			if readyErr != nil {
				fatal("ready", readyErr)
			}
		},
	}
}
