package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/estatedesk/backoffice/client"
)

func newApprovalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "approvals",
		Aliases: []string{"approval"},
		Short:   "Review queue and approval decisions",
	}
	cmd.AddCommand(approvalsPendingCmd())
	cmd.AddCommand(approvalsApproveCmd())
	cmd.AddCommand(approvalsRejectCmd())
	cmd.AddCommand(approvalsHistoryCmd())
	cmd.AddCommand(approvalsStepsCmd())
	return cmd
}

func approvalsPendingCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List properties awaiting review, oldest first",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			checkPage(limit, offset)
			items, _, err := apiClient.Approvals.Pending(context.Background(), limit, offset)
			if err != nil {
				fatal("list pending", err)
			}
			ids := make([]string, 0, len(items))
			rows := make([][]string, 0, len(items))
			for _, p := range items {
				ids = append(ids, p.ID)
				rows = append(rows, []string{p.ID, p.Code, p.ListingType, deref(p.CurrentStep), p.Title, shortTime(p.CreatedAt)})
			}
			outputList(items, ids, []string{"ID", "CODE", "LISTING", "STEP", "TITLE", "CREATED"}, rows)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	return cmd
}

func approvalsApproveCmd() *cobra.Command {
	var comments string
	cmd := &cobra.Command{
		Use:   "approve <property-id>",
		Short: "Approve the current step of a pending property",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			res, err := apiClient.Approvals.Approve(context.Background(), args[0], comments)
			if err != nil {
				fatal("approve", err)
			}
			outputTransition(res)
		},
	}
	cmd.Flags().StringVar(&comments, "comments", "", "Reviewer comments")
	return cmd
}

func approvalsRejectCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject <property-id>",
		Short: "Reject a pending property",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			res, err := apiClient.Approvals.Reject(context.Background(), args[0], reason)
			if err != nil {
				fatal("reject", err)
			}
			outputTransition(res)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason (at least 10 characters)")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func approvalsHistoryCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "history <property-id>",
		Short: "Show the approval audit trail of a property",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			checkPage(limit, offset)
			entries, _, err := apiClient.Approvals.History(context.Background(), args[0], limit, offset)
			if err != nil {
				fatal("approval history", err)
			}
			outputAudit(entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	return cmd
}

func approvalsStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps <property-id>",
		Short: "Show the steps of the current approval round",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			steps, err := apiClient.Approvals.Steps(context.Background(), args[0])
			if err != nil {
				fatal("approval steps", err)
			}
			ids := make([]string, 0, len(steps))
			rows := make([][]string, 0, len(steps))
			for _, s := range steps {
				ids = append(ids, s.ID)
				acted := ""
				if s.ActedAt != nil {
					acted = shortTime(*s.ActedAt)
				}
				rows = append(rows, []string{
					strconv.Itoa(s.Round), strconv.Itoa(s.StepOrder), s.StepName,
					s.RequiredRole, s.Status, deref(s.ActedBy), acted,
				})
			}
			outputList(steps, ids, []string{"ROUND", "ORDER", "STEP", "ROLE", "STATUS", "ACTED BY", "ACTED AT"}, rows)
		},
	}
}

func outputTransition(res *client.TransitionResult) {
	if flagFmt == "table" {
		step := ""
		if res.Step != nil {
			step = res.Step.StepName
		}
		formatTable(
			[]string{"PROPERTY", "NEW STATUS", "AUDIT ID", "STEP"},
			[][]string{{res.PropertyID, res.NewStatus, strconv.FormatInt(res.AuditLogID, 10), step}},
		)
		return
	}
	output(res, res.NewStatus)
}

func outputAudit(entries []client.AuditEntry) {
	ids := make([]string, 0, len(entries))
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		id := strconv.FormatInt(e.ID, 10)
		ids = append(ids, id)
		rows = append(rows, []string{id, shortTime(e.CreatedAt), e.Action, e.EntityID, e.ActorID, e.ActorRole})
	}
	outputList(entries, ids, []string{"ID", "AT", "ACTION", "ENTITY", "ACTOR", "ROLE"}, rows)
}

// checkPage rejects negative pagination flags.
func checkPage(limit, offset int) {
	if limit < 0 {
		fatal("invalid flags", fmt.Errorf("--limit must be non-negative"))
	}
	if offset < 0 {
		fatal("invalid flags", fmt.Errorf("--offset must be non-negative"))
	}
}
