package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/estatedesk/backoffice/client"
)

func newBookingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "booking",
		Aliases: []string{"bookings"},
		Short:   "Manage customer bookings",
	}
	cmd.AddCommand(bookingCreateCmd())
	cmd.AddCommand(bookingListCmd())
	cmd.AddCommand(bookingGetCmd())
	cmd.AddCommand(bookingCloseCmd("cancel", "Cancel an active booking", func(ctx context.Context, id string) (*client.Booking, error) {
		return apiClient.Bookings.Cancel(ctx, id)
	}))
	cmd.AddCommand(bookingCloseCmd("convert", "Convert an active booking into a deal", func(ctx context.Context, id string) (*client.Booking, error) {
		return apiClient.Bookings.Convert(ctx, id)
	}))
	return cmd
}

var bookingHeaders = []string{"ID", "PROPERTY", "CUSTOMER", "STATUS", "EXPIRES", "CREATED"}

func bookingRow(b client.Booking) []string {
	return []string{b.ID, b.PropertyID, b.CustomerID, b.Status, shortTime(b.ExpiresAt), shortTime(b.CreatedAt)}
}

func outputBooking(b *client.Booking) {
	if flagFmt == "table" {
		formatTable(bookingHeaders, [][]string{bookingRow(*b)})
		return
	}
	output(b, b.ID)
}

func bookingCreateCmd() *cobra.Command {
	var (
		customer string
		notes    string
		expires  string
	)
	cmd := &cobra.Command{
		Use:   "create <property-id>",
		Short: "Book an active property for a customer",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.CreateBookingRequest{
				CustomerID: customer,
				Notes:      optionalString(notes),
			}
			if expires != "" {
				t, err := time.Parse(time.RFC3339, expires)
				if err != nil {
					fatal("invalid --expires", fmt.Errorf("must be RFC3339: %w", err))
				}
				req.ExpiresAt = &t
			}
			b, err := apiClient.Bookings.Create(context.Background(), args[0], req)
			if err != nil {
				fatal("create booking", err)
			}
			outputBooking(b)
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "", "Customer ID")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&expires, "expires", "", "Hold expiry (RFC3339, defaults to the server hold TTL)")
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func bookingListCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list <property-id>",
		Short: "List bookings for a property",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			checkPage(limit, offset)
			bookings, _, err := apiClient.Bookings.List(context.Background(), args[0], limit, offset)
			if err != nil {
				fatal("list bookings", err)
			}
			ids := make([]string, 0, len(bookings))
			rows := make([][]string, 0, len(bookings))
			for _, b := range bookings {
				ids = append(ids, b.ID)
				rows = append(rows, bookingRow(b))
			}
			outputList(bookings, ids, bookingHeaders, rows)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	return cmd
}

func bookingGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a booking by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			b, err := apiClient.Bookings.Get(context.Background(), args[0])
			if err != nil {
				fatal("get booking", err)
			}
			outputBooking(b)
		},
	}
}

func bookingCloseCmd(use, short string, fn func(ctx context.Context, id string) (*client.Booking, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			b, err := fn(context.Background(), args[0])
			if err != nil {
				fatal(use+" booking", err)
			}
			outputBooking(b)
		},
	}
}
