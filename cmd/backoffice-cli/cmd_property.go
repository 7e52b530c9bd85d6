package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/estatedesk/backoffice/client"
)

func newPropertyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "property",
		Aliases: []string{"properties", "prop"},
		Short:   "Manage property listings",
	}
	cmd.AddCommand(propertyGetCmd())
	cmd.AddCommand(propertyListCmd())
	cmd.AddCommand(propertyCreateCmd())
	cmd.AddCommand(propertyUpdateCmd())
	cmd.AddCommand(propertyLifecycleCmd("archive", "Archive a property", apiClientArchive))
	cmd.AddCommand(propertyLifecycleCmd("sold", "Mark an active property as sold", apiClientMarkSold))
	cmd.AddCommand(propertyLifecycleCmd("resubmit", "Resubmit a rejected property for approval", apiClientResubmit))
	return cmd
}

func propertyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a property by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			p, err := apiClient.Properties.Get(context.Background(), args[0])
			if err != nil {
				fatal("get property", err)
			}
			if flagFmt == "table" {
				formatTable(propertyHeaders, [][]string{propertyRow(*p)})
				return
			}
			output(p, p.ID)
		},
	}
}

var propertyHeaders = []string{"ID", "CODE", "STATUS", "LISTING", "PRICE AZN", "TITLE", "UPDATED"}

func propertyRow(p client.Property) []string {
	return []string{p.ID, p.Code, p.Status, p.ListingType, p.PriceAZN.StringFixed(2), p.Title, shortTime(p.UpdatedAt)}
}

func propertyListCmd() *cobra.Command {
	var (
		status      string
		listingType string
		limit       int
		offset      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			checkPage(limit, offset)
			props, _, err := apiClient.Properties.List(context.Background(), &client.PropertyListOptions{
				Status:      status,
				ListingType: listingType,
				Limit:       limit,
				Offset:      offset,
			})
			if err != nil {
				fatal("list properties", err)
			}
			ids := make([]string, 0, len(props))
			rows := make([][]string, 0, len(props))
			for _, p := range props {
				ids = append(ids, p.ID)
				rows = append(rows, propertyRow(p))
			}
			outputList(props, ids, propertyHeaders, rows)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending|active|rejected|sold|archived)")
	cmd.Flags().StringVar(&listingType, "listing-type", "", "Filter by listing type (agency_owned|branch_owned|brokerage)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	return cmd
}

// decimalFlag parses an optional decimal flag value.
func decimalFlag(name, v string) decimal.NullDecimal {
	if v == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		fatal("invalid --"+name, err)
	}
	return decimal.NewNullDecimal(d)
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func propertyCreateCmd() *cobra.Command {
	var (
		jsonFile    string
		req         client.CreatePropertyRequest
		price       string
		area        string
		commission  string
		buyPrice    string
		description string
		agentID     string
		rooms       int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a property (flags or --json file, '-' for stdin)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if jsonFile != "" {
				if err := readJSONInput(jsonFile, &req); err != nil {
					fatal("read --json", err)
				}
			} else {
				if price == "" {
					fatal("invalid flags", fmt.Errorf("--price is required"))
				}
				req.PriceAZN = decimalFlag("price", price).Decimal
				req.AreaSqm = decimalFlag("area", area)
				req.BrokerageCommissionPercent = decimalFlag("commission", commission)
				req.BuyPriceAZN = decimalFlag("buy-price", buyPrice)
				req.Description = optionalString(description)
				req.AgentID = optionalString(agentID)
				if cmd.Flags().Changed("rooms") {
					req.Rooms = &rooms
				}
			}
			p, err := apiClient.Properties.Create(context.Background(), &req)
			if err != nil {
				fatal("create property", err)
			}
			output(p, p.ID)
		},
	}
	f := cmd.Flags()
	f.StringVar(&jsonFile, "json", "", "Read the request body from a JSON file")
	f.StringVar(&req.Code, "code", "", "Listing code (generated when empty)")
	f.StringVar(&req.PropertyCategory, "property-category", "", "Property category (residential|commercial)")
	f.StringVar(&req.ListingType, "listing-type", "", "Listing type (agency_owned|branch_owned|brokerage)")
	f.StringVar(&req.Category, "category", "", "Deal category (sale|rent)")
	f.StringVar(&req.Title, "title", "", "Title")
	f.StringVar(&description, "description", "", "Description")
	f.StringVar(&req.Address, "address", "", "Address")
	f.StringVar(&price, "price", "", "Price in AZN")
	f.StringVar(&area, "area", "", "Area in square metres")
	f.IntVar(&rooms, "rooms", 0, "Number of rooms")
	f.StringVar(&commission, "commission", "", "Brokerage commission percent")
	f.StringVar(&buyPrice, "buy-price", "", "Agency buy price in AZN")
	f.StringVar(&agentID, "agent", "", "Assigned agent user ID")
	return cmd
}

func propertyUpdateCmd() *cobra.Command {
	var jsonFile string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a pending or rejected property from a JSON patch (--json file, '-' for stdin)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var req client.UpdatePropertyRequest
			if err := readJSONInput(jsonFile, &req); err != nil {
				fatal("read --json", err)
			}
			p, err := apiClient.Properties.Update(context.Background(), args[0], &req)
			if err != nil {
				fatal("update property", err)
			}
			output(p, p.ID)
		},
	}
	cmd.Flags().StringVar(&jsonFile, "json", "", "JSON file with the fields to change")
	_ = cmd.MarkFlagRequired("json")
	return cmd
}

type lifecycleFunc func(ctx context.Context, id, comments string) (*client.TransitionResult, error)

func apiClientArchive(ctx context.Context, id, comments string) (*client.TransitionResult, error) {
	return apiClient.Approvals.Archive(ctx, id, comments)
}

func apiClientMarkSold(ctx context.Context, id, comments string) (*client.TransitionResult, error) {
	return apiClient.Approvals.MarkSold(ctx, id, comments)
}

func apiClientResubmit(ctx context.Context, id, comments string) (*client.TransitionResult, error) {
	return apiClient.Approvals.Resubmit(ctx, id, comments)
}

func propertyLifecycleCmd(use, short string, fn lifecycleFunc) *cobra.Command {
	var comments string
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			res, err := fn(context.Background(), args[0], comments)
			if err != nil {
				fatal(use, err)
			}
			outputTransition(res)
		},
	}
	cmd.Flags().StringVar(&comments, "comments", "", "Comments recorded in the audit log")
	return cmd
}

// readJSONInput decodes a JSON document from path, or stdin when path is "-".
func readJSONInput(path string, v any) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
