package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixir/apartment-listing-service/internal/client"
	"github.com/helixir/apartment-listing-service/internal/domain"
)

const defaultServerURL = "http://localhost:4000"

type rootOptions struct {
	server  string
	timeout time.Duration
	json    bool
}

func (o *rootOptions) client() (*client.Client, error) {
	return client.New(client.Config{
		BaseURL:    o.server,
		Timeout:    o.timeout,
		MaxRetries: 2,
	})
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	server := os.Getenv("API_URL")
	if server == "" {
		server = defaultServerURL
	}

	root := &cobra.Command{
		Use:           "apartments",
		Short:         "Browse and create apartment listings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", server, "API base URL (env API_URL)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Print raw JSON instead of a table")

	root.AddCommand(
		listCmd(opts),
		getCmd(opts),
		createCmd(opts),
		healthCmd(opts),
	)
	return root
}

func listCmd(opts *rootOptions) *cobra.Command {
	var (
		page     int
		pageSize int
		query    string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List apartments, optionally filtered by project, unit name or unit number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			result, err := c.List(cmd.Context(), client.ListOptions{Page: page, PageSize: pageSize, Query: query})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, result)
			}
			if len(result.Apartments) == 0 {
				fmt.Fprintln(out, "No apartments found.")
				return nil
			}
			if err := writeApartmentTable(out, result.Apartments); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nPage %d of %d (%d total)\n", result.Page, result.TotalPages, result.Total)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", client.DefaultPageSize, "Listings per page")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search term")
	return cmd
}

func getCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one apartment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid apartment ID %q", args[0])
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			apt, err := c.Get(cmd.Context(), id)
			if err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("apartment %d not found", id)
				}
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), apt)
			}
			return writeApartmentDetail(cmd.OutOrStdout(), apt)
		},
	}
}

func createCmd(opts *rootOptions) *cobra.Command {
	var (
		input     domain.CreateApartmentInput
		price     float64
		area      float64
		bathrooms int
		bedrooms  int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an apartment listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Unset numeric flags stay nil so the server reports them as missing.
			flags := cmd.Flags()
			if flags.Changed("price") {
				input.Price = &price
			}
			if flags.Changed("area") {
				input.Area = &area
			}
			if flags.Changed("bathrooms") {
				input.Bathrooms = &bathrooms
			}
			if flags.Changed("bedrooms") {
				input.Bedrooms = &bedrooms
			}

			c, err := opts.client()
			if err != nil {
				return err
			}
			apt, err := c.Create(cmd.Context(), input)
			if err != nil {
				if client.IsValidation(err) {
					return fmt.Errorf("apartment rejected: %w", err)
				}
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), apt)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Apartment created successfully (id %d)\n", apt.ID)
			return writeApartmentDetail(cmd.OutOrStdout(), apt)
		},
	}

	f := cmd.Flags()
	f.StringVar(&input.UnitName, "unit-name", "", "Unit name")
	f.StringVar(&input.UnitNumber, "unit-number", "", "Unit number, unique across all projects")
	f.StringVar(&input.ProjectName, "project", "", "Project name")
	f.StringVar(&input.UnitLocation, "location", "", "Unit location")
	f.StringVar(&input.FloorNumber, "floor", "", "Floor number")
	f.Float64Var(&price, "price", 0, "Price, greater than 0")
	f.Float64Var(&area, "area", 0, "Area in square meters, greater than 0")
	f.IntVar(&bathrooms, "bathrooms", 0, "Number of bathrooms")
	f.IntVar(&bedrooms, "bedrooms", 0, "Number of bedrooms")
	return cmd
}

func healthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API server is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			if err := c.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is running\n", opts.server)
			return nil
		},
	}
}

func writeApartmentTable(w io.Writer, apartments []*domain.Apartment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUNIT\tNUMBER\tPROJECT\tLOCATION\tPRICE\tAREA\tBEDS\tBATHS\tFLOOR")
	for _, a := range apartments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			a.ID, a.UnitName, a.UnitNumber, a.ProjectName, a.UnitLocation,
			formatNumber(a.Price), formatNumber(a.Area), a.Bedrooms, a.Bathrooms, a.FloorNumber)
	}
	return tw.Flush()
}

func writeApartmentDetail(w io.Writer, a *domain.Apartment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", strconv.FormatInt(a.ID, 10)},
		{"Unit name", a.UnitName},
		{"Unit number", a.UnitNumber},
		{"Project", a.ProjectName},
		{"Location", a.UnitLocation},
		{"Price", formatNumber(a.Price)},
		{"Area", formatNumber(a.Area)},
		{"Bedrooms", strconv.Itoa(a.Bedrooms)},
		{"Bathrooms", strconv.Itoa(a.Bathrooms)},
		{"Floor", a.FloorNumber},
		{"Created", a.CreatedAt.Format(time.RFC3339)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatNumber prints the shortest exact form, so 1250000 has no decimals.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
