package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/pricing"
	"github.com/tripdesk/backoffice/pkg/dates"
)

func newQuoteCmd(c *cli) *cobra.Command {
	var (
		date     string
		checkIn  string
		checkOut string
	)
	cmd := &cobra.Command{
		Use:   "quote <variant-id>",
		Short: "Price a variant on a date or across a stay",
		Long: `Resolve the effective price of a variant and apply the category discount.
With --date a single service date is priced. With --check-in every service
date up to the exclusive --check-out is priced and totalled.`,
		Example: `  inventoryctl quote 6f1c... --date 2025-07-01
  inventoryctl quote 6f1c... --check-in 2025-07-01 --check-out 2025-07-04 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variantID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid variant id %q: %w", args[0], err)
			}
			if (date == "") == (checkIn == "") {
				return fmt.Errorf("exactly one of --date or --check-in is required")
			}

			if date != "" {
				on, err := dates.Parse(date)
				if err != nil {
					return err
				}
				quote, err := c.services.Pricing.Quote(cmd.Context(), variantID, on)
				if err != nil {
					return err
				}
				if c.json() {
					return c.writeJSON(quote)
				}
				return c.printQuotes([]pricing.Quote{*quote}, nil)
			}

			in, out, err := parseStay(checkIn, checkOut)
			if err != nil {
				return err
			}
			stay, err := c.services.Pricing.QuoteStay(cmd.Context(), variantID, in, out)
			if err != nil {
				return err
			}
			if c.json() {
				return c.writeJSON(stay)
			}
			return c.printQuotes(stay.Dates, stay)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Service date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkIn, "check-in", "", "First service date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "Exclusive end date (YYYY-MM-DD)")
	return cmd
}

func (c *cli) printQuotes(quotes []pricing.Quote, stay *pricing.StayQuote) error {
	w := tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DATE\tSALE\tCOST\tDISCOUNT\tPERCENT\tSELLING\tSOURCE")
	for _, q := range quotes {
		source := "base"
		if q.PeriodID != nil {
			source = "period " + q.PeriodID.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Date,
			q.Price.Sale.StringFixed(2),
			q.Price.Cost.StringFixed(2),
			q.DiscountAmount.StringFixed(2),
			q.DiscountPercent.StringFixed(2),
			q.SellingPrice.StringFixed(2),
			source,
		)
	}
	if stay != nil {
		fmt.Fprintf(w, "TOTAL\t\t\t\t\t%s\t\n", stay.TotalSelling.StringFixed(2))
	}
	return w.Flush()
}

// parseStay reads a required check-in and an optional exclusive check-out.
func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := dates.Parse(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--check-in: %w", err)
	}
	if checkOut == "" {
		return in, time.Time{}, nil
	}
	out, err := dates.Parse(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--check-out: %w", err)
	}
	return in, out, nil
}
