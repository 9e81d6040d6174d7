package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/allotment"
)

func newCheckCmd(c *cli) *cobra.Command {
	var (
		checkIn  string
		checkOut string
		quantity int64
	)
	cmd := &cobra.Command{
		Use:   "check <partner-id> <variant-id>",
		Short: "Check whether a partner can supply a stay",
		Long: `Evaluate the partner's allotment against live reservation lines for every
service date in [check-in, check-out). Evaluation stops at the first date
that cannot supply the quantity.`,
		Example: `  inventoryctl check 0b5e... 6f1c... --check-in 2025-07-01 --check-out 2025-07-04 --qty 2`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			partnerID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid partner id %q: %w", args[0], err)
			}
			variantID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid variant id %q: %w", args[1], err)
			}
			in, out, err := parseStay(checkIn, checkOut)
			if err != nil {
				return err
			}

			result := c.services.Checker.Check(cmd.Context(), allotment.Request{
				PartnerID: partnerID,
				VariantID: variantID,
				CheckIn:   in,
				CheckOut:  out,
				Quantity:  quantity,
			})
			if c.json() {
				return c.writeJSON(result)
			}
			return c.printResult(result)
		},
	}
	cmd.Flags().StringVar(&checkIn, "check-in", "", "First service date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&checkOut, "check-out", "", "Exclusive end date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&quantity, "qty", 1, "Units required on every date")
	_ = cmd.MarkFlagRequired("check-in")
	return cmd
}

func (c *cli) printResult(result allotment.Result) error {
	fmt.Fprintf(c.out, "%s (%s)\n", result.Outcome, result.Reason)
	if result.Note != "" {
		fmt.Fprintln(c.out, result.Note)
	}
	if len(result.Nights) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DATE\tSTOCK\tBOOKED\tREMAINING\tSOURCE")
	for _, n := range result.Nights {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", n.Date, n.Stock, n.Booked, n.Remaining, n.Source)
	}
	return w.Flush()
}
