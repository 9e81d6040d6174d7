package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/booking"
)

func newReserveCmd(c *cli) *cobra.Command {
	var input booking.CreateReservationInput
	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Record a reservation against a partner's allotment",
		Long: `Record a reservation with one line per service date. Under the advisory
policy an over-allotted reservation is still written and flagged; under the
enforcing policy it is rejected.`,
		Example: `  inventoryctl reserve --partner 0b5e... --variant 6f1c... \
    --check-in 2025-07-01 --check-out 2025-07-03 --qty 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reservation, err := c.services.Booking.CreateReservation(cmd.Context(), input)
			if err != nil {
				return err
			}
			return c.printReservation(reservation)
		},
	}
	cmd.Flags().StringVar(&input.PartnerID, "partner", "", "Partner id")
	cmd.Flags().StringVar(&input.VariantID, "variant", "", "Variant id")
	cmd.Flags().StringVar(&input.CheckIn, "check-in", "", "First service date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.CheckOut, "check-out", "", "Exclusive end date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&input.Quantity, "qty", 1, "Units per service date")
	for _, name := range []string{"partner", "variant", "check-in"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <reservation-id>",
		Short: "Show a reservation and its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reservation id %q: %w", args[0], err)
			}
			reservation, err := c.services.Booking.GetReservation(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.printReservation(reservation)
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	var (
		params           booking.ListReservationsParams
		partner, variant string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reservations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if partner != "" {
				if params.PartnerID, err = uuid.Parse(partner); err != nil {
					return fmt.Errorf("invalid partner id %q: %w", partner, err)
				}
			}
			if variant != "" {
				if params.VariantID, err = uuid.Parse(variant); err != nil {
					return fmt.Errorf("invalid variant id %q: %w", variant, err)
				}
			}
			list, err := c.services.Booking.ListReservations(cmd.Context(), params)
			if err != nil {
				return err
			}
			if c.json() {
				return c.writeJSON(list)
			}
			w := tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tCHECK IN\tCHECK OUT\tQTY\tALLOTMENT\tTOTAL\tCANCELLED")
			for _, r := range list.Reservations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%t\n",
					r.ID, r.CheckIn, r.CheckOut, r.Quantity, r.AllotmentOutcome, r.TotalSale.StringFixed(2), r.CancelledAt != nil)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if list.Cursor != "" {
				fmt.Fprintf(c.out, "next page: --cursor %s\n", list.Cursor)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&partner, "partner", "", "Only this partner's reservations")
	cmd.Flags().StringVar(&variant, "variant", "", "Only this variant's reservations")
	cmd.Flags().BoolVar(&params.ActiveOnly, "active", false, "Hide cancelled reservations")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&params.Cursor, "cursor", "", "Cursor from a previous page")
	return cmd
}

func newCancelCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <reservation-id>",
		Short: "Cancel a reservation and release its allotment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid reservation id %q: %w", args[0], err)
			}
			if err := c.services.Booking.CancelReservation(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "reservation %s cancelled\n", id)
			return nil
		},
	}
}

func (c *cli) printReservation(r *booking.ReservationDTO) error {
	if c.json() {
		return c.writeJSON(r)
	}
	fmt.Fprintf(c.out, "reservation %s\n", r.ID)
	fmt.Fprintf(c.out, "allotment: %s", r.AllotmentOutcome)
	if r.AllotmentNote != "" {
		fmt.Fprintf(c.out, " (%s)", r.AllotmentNote)
	}
	fmt.Fprintln(c.out)
	if r.CancelledAt != nil {
		fmt.Fprintf(c.out, "cancelled at %s\n", r.CancelledAt.Format("2006-01-02 15:04"))
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DATE\tQTY\tUNIT SALE\tUNIT COST")
	for _, line := range r.Lines {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", line.ServiceDate, line.Quantity, line.UnitSale.StringFixed(2), line.UnitCost.StringFixed(2))
	}
	fmt.Fprintf(w, "TOTAL\t\t%s\t\n", r.TotalSale.StringFixed(2))
	return w.Flush()
}
