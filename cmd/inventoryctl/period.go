package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/pkg/dates"
	"github.com/tripdesk/backoffice/pkg/db/models"
)

func newPeriodCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Manage date-windowed price periods",
	}
	cmd.AddCommand(newPeriodAddCmd(c), newPeriodListCmd(c), newPeriodDeleteCmd(c))
	return cmd
}

func newPeriodAddCmd(c *cli) *cobra.Command {
	var start, end, sale, cost, agent string
	cmd := &cobra.Command{
		Use:   "add <variant-id>",
		Short: "Add a price period; the newest period wins where periods overlap",
		Example: `  inventoryctl period add 6f1c... --start 2025-12-20 --end 2026-01-05 \
    --sale 1800 --cost 1100 --agent 1500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variantID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid variant id %q: %w", args[0], err)
			}
			startDate, err := dates.Parse(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			endDate, err := dates.Parse(end)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			salePrice, err := parseDecimal("sale", sale)
			if err != nil {
				return err
			}
			costPrice, err := parseDecimal("cost", cost)
			if err != nil {
				return err
			}
			agentPrice, err := parseDecimal("agent", agent)
			if err != nil {
				return err
			}

			period, err := c.services.Catalog.CreatePricePeriod(cmd.Context(), &models.PricePeriod{
				VariantID:  variantID,
				StartDate:  startDate,
				EndDate:    endDate,
				SalePrice:  salePrice,
				CostPrice:  costPrice,
				AgentPrice: agentPrice,
			})
			if err != nil {
				return err
			}
			if c.json() {
				return c.writeJSON(period)
			}
			fmt.Fprintf(c.out, "price period %s created\n", period.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First covered date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Last covered date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sale, "sale", "", "Sale price")
	cmd.Flags().StringVar(&cost, "cost", "", "Cost price")
	cmd.Flags().StringVar(&agent, "agent", "0", "Agent price")
	for _, name := range []string{"start", "end", "sale", "cost"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newPeriodListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list <variant-id>",
		Short: "List a variant's price periods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variantID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid variant id %q: %w", args[0], err)
			}
			periods, err := c.services.Catalog.ListPricePeriods(cmd.Context(), variantID)
			if err != nil {
				return err
			}
			if c.json() {
				return c.writeJSON(periods)
			}
			w := tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tSTART\tEND\tSALE\tCOST\tAGENT")
			for _, p := range periods {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					p.ID, dates.Format(p.StartDate), dates.Format(p.EndDate),
					p.SalePrice.StringFixed(2), p.CostPrice.StringFixed(2), p.AgentPrice.StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func newPeriodDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <period-id>",
		Short: "Delete a price period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid period id %q: %w", args[0], err)
			}
			if err := c.services.Catalog.DeletePricePeriod(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "price period deleted")
			return nil
		},
	}
}
