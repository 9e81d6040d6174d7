package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/pkg/dates"
	"github.com/tripdesk/backoffice/pkg/db/models"
)

func newAllotmentCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allotment",
		Short: "Manage partner allotment rows",
	}
	cmd.AddCommand(
		newAllotmentSetCmd(c),
		newAllotmentDefaultCmd(c),
		newAllotmentLinkCmd(c),
	)
	return cmd
}

func newAllotmentSetCmd(c *cli) *cobra.Command {
	var (
		date     string
		stock    int64
		discount string
	)
	cmd := &cobra.Command{
		Use:     "set <partner-id> <variant-id>",
		Short:   "Set the partner's stock for one date",
		Example: `  inventoryctl allotment set 0b5e... 6f1c... --date 2025-07-01 --stock 5`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			partnerID, variantID, err := parsePartnerVariant(args)
			if err != nil {
				return err
			}
			day, err := dates.Parse(date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			disc, err := parseNullDecimal(discount)
			if err != nil {
				return err
			}

			row, err := c.services.Catalog.UpsertAllotment(cmd.Context(), &models.PartnerAllotment{
				PartnerID: partnerID,
				VariantID: variantID,
				Date:      day,
				Stock:     stock,
				Discount:  disc,
			})
			if err != nil {
				return err
			}
			if c.json() {
				return c.writeJSON(row)
			}
			fmt.Fprintf(c.out, "allotment %s set to %d on %s\n", row.ID, row.Stock, dates.Format(row.Date))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Service date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&stock, "stock", 0, "Units available on the date")
	cmd.Flags().StringVar(&discount, "discount", "", "Optional partner discount")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("stock")
	return cmd
}

func newAllotmentDefaultCmd(c *cli) *cobra.Command {
	var (
		stock    int64
		discount string
	)
	cmd := &cobra.Command{
		Use:   "default <partner-id> <variant-id>",
		Short: "Set the stock used for dates without their own row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			partnerID, variantID, err := parsePartnerVariant(args)
			if err != nil {
				return err
			}
			disc, err := parseNullDecimal(discount)
			if err != nil {
				return err
			}

			row, err := c.services.Catalog.UpsertAllotmentDefault(cmd.Context(), &models.PartnerAllotmentDefault{
				PartnerID: partnerID,
				VariantID: variantID,
				Stock:     stock,
				Discount:  disc,
			})
			if err != nil {
				return err
			}
			if c.json() {
				return c.writeJSON(row)
			}
			fmt.Fprintf(c.out, "default allotment set to %d\n", row.Stock)
			return nil
		},
	}
	cmd.Flags().Int64Var(&stock, "stock", 0, "Units available per date")
	cmd.Flags().StringVar(&discount, "discount", "", "Optional partner discount")
	_ = cmd.MarkFlagRequired("stock")
	return cmd
}

func newAllotmentLinkCmd(c *cli) *cobra.Command {
	var unlink bool
	cmd := &cobra.Command{
		Use:   "link <product-id> <partner-id>",
		Short: "Link a partner to a product so it can supply the product's variants",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q: %w", args[0], err)
			}
			partnerID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid partner id %q: %w", args[1], err)
			}
			if unlink {
				if err := c.services.Catalog.UnlinkPartner(cmd.Context(), productID, partnerID); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "partner unlinked")
				return nil
			}
			if err := c.services.Catalog.LinkPartner(cmd.Context(), productID, partnerID); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "partner linked")
			return nil
		},
	}
	cmd.Flags().BoolVar(&unlink, "remove", false, "Remove the link instead")
	return cmd
}

func parsePartnerVariant(args []string) (uuid.UUID, uuid.UUID, error) {
	partnerID, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid partner id %q: %w", args[0], err)
	}
	variantID, err := uuid.Parse(args[1])
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid variant id %q: %w", args[1], err)
	}
	return partnerID, variantID, nil
}

func parseNullDecimal(value string) (decimal.NullDecimal, error) {
	if value == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func parseDecimal(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: invalid amount %q: %w", flag, value, err)
	}
	return d, nil
}
