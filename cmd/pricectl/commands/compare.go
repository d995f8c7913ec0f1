package commands

import (
	"fmt"
	"io"
	"strings"

	"pricewise/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var productID int

	cmd := &cobra.Command{
		Use:   "compare <product name>",
		Short: "Compares the price of a product across every configured store.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)

			comparison, err := a.Comparisons.Compare(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if productID > 0 {
				n, err := a.Comparisons.Record(cmd.Context(), productID, comparison.Results)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "recorded %d prices for product %d\n", n, productID)
			}

			renderComparison(cmd.OutOrStdout(), comparison)
			return nil
		},
	}
	cmd.Flags().IntVar(&productID, "record", 0, "store scraped prices against this product ID")
	return cmd
}

func renderComparison(w io.Writer, c *models.Comparison) {
	t := newTable(w)
	t.SetTitle(c.Query)
	t.AppendHeader(table.Row{"Store", "Title", "Price", "Saving", "Link"})

	for _, r := range c.Results {
		saving := "-"
		if c.Cheapest != nil {
			saving = formatPrice(c.Cheapest.Savings[r.Site])
		}
		t.AppendRow(table.Row{r.Site, r.Title, formatPrice(r.Price), saving, r.Link})
	}

	if c.Cheapest != nil {
		t.AppendFooter(table.Row{"Cheapest", c.Cheapest.Site, formatPrice(&c.Cheapest.Price), "", c.Cheapest.Link})
	}
	if c.Results.Estimated() {
		t.SetCaption("Prices are estimates, no store returned a result.")
	}
	t.Render()
}
