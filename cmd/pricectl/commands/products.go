package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newProductsCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Lists known products, optionally filtered by a fuzzy search.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := appFrom(cmd).Catalogue.Search(cmd.Context(), query)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Name", "Category"})
			for _, p := range products {
				t.AppendRow(table.Row{p.ID, p.Name, p.GetCategory()})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "fuzzy name filter")
	return cmd
}
