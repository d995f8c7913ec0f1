package commands

import (
	"fmt"
	"io"
	"strconv"

	"pricewise/forecast"
	"pricewise/services"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newForecastCmd() *cobra.Command {
	var days int
	var daily bool

	cmd := &cobra.Command{
		Use:   "forecast <product id>",
		Short: "Forecasts a product's price from its stored history.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			if days < 0 {
				days = a.Config.Forecast.DefaultDaysAhead
			}

			if daily {
				outlook, err := a.Forecasts.Outlook(cmd.Context(), id, days)
				if err != nil {
					return err
				}
				renderOutlook(cmd.OutOrStdout(), outlook)
				return nil
			}

			result, err := a.Forecasts.Forecast(cmd.Context(), id, days)
			if err != nil {
				return err
			}
			renderForecast(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", -1, "days past the latest observation (default from FORECAST_DAYS_AHEAD)")
	cmd.Flags().BoolVar(&daily, "daily", false, "print every day up to --days without saving")
	return cmd
}

func renderForecast(w io.Writer, r *services.ForecastResult) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("Product %d", r.ProductID))
	t.AppendRows([]table.Row{
		{"Predicted price", fmt.Sprintf("₹%.2f", r.Prediction.PredictedPrice)},
		{"Predicted date", r.Prediction.PredictedDate.String()},
		{"Confidence", fmt.Sprintf("%.2f%%", r.Prediction.Confidence)},
		{"Trend", r.Coefficients.Trend},
		{"Change per day", fmt.Sprintf("₹%.2f", r.Coefficients.ChangePerDay)},
		{"MAE", r.Evaluation.MAE},
		{"RMSE", r.Evaluation.RMSE},
		{"R²", r.Evaluation.R2},
		{"Data points", r.DataPoints},
	})
	t.Render()
}

func renderOutlook(w io.Writer, preds []forecast.Prediction) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Day", "Date", "Price"})
	for _, p := range preds {
		t.AppendRow(table.Row{p.DaysAhead, p.PredictedDate.String(), fmt.Sprintf("₹%.2f", p.PredictedPrice)})
	}
	t.Render()
}
