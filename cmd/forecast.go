package cmd

import (
	"SmartCanteen-Backend/cmd/config"
	"SmartCanteen-Backend/cmd/database/seed"
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/utils/gemini"
	"SmartCanteen-Backend/pkg/forecast"
	"SmartCanteen-Backend/pkg/history"
	"SmartCanteen-Backend/pkg/menu"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"
)

type forecastOptions struct {
	date    string
	mode    string
	offline bool
}

func newForecastCmd() *cobra.Command {
	opts := &forecastOptions{}
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print a demand forecast as JSON",
		Long: `forecast predicts per-item demand for a day and prints it as JSON.
With --offline it runs on the seed catalog and history without a database or
the text service, so only the statistical fallback is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			req := domain.ForecastRequest{TargetDate: opts.date, Mode: domain.OptimizationMode(opts.mode)}
			return runForecast(cmd.Context(), svc, req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.date, "date", "", "target date (YYYY-MM-DD), defaults to tomorrow")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "optimization mode: NORMAL, EXAM or FEST (defaults to the saved mode)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "use the seed data and the fallback estimator only")
	return cmd
}

func (o *forecastOptions) service() (forecast.ForecastService, error) {
	loc, err := config.Location()
	if err != nil {
		return nil, err
	}

	if o.offline {
		return offlineForecastService(loc)
	}

	db, err := config.ConnectDB()
	if err != nil {
		return nil, err
	}
	client, err := gemini.NewClientFromConfig()
	if err != nil {
		return nil, err
	}
	return forecast.NewForecastService(
		menu.NewMenuRepository(db),
		history.NewHistoryRepository(db),
		state.NewStateService(state.NewStateRepository(db)),
		client,
		loc,
	), nil
}

func offlineForecastService(loc *time.Location) (forecast.ForecastService, error) {
	entries, err := seed.HistoryEntities()
	if err != nil {
		return nil, err
	}
	return forecast.NewForecastService(
		menu.NewMemoryRepository(seed.MenuEntities()...),
		history.NewMemoryRepository(entries...),
		state.NewStateService(state.NewMemoryRepository()),
		nil,
		loc,
	), nil
}

func runForecast(ctx context.Context, svc forecast.ForecastService, req domain.ForecastRequest, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(res)
}
