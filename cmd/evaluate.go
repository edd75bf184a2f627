package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridstor/battbench/config"
	"github.com/gridstor/battbench/core/evaluator"
	"github.com/gridstor/battbench/core/model"
	"github.com/gridstor/battbench/infra/marketdata"
	"github.com/gridstor/battbench/pkg/export"
)

var (
	evalAssetPath    string
	evalPricesPath   string
	evalSchedulePath string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Replay a stored schedule and report its realized value",
	RunE:  evaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalAssetPath, "asset", "", "asset spec file (yaml or json)")
	evaluateCmd.Flags().StringVar(&evalPricesPath, "prices", "", "price series file (csv or json)")
	evaluateCmd.Flags().StringVar(&evalSchedulePath, "schedule", "", "schedule csv to replay")
	_ = evaluateCmd.MarkFlagRequired("asset")
	_ = evaluateCmd.MarkFlagRequired("prices")
	_ = evaluateCmd.MarkFlagRequired("schedule")
	rootCmd.AddCommand(evaluateCmd)
}

func evaluate(cmd *cobra.Command, args []string) error {
	spec, err := config.LoadAssetSpec(evalAssetPath)
	if err != nil {
		return fmt.Errorf("load asset: %w", err)
	}
	asset, err := model.NewAsset(spec)
	if err != nil {
		return err
	}
	records, err := marketdata.Load(evalPricesPath)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}
	series, err := model.NewPriceSeries(records)
	if err != nil {
		return err
	}
	f, err := os.Open(evalSchedulePath)
	if err != nil {
		return err
	}
	powers, err := export.ReadScheduleCSV(f)
	f.Close()
	if err != nil {
		return err
	}
	sched, err := evaluator.BuildSchedule(series, asset, powers)
	if err != nil {
		return err
	}
	res, err := evaluator.Evaluate(series, asset, sched)
	if err != nil {
		return err
	}
	return export.WriteResultJSON(cmd.OutOrStdout(), res)
}
