package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"yield-advisor/internal/models"
)

var adviseReq models.AdviseRequest

// adviseCmd prints the advisory for a supplied yield
var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Print the advisory for a yield",
	Long: `Categorize a yield in tonnes and print the full advisory as JSON,
including environmental advisories for the supplied readings.`,
	RunE: runAdvise,
}

func init() {
	f := adviseCmd.Flags()
	f.Float64Var(&adviseReq.Yield, "yield", 0, "yield in tonnes")
	f.StringVar(&adviseReq.Crop, "crop", "", "crop name for crop-specific guidance")
	f.Float64Var(&adviseReq.Temperature, "temperature", 25, "temperature in degrees Celsius")
	f.Float64Var(&adviseReq.Humidity, "humidity", 60, "relative humidity in percent")
	f.Float64Var(&adviseReq.SoilMoisture, "soil-moisture", 40, "soil moisture in percent")
	_ = adviseCmd.MarkFlagRequired("yield")
}

func runAdvise(cmd *cobra.Command, args []string) error {
	infra, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer infra.Close()

	resp, err := infra.Predictions.Advise(cmd.Context(), &adviseReq)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
