package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"yield-advisor/internal/advisory"
	"yield-advisor/internal/catalog"
	"yield-advisor/internal/config"
	"yield-advisor/internal/infrastructure"
	"yield-advisor/internal/models"
	"yield-advisor/pkg/logging"
)

// main sweeps every catalog combination through the prediction pipeline
// using the configured predictor and prints the advisory distribution.
func main() {
	temperature := flag.Float64("temperature", 28, "temperature in degrees Celsius")
	humidity := flag.Float64("humidity", 65, "relative humidity in percent")
	soil := flag.Float64("soil-moisture", 40, "soil moisture in percent")
	area := flag.Float64("area", 10, "cultivated area in acres")
	year := flag.Int("year", 2024, "crop year")
	flag.Parse()

	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("YIELD ADVISOR - CATALOG SWEEP DEMONSTRATION")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("demo", cfg.Version, logging.WarnLevel)
	ctx := context.Background()

	infra, err := infrastructure.New(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer infra.Close()

	cat := infra.Catalog
	fmt.Printf("Catalog: %d locations, %d sub-locations, %d seasons, %d crops\n",
		len(cat.Labels(catalog.FieldLocation)),
		len(cat.Labels(catalog.FieldSubLocation)),
		len(cat.Labels(catalog.FieldSeason)),
		len(cat.Labels(catalog.FieldCrop)))
	fmt.Printf("Readings: %.1f°C, %.1f%% humidity, %.1f%% soil moisture, %s\n\n",
		*temperature, *humidity, *soil, models.FormatArea(*area))

	categories := make(map[string]int)
	cropTotals := make(map[string]float64)
	cropCounts := make(map[string]int)
	failures := 0
	var sample *models.PredictionResponse

	for _, location := range cat.Labels(catalog.FieldLocation) {
		subs, _ := cat.SubLocations(location)
		for _, sub := range subs {
			for _, season := range cat.Labels(catalog.FieldSeason) {
				for _, crop := range cat.Labels(catalog.FieldCrop) {
					req := &models.PredictionRequest{
						Location:     location,
						SubLocation:  sub,
						Season:       season,
						Crop:         crop,
						CropYear:     *year,
						Temperature:  *temperature,
						Humidity:     *humidity,
						SoilMoisture: *soil,
						Area:         *area,
					}

					resp, err := infra.Predictions.Predict(ctx, req)
					if err != nil {
						failures++
						if failures <= 5 {
							fmt.Printf("  %s/%s/%s/%s: %v\n", location, sub, season, crop, err)
						}
						continue
					}

					categories[resp.Advisory.Category]++
					cropTotals[crop] += resp.Yield
					cropCounts[crop]++
					if sample == nil {
						sample = resp
					}
				}
			}
		}
	}

	total := failures
	for _, n := range categories {
		total += n
	}

	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Println("Advisory Distribution")
	fmt.Println("─────────────────────────────────────────────────────────────")
	for _, band := range infra.Engine.Ladder() {
		n := categories[band.Category]
		fmt.Printf("  %-10s %6d  (%5.1f%%)\n", band.Category, n, percent(n, total))
	}
	if failures > 0 {
		fmt.Printf("  %-10s %6d  (%5.1f%%)\n", "Failed", failures, percent(failures, total))
	}
	fmt.Println()

	fmt.Println("─────────────────────────────────────────────────────────────")
	fmt.Println("Mean Yield by Crop")
	fmt.Println("─────────────────────────────────────────────────────────────")
	crops := make([]string, 0, len(cropCounts))
	for crop := range cropCounts {
		crops = append(crops, crop)
	}
	sort.Strings(crops)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, crop := range crops {
		mean := cropTotals[crop] / float64(cropCounts[crop])
		fmt.Fprintf(w, "  %s\t%s\t%s\n", crop, models.FormatYield(mean), infra.Engine.Ladder().Classify(mean).Category)
	}
	w.Flush()
	fmt.Println()

	if sample != nil {
		fmt.Println("─────────────────────────────────────────────────────────────")
		fmt.Println("Sample Prediction")
		fmt.Println("─────────────────────────────────────────────────────────────")
		printSample(sample)
	}

	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Printf("Scored %d combinations (%d failed)\n", total-failures, failures)
}

func printSample(resp *models.PredictionResponse) {
	in := resp.Inputs
	fmt.Printf("  Input:     %s / %s / %s / %s (%d)\n", in.Location, in.SubLocation, in.Season, in.Crop, in.CropYear)
	fmt.Printf("  Yield:     %s\n", resp.Display)
	fmt.Printf("  Category:  %s\n", resp.Advisory.Category)
	fmt.Printf("  Guidance:  %s\n", resp.Advisory.Guidance)
	if resp.Advisory.CropGuidance != "" {
		fmt.Printf("  Crop:      %s\n", resp.Advisory.CropGuidance)
	}
	fmt.Printf("  Harvest:   %s\n", resp.Advisory.HarvestWindow)
	fmt.Printf("  Nutrients: %s\n", resp.Advisory.Fertilizer)
	for _, adv := range resp.Advisory.Environmental {
		fmt.Printf("  Alert:     %s\n", formatAdvisory(adv))
	}
	fmt.Println()
}

func formatAdvisory(adv advisory.EnvironmentalAdvisory) string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(adv.Kind), adv.Message)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
