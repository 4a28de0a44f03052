package advisory

import (
	"math"
)

// Category labels of the default ladder.
const (
	CategoryLow      = "Low"
	CategoryModerate = "Moderate"
	CategoryHigh     = "High"
)

// Environmental advisory kinds of the default rules.
const (
	KindTemperatureHigh = "temperature-high"
	KindHumidityHigh    = "humidity-high"
	KindSoilMoistureLow = "soil-moisture-low"
)

// Fallback texts for crops absent from the reference tables.
const (
	HarvestFallback    = "Harvest timing varies by crop and variety; follow local extension guidance on maturity indicators."
	FertilizerFallback = "Apply a balanced N:P:K fertilizer at rates based on a recent soil test."
)

// Rules is the complete static configuration of an Engine.
type Rules struct {
	Ladder        Ladder
	Environmental []EnvironmentalRule
	Harvest       Table
	Fertilizer    Table
}

// DefaultRules returns the canonical rule set: yield bands split at 1.5 and 3.5
// tonnes, three environmental checks, and reference tables for the eight catalog crops.
func DefaultRules() Rules {
	ladder, err := NewLadder(
		Band{
			LowerBound: math.Inf(-1),
			Category:   CategoryLow,
			Guidance:   "Expected yield is low. Review soil fertility, irrigation scheduling and seed quality before the next cycle.",
			Elaborations: NewTable(
				"Get a soil test and consider a locally recommended high-yielding variety.",
				map[string]string{
					"Rice":      "For rice, keep 2-5 cm of standing water through tillering and consider transplanting younger seedlings.",
					"Wheat":     "For wheat, sow on time and make sure the crown root initiation irrigation is not missed.",
					"Maize":     "For maize, check plant population and correct zinc deficiency on light soils.",
					"Barley":    "For barley, use certified seed and avoid sowing into waterlogged fields.",
					"Soybean":   "For soybean, inoculate seed with Rhizobium and improve drainage before sowing.",
					"Banana":    "For banana, replace weak suckers and increase potassium applications.",
					"Sugarcane": "For sugarcane, gap-fill missing setts early and check for early shoot borer.",
					"Turmeric":  "For turmeric, use healthy mother rhizomes and mulch beds after planting.",
				},
			),
		},
		Band{
			LowerBound: 1.5,
			Category:   CategoryModerate,
			Guidance:   "Expected yield is moderate. Targeted nutrient and water management can lift output.",
			Elaborations: NewTable(
				"Split fertilizer applications and time irrigation to critical growth stages.",
				map[string]string{
					"Rice":      "For rice, top-dress nitrogen at panicle initiation and manage weeds in the first 40 days.",
					"Wheat":     "For wheat, apply the second nitrogen split with the first irrigation.",
					"Maize":     "For maize, irrigate at tasseling and silking, the most water-sensitive stages.",
					"Barley":    "For barley, keep nitrogen moderate to avoid lodging.",
					"Soybean":   "For soybean, watch for girdle beetle and keep the field weed-free until flowering.",
					"Banana":    "For banana, prop bunches and keep up regular fertigation.",
					"Sugarcane": "For sugarcane, earth up at 90-120 days and trash-mulch between rows.",
					"Turmeric":  "For turmeric, earth up twice and keep beds evenly moist.",
				},
			),
		},
		Band{
			LowerBound: 3.5,
			Category:   CategoryHigh,
			Guidance:   "Expected yield is high. Maintain current practices and plan storage and marketing ahead of harvest.",
			Elaborations: NewTable(
				"Protect the crop from late-season pests and arrange storage in advance.",
				map[string]string{
					"Rice":      "For rice, drain the field 10 days before harvest and dry grain to 14% moisture.",
					"Wheat":     "For wheat, harvest promptly at maturity to limit shattering losses.",
					"Maize":     "For maize, dry cobs well before shelling to keep aflatoxin risk low.",
					"Barley":    "For barley, check malting quality requirements if selling to brewers.",
					"Soybean":   "For soybean, harvest before pods shatter and store seed below 12% moisture.",
					"Banana":    "For banana, coordinate harvest with buyers to limit post-harvest losses.",
					"Sugarcane": "For sugarcane, schedule crushing promptly after cutting to preserve sucrose.",
					"Turmeric":  "For turmeric, cure and polish rhizomes promptly to secure a better price.",
				},
			),
		},
	)
	if err != nil {
		panic("advisory: default ladder is invalid: " + err.Error())
	}

	return Rules{
		Ladder: ladder,
		Environmental: []EnvironmentalRule{
			{
				Kind:       KindTemperatureHigh,
				Reading:    ReadingTemperature,
				Comparison: Above,
				Threshold:  35,
				Message:    "Temperature is above 35°C. Irrigate early in the morning or in the evening and mulch to reduce heat stress.",
			},
			{
				Kind:       KindHumidityHigh,
				Reading:    ReadingHumidity,
				Comparison: Above,
				Threshold:  80,
				Message:    "Humidity is above 80%. Watch for fungal disease and improve airflow through the canopy.",
			},
			{
				Kind:       KindSoilMoistureLow,
				Reading:    ReadingSoilMoisture,
				Comparison: Below,
				Threshold:  30,
				Message:    "Soil moisture is below 30%. Schedule irrigation soon to avoid water stress.",
			},
		},
		Harvest: NewTable(HarvestFallback, map[string]string{
			"Rice":      "110-150 days after transplanting, when 80-85% of grains turn straw-coloured.",
			"Wheat":     "120-150 days after sowing, when grains are hard and moisture is below 20%.",
			"Maize":     "90-120 days after sowing, once husks dry and kernels show a black layer.",
			"Barley":    "100-130 days after sowing, when spikes turn golden and stems dry.",
			"Soybean":   "90-120 days after sowing, when about 95% of pods have turned brown.",
			"Banana":    "11-15 months after planting, when fingers are plump and their ridges round off.",
			"Sugarcane": "10-18 months after planting, when brix readings level off around 18-20%.",
			"Turmeric":  "7-9 months after planting, when leaves yellow and dry down.",
		}),
		Fertilizer: NewTable(FertilizerFallback, map[string]string{
			"Rice":      "N:P:K 100:50:50 kg/ha; split nitrogen across transplanting, tillering and panicle initiation.",
			"Wheat":     "N:P:K 120:60:40 kg/ha; half the nitrogen at sowing, the rest at first irrigation.",
			"Maize":     "N:P:K 150:75:40 kg/ha, plus zinc sulphate at 25 kg/ha on deficient soils.",
			"Barley":    "N:P:K 60:30:20 kg/ha; avoid excess nitrogen to limit lodging.",
			"Soybean":   "N:P:K 20:60:40 kg/ha with Rhizobium seed inoculation.",
			"Banana":    "200:60:300 g N:P:K per plant, in split doses across the crop cycle.",
			"Sugarcane": "N:P:K 250:100:120 kg/ha; nitrogen in three splits before earthing up.",
			"Turmeric":  "N:P:K 120:60:60 kg/ha with 25-30 t/ha of farmyard manure at planting.",
		}),
	}
}
