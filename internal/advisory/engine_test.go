package advisory

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yield-advisor/internal/features"
)

var calm = features.Readings{Temperature: 25, Humidity: 50, SoilMoisture: 50, Area: 10}

func TestAdvise_IsTotal(t *testing.T) {
	engine := Default()
	yields := []float64{-1, 0, 1.4, 1.5, 2, 3.4, 3.5, 4, 6, 100, math.Inf(1), math.Inf(-1), math.NaN()}
	crops := []string{"Rice", "Dragonfruit", ""}

	for _, y := range yields {
		for _, crop := range crops {
			r := engine.Advise(y, crop, calm)
			assert.NotEmpty(t, r.Category, "yield %v crop %q", y, crop)
			assert.NotEmpty(t, r.Guidance)
			assert.NotEmpty(t, r.CropGuidance)
			assert.NotEmpty(t, r.HarvestWindow)
			assert.NotEmpty(t, r.Fertilizer)
			assert.NotNil(t, r.Environmental)
		}
	}
}

func TestAdvise_CategoryBoundaries(t *testing.T) {
	engine := Default()

	tests := []struct {
		yield float64
		want  string
	}{
		{-1, CategoryLow},
		{0, CategoryLow},
		{1.49, CategoryLow},
		{1.5, CategoryModerate},
		{2, CategoryModerate},
		{3.49, CategoryModerate},
		{3.5, CategoryHigh},
		{100, CategoryHigh},
		{math.Inf(1), CategoryHigh},
		{math.NaN(), CategoryLow},
	}

	for _, tt := range tests {
		got := engine.Advise(tt.yield, "Wheat", calm).Category
		assert.Equal(t, tt.want, got, "yield %v", tt.yield)
	}
}

func TestAdvise_CategoryIsMonotonic(t *testing.T) {
	engine := Default()
	rank := map[string]int{CategoryLow: 0, CategoryModerate: 1, CategoryHigh: 2}

	prev := -1
	for y := -2.0; y <= 8; y += 0.05 {
		r := rank[engine.Advise(y, "Maize", calm).Category]
		if r < prev {
			t.Fatalf("category dropped at yield %v", y)
		}
		prev = r
	}
}

func TestAdvise_Environmental(t *testing.T) {
	engine := Default()

	tests := []struct {
		name     string
		readings features.Readings
		want     []string
	}{
		{"calm", calm, []string{}},
		{"hot", features.Readings{Temperature: 36, Humidity: 50, SoilMoisture: 50}, []string{KindTemperatureHigh}},
		{"humid and dry", features.Readings{Temperature: 20, Humidity: 85, SoilMoisture: 20}, []string{KindHumidityHigh, KindSoilMoistureLow}},
		{"all three", features.Readings{Temperature: 40, Humidity: 90, SoilMoisture: 10}, []string{KindTemperatureHigh, KindHumidityHigh, KindSoilMoistureLow}},
		// Thresholds are strict.
		{"at thresholds", features.Readings{Temperature: 35, Humidity: 80, SoilMoisture: 30}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Advise(2, "Rice", tt.readings).Environmental
			kinds := make([]string, 0, len(got))
			for _, a := range got {
				assert.NotEmpty(t, a.Message)
				kinds = append(kinds, a.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestAdvise_EnvironmentalIndependentOfYield(t *testing.T) {
	engine := Default()
	hot := features.Readings{Temperature: 42, Humidity: 50, SoilMoisture: 50}

	want := engine.Advise(0.2, "Rice", hot).Environmental
	for _, y := range []float64{1.5, 3.5, 9} {
		if diff := cmp.Diff(want, engine.Advise(y, "Rice", hot).Environmental); diff != "" {
			t.Errorf("yield %v changed environmental advisories (-want +got):\n%s", y, diff)
		}
	}
}

func TestAdvise_CropFallback(t *testing.T) {
	engine := Default()

	known := engine.Advise(2, "Rice", calm)
	unknown := engine.Advise(2, "Dragonfruit", calm)

	assert.Equal(t, HarvestFallback, unknown.HarvestWindow)
	assert.Equal(t, FertilizerFallback, unknown.Fertilizer)
	assert.NotEqual(t, known.HarvestWindow, unknown.HarvestWindow)
	assert.NotEqual(t, known.CropGuidance, unknown.CropGuidance)
	assert.Equal(t, known.Guidance, unknown.Guidance)
}

func TestAdvise_Idempotent(t *testing.T) {
	engine := Default()
	in := features.Readings{Temperature: 37, Humidity: 82, SoilMoisture: 25, Area: 3}

	first := engine.Advise(3.7, "Sugarcane", in)
	second := engine.Advise(3.7, "Sugarcane", in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated advise differs (-first +second):\n%s", diff)
	}
}

func TestNewEngine_RejectsInvalidRules(t *testing.T) {
	valid := DefaultRules()

	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"no ladder", func(r *Rules) { r.Ladder = nil }},
		{"unordered ladder", func(r *Rules) { r.Ladder = Ladder{r.Ladder[0], r.Ladder[2], r.Ladder[1]} }},
		{"bad reading", func(r *Rules) {
			r.Environmental = []EnvironmentalRule{{Kind: "x", Message: "m", Reading: "wind", Comparison: Above}}
		}},
		{"bad comparison", func(r *Rules) {
			r.Environmental = []EnvironmentalRule{{Kind: "x", Message: "m", Reading: ReadingHumidity, Comparison: "equal"}}
		}},
		{"no harvest fallback", func(r *Rules) { r.Harvest = NewTable("", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := valid
			rules.Ladder = append(Ladder(nil), valid.Ladder...)
			tt.mutate(&rules)
			_, err := NewEngine(rules)
			require.Error(t, err)
		})
	}
}

func TestNewLadder(t *testing.T) {
	_, err := NewLadder(Band{LowerBound: 0, Category: "A", Guidance: "g"})
	assert.Error(t, err, "first band must start at -Inf")

	l, err := NewLadder(
		Band{LowerBound: math.Inf(-1), Category: "A", Guidance: "g"},
		Band{LowerBound: 10, Category: "B", Guidance: "g"},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, l.Boundaries())
	assert.Equal(t, "B", l.Classify(10).Category)
	assert.Equal(t, "A", l.Classify(9.99).Category)
}

func TestTable_CopiesEntries(t *testing.T) {
	entries := map[string]string{"Rice": "r"}
	tbl := NewTable("fallback", entries)
	entries["Rice"] = "changed"

	assert.Equal(t, "r", tbl.Lookup("Rice"))
	assert.Equal(t, "fallback", tbl.Lookup("Wheat"))
	assert.True(t, tbl.Has("Rice"))
	assert.False(t, tbl.Has("Wheat"))
}
