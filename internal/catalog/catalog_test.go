package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_Domains(t *testing.T) {
	c := Builtin()

	assert.Equal(t, []string{"Andhra Pradesh", "Assam", "Bihar", "Chhattisgarh", "Delhi"}, c.Labels(FieldLocation))
	assert.Equal(t, []string{"Kharif", "Rabi", "Whole Year", "Summer", "Winter", "Autumn"}, c.Labels(FieldSeason))
	assert.Equal(t, []string{"Rice", "Wheat", "Maize", "Barley", "Soybean", "Banana", "Sugarcane", "Turmeric"}, c.Labels(FieldCrop))
	assert.Len(t, c.Labels(FieldSubLocation), 13)

	subs, ok := c.SubLocations("Andhra Pradesh")
	require.True(t, ok)
	assert.Equal(t, []string{"ANANTAPUR", "CHITTOOR", "EAST GODAVARI", "GUNTUR", "KADAPA"}, subs)

	loc, ok := c.LocationOf("East Delhi")
	require.True(t, ok)
	assert.Equal(t, "Delhi", loc)

	assert.True(t, c.Has(FieldCrop, "Turmeric"))
	assert.False(t, c.Has(FieldCrop, "turmeric"))
	assert.False(t, c.Has(FieldLocation, "Goa"))

	_, ok = c.SubLocations("Goa")
	assert.False(t, ok)
}

func TestCatalog_IsolatedFromCallers(t *testing.T) {
	spec := Spec{
		Locations: []LocationSpec{{Name: "A", SubLocations: []string{"a1"}}},
		Seasons:   []string{"S"},
		Crops:     []string{"C"},
	}
	c, err := New(spec)
	require.NoError(t, err)

	spec.Crops[0] = "mutated"
	spec.Locations[0].SubLocations[0] = "mutated"
	assert.Equal(t, []string{"C"}, c.Labels(FieldCrop))

	labels := c.Labels(FieldCrop)
	labels[0] = "mutated"
	assert.Equal(t, []string{"C"}, c.Labels(FieldCrop))

	subs, _ := c.SubLocations("A")
	subs[0] = "mutated"
	assert.True(t, c.Has(FieldSubLocation, "a1"))
	got, _ := c.SubLocations("A")
	assert.Equal(t, []string{"a1"}, got)
}

func TestNew_Invalid(t *testing.T) {
	valid := func() Spec {
		return Spec{
			Locations: []LocationSpec{
				{Name: "A", SubLocations: []string{"a1", "a2"}},
				{Name: "B", SubLocations: []string{"b1"}},
			},
			Seasons: []string{"Kharif"},
			Crops:   []string{"Rice"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"no locations", func(s *Spec) { s.Locations = nil }},
		{"empty location name", func(s *Spec) { s.Locations[0].Name = "" }},
		{"duplicate location", func(s *Spec) { s.Locations[1].Name = "A" }},
		{"location without sub-locations", func(s *Spec) { s.Locations[1].SubLocations = nil }},
		{"sub-location under two locations", func(s *Spec) { s.Locations[1].SubLocations = []string{"a1"} }},
		{"empty sub-location", func(s *Spec) { s.Locations[0].SubLocations[1] = "" }},
		{"empty seasons", func(s *Spec) { s.Seasons = nil }},
		{"empty crops", func(s *Spec) { s.Crops = []string{} }},
		{"duplicate crop", func(s *Spec) { s.Crops = []string{"Rice", "Rice"} }},
		{"empty season label", func(s *Spec) { s.Seasons = []string{""} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid()
			tt.mutate(&spec)

			_, err := New(spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog), "error %v should wrap ErrInvalidCatalog", err)
		})
	}

	_, err := New(valid())
	assert.NoError(t, err)
}

func TestLoadFile(t *testing.T) {
	c, err := LoadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Karnataka", "Kerala"}, c.Labels(FieldLocation))
	assert.Equal(t, []string{"BELGAUM", "Mysuru", "Idukki"}, c.Labels(FieldSubLocation))
	assert.Equal(t, []string{"Coffee", "Rice"}, c.Labels(FieldCrop))

	loc, ok := c.LocationOf("Idukki")
	require.True(t, ok)
	assert.Equal(t, "Kerala", loc)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "locations: []\nregions: []\n"},
		{"malformed", "locations: [\n"},
		{"structurally invalid", "locations: []\nseasons: [Rabi]\ncrops: [Rice]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}

	_, err := LoadFile(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}
