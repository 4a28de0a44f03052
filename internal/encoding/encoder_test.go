package encoding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yield-advisor/internal/catalog"
	"yield-advisor/internal/features"
)

func TestEncode_IndicesAreUniqueStableAndInRange(t *testing.T) {
	for _, order := range []Order{OrderSorted, OrderInsertion} {
		enc := NewEncoder(catalog.Builtin(), order)

		for _, field := range catalog.Fields {
			labels := catalog.Builtin().Labels(field)
			seen := make(map[int]string, len(labels))

			for _, label := range labels {
				first, err := enc.Encode(field, label)
				require.NoError(t, err, "%s/%s %q", order, field, label)

				second, err := enc.Encode(field, label)
				require.NoError(t, err)
				assert.Equal(t, first, second, "encoding %q twice must agree", label)

				assert.GreaterOrEqual(t, first, 0)
				assert.Less(t, first, len(labels))

				if prev, dup := seen[first]; dup {
					t.Errorf("%s/%s: %q and %q share index %d", order, field, prev, label, first)
				}
				seen[first] = label
			}
		}
	}
}

func TestEncode_SortedMatchesTrainingEncoder(t *testing.T) {
	enc := NewEncoder(catalog.Builtin(), OrderSorted)

	tests := []struct {
		field catalog.Field
		label string
		want  int
	}{
		{catalog.FieldLocation, "Andhra Pradesh", 0},
		{catalog.FieldLocation, "Delhi", 4},
		{catalog.FieldSeason, "Autumn", 0},
		{catalog.FieldSeason, "Kharif", 1},
		{catalog.FieldSeason, "Whole Year", 4},
		{catalog.FieldSeason, "Winter", 5},
		{catalog.FieldCrop, "Banana", 0},
		{catalog.FieldCrop, "Rice", 3},
		{catalog.FieldCrop, "Wheat", 7},
		// Upper-case labels sort before mixed-case ones.
		{catalog.FieldSubLocation, "ANANTAPUR", 0},
		{catalog.FieldSubLocation, "Araria", 1},
		{catalog.FieldSubLocation, "Arwal", 2},
		{catalog.FieldSubLocation, "CHITTOOR", 7},
		{catalog.FieldSubLocation, "Central Delhi", 8},
		{catalog.FieldSubLocation, "EAST GODAVARI", 9},
		{catalog.FieldSubLocation, "East Delhi", 10},
		{catalog.FieldSubLocation, "KADAPA", 12},
	}

	for _, tt := range tests {
		t.Run(string(tt.field)+"/"+tt.label, func(t *testing.T) {
			got, err := enc.Encode(tt.field, tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_InsertionOrder(t *testing.T) {
	enc := NewEncoder(catalog.Builtin(), OrderInsertion)

	got, err := enc.Encode(catalog.FieldCrop, "Rice")
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	got, err = enc.Encode(catalog.FieldSeason, "Autumn")
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	assert.Equal(t, catalog.Builtin().Labels(catalog.FieldCrop), enc.Labels(catalog.FieldCrop))
}

func TestEncode_UnknownCategory(t *testing.T) {
	enc := NewEncoder(catalog.Builtin(), OrderSorted)

	tests := []struct {
		name  string
		field catalog.Field
		label string
	}{
		{"unknown crop", catalog.FieldCrop, "Cotton"},
		{"case mismatch", catalog.FieldCrop, "rice"},
		{"empty label", catalog.FieldSeason, ""},
		{"unknown location", catalog.FieldLocation, "Goa"},
		{"unknown field", catalog.Field("soil_type"), "Loam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.Encode(tt.field, tt.label)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownCategory))

			var uErr *UnknownCategoryError
			require.True(t, errors.As(err, &uErr))
			assert.Equal(t, tt.field, uErr.Field)
			assert.Equal(t, tt.label, uErr.Label)
			assert.False(t, uErr.IsTransient())
		})
	}
}

func TestEncodeSubLocation(t *testing.T) {
	enc := NewEncoder(catalog.Builtin(), OrderSorted)

	t.Run("nested sub-location", func(t *testing.T) {
		got, err := enc.EncodeSubLocation("Assam", "Barpeta")
		require.NoError(t, err)
		assert.Equal(t, 5, got)
	})

	t.Run("sub-location of another location", func(t *testing.T) {
		_, err := enc.EncodeSubLocation("Bihar", "Baksa")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidHierarchy))
		assert.False(t, errors.Is(err, ErrUnknownCategory))

		var hErr *InvalidHierarchyError
		require.True(t, errors.As(err, &hErr))
		assert.Equal(t, "Assam", hErr.Parent)
		assert.Contains(t, hErr.Error(), "Baksa")
	})

	t.Run("unknown sub-location", func(t *testing.T) {
		_, err := enc.EncodeSubLocation("Bihar", "Patna")
		assert.True(t, errors.Is(err, ErrUnknownCategory))
	})

	t.Run("unknown location", func(t *testing.T) {
		_, err := enc.EncodeSubLocation("Goa", "Baksa")
		var uErr *UnknownCategoryError
		require.True(t, errors.As(err, &uErr))
		assert.Equal(t, catalog.FieldLocation, uErr.Field)
	})
}

func TestEncodeSelection(t *testing.T) {
	enc := NewEncoder(catalog.Builtin(), OrderSorted)

	got, err := enc.EncodeSelection(Selection{
		Location:    "Andhra Pradesh",
		SubLocation: "GUNTUR",
		Season:      "Kharif",
		Crop:        "Rice",
	})
	require.NoError(t, err)
	assert.Equal(t, features.Categorical{Crop: 3, Location: 0, SubLocation: 11, Season: 1}, got)

	_, err = enc.EncodeSelection(Selection{
		Location:    "Delhi",
		SubLocation: "GUNTUR",
		Season:      "Kharif",
		Crop:        "Rice",
	})
	assert.True(t, errors.Is(err, ErrInvalidHierarchy))

	_, err = enc.EncodeSelection(Selection{
		Location:    "Delhi",
		SubLocation: "East Delhi",
		Season:      "Monsoon",
		Crop:        "Rice",
	})
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"", OrderSorted, false},
		{"sorted", OrderSorted, false},
		{"insertion", OrderInsertion, false},
		{"alphabetical", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrder(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOrder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFit_DropsDuplicates(t *testing.T) {
	tbl := Fit([]string{"b", "a", "b", "c"}, OrderInsertion)
	assert.Equal(t, []string{"b", "a", "c"}, tbl.Labels())
	assert.Equal(t, 3, tbl.Len())

	tbl = Fit([]string{"b", "a", "b", "c"}, OrderSorted)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Labels())
}
