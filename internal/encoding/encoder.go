// Package encoding maps categorical labels to the integer indices the yield model
// was trained with. Lookups never fall back to a default index: an unknown label
// would otherwise be silently fed to the model as some other category.
package encoding

import (
	"yield-advisor/internal/catalog"
	"yield-advisor/internal/features"
)

// Encoder holds one fitted Table per categorical field. It is immutable.
type Encoder struct {
	catalog *catalog.Catalog
	order   Order
	tables  map[catalog.Field]*Table
}

// NewEncoder fits a table for every catalog field. The sub-location table is fit
// over all sub-locations of all locations, matching the training-time encoder.
func NewEncoder(c *catalog.Catalog, order Order) *Encoder {
	e := &Encoder{
		catalog: c,
		order:   order,
		tables:  make(map[catalog.Field]*Table, len(catalog.Fields)),
	}
	for _, f := range catalog.Fields {
		e.tables[f] = Fit(c.Labels(f), order)
	}
	return e
}

// Order returns the index assignment mode the tables were fit with.
func (e *Encoder) Order() Order {
	return e.order
}

// Catalog returns the catalog the encoder was fit from.
func (e *Encoder) Catalog() *catalog.Catalog {
	return e.catalog
}

// Encode returns the index of label within field's domain.
func (e *Encoder) Encode(field catalog.Field, label string) (int, error) {
	t, ok := e.tables[field]
	if !ok {
		return 0, &UnknownCategoryError{Field: field, Label: label}
	}
	i, ok := t.Index(label)
	if !ok {
		return 0, &UnknownCategoryError{Field: field, Label: label}
	}
	return i, nil
}

// EncodeSubLocation encodes sublocation after checking it is nested under location.
// A sub-location that exists under a different location is an InvalidHierarchyError.
func (e *Encoder) EncodeSubLocation(location, sublocation string) (int, error) {
	if !e.catalog.Has(catalog.FieldLocation, location) {
		return 0, &UnknownCategoryError{Field: catalog.FieldLocation, Label: location}
	}

	parent, known := e.catalog.LocationOf(sublocation)
	if !known {
		return 0, &UnknownCategoryError{Field: catalog.FieldSubLocation, Label: sublocation}
	}
	if parent != location {
		return 0, &InvalidHierarchyError{Location: location, SubLocation: sublocation, Parent: parent}
	}

	return e.Encode(catalog.FieldSubLocation, sublocation)
}

// Selection is one set of categorical choices.
type Selection struct {
	Location    string `json:"location"`
	SubLocation string `json:"sublocation"`
	Season      string `json:"season"`
	Crop        string `json:"crop"`
}

// EncodeSelection encodes all four fields. The first failure is returned.
func (e *Encoder) EncodeSelection(sel Selection) (features.Categorical, error) {
	var out features.Categorical
	var err error

	if out.Location, err = e.Encode(catalog.FieldLocation, sel.Location); err != nil {
		return out, err
	}
	if out.SubLocation, err = e.EncodeSubLocation(sel.Location, sel.SubLocation); err != nil {
		return out, err
	}
	if out.Season, err = e.Encode(catalog.FieldSeason, sel.Season); err != nil {
		return out, err
	}
	if out.Crop, err = e.Encode(catalog.FieldCrop, sel.Crop); err != nil {
		return out, err
	}

	return out, nil
}

// Labels returns a field's labels ordered by index, or nil for an unknown field.
func (e *Encoder) Labels(field catalog.Field) []string {
	t, ok := e.tables[field]
	if !ok {
		return nil
	}
	return t.Labels()
}
