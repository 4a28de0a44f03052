// Package catalog holds the closed categorical domains the yield model was trained on:
// locations, their sub-locations, seasons and crops. A Catalog is built once at
// startup, validated, and never mutated afterwards, so it can be shared freely
// between goroutines.
package catalog

import (
	"errors"
	"fmt"
)

// Field names one categorical input of the model.
type Field string

const (
	FieldLocation    Field = "location"
	FieldSubLocation Field = "sublocation"
	FieldSeason      Field = "season"
	FieldCrop        Field = "crop"
)

// Fields lists every categorical field in the order the catalog endpoint reports them.
var Fields = []Field{FieldLocation, FieldSubLocation, FieldSeason, FieldCrop}

// ErrInvalidCatalog is returned when a catalog definition breaks a structural invariant.
var ErrInvalidCatalog = errors.New("invalid catalog")

// LocationSpec is one top-level location with the sub-locations nested under it.
type LocationSpec struct {
	Name         string   `yaml:"name" json:"name"`
	SubLocations []string `yaml:"sublocations" json:"sublocations"`
}

// Spec is the serializable definition of a catalog. Order is significant:
// it is the insertion order used when encoding tables are fit in insertion mode.
type Spec struct {
	Locations []LocationSpec `yaml:"locations" json:"locations"`
	Seasons   []string       `yaml:"seasons" json:"seasons"`
	Crops     []string       `yaml:"crops" json:"crops"`
}

// Catalog is the validated, read-only form of a Spec.
type Catalog struct {
	spec        Spec
	domains     map[Field][]string
	members     map[Field]map[string]struct{}
	hierarchy   map[string][]string
	parentOfSub map[string]string
}

// New validates spec and builds a Catalog from a private copy of it.
func New(spec Spec) (*Catalog, error) {
	spec = spec.clone()

	c := &Catalog{
		spec:        spec,
		domains:     make(map[Field][]string, len(Fields)),
		members:     make(map[Field]map[string]struct{}, len(Fields)),
		hierarchy:   make(map[string][]string, len(spec.Locations)),
		parentOfSub: make(map[string]string),
	}

	if len(spec.Locations) == 0 {
		return nil, fmt.Errorf("%w: no locations defined", ErrInvalidCatalog)
	}

	var locations, subs []string
	for _, loc := range spec.Locations {
		if loc.Name == "" {
			return nil, fmt.Errorf("%w: location with empty name", ErrInvalidCatalog)
		}
		if _, dup := c.hierarchy[loc.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate location %q", ErrInvalidCatalog, loc.Name)
		}
		if len(loc.SubLocations) == 0 {
			return nil, fmt.Errorf("%w: location %q has no sub-locations", ErrInvalidCatalog, loc.Name)
		}

		for _, sub := range loc.SubLocations {
			if sub == "" {
				return nil, fmt.Errorf("%w: empty sub-location under %q", ErrInvalidCatalog, loc.Name)
			}
			if parent, dup := c.parentOfSub[sub]; dup {
				return nil, fmt.Errorf("%w: sub-location %q listed under both %q and %q",
					ErrInvalidCatalog, sub, parent, loc.Name)
			}
			c.parentOfSub[sub] = loc.Name
			subs = append(subs, sub)
		}

		c.hierarchy[loc.Name] = loc.SubLocations
		locations = append(locations, loc.Name)
	}

	c.domains[FieldLocation] = locations
	c.domains[FieldSubLocation] = subs
	c.domains[FieldSeason] = spec.Seasons
	c.domains[FieldCrop] = spec.Crops

	for _, f := range Fields {
		labels := c.domains[f]
		if len(labels) == 0 {
			return nil, fmt.Errorf("%w: %s domain is empty", ErrInvalidCatalog, f)
		}

		set := make(map[string]struct{}, len(labels))
		for _, label := range labels {
			if label == "" {
				return nil, fmt.Errorf("%w: empty label in %s domain", ErrInvalidCatalog, f)
			}
			if _, dup := set[label]; dup {
				return nil, fmt.Errorf("%w: duplicate label %q in %s domain", ErrInvalidCatalog, label, f)
			}
			set[label] = struct{}{}
		}
		c.members[f] = set
	}

	return c, nil
}

// Labels returns the labels of a field in definition order. The slice is a copy.
func (c *Catalog) Labels(f Field) []string {
	return append([]string(nil), c.domains[f]...)
}

// Has reports whether label is a member of the field's domain.
func (c *Catalog) Has(f Field, label string) bool {
	_, ok := c.members[f][label]
	return ok
}

// SubLocations returns the sub-locations nested under location, in definition order.
func (c *Catalog) SubLocations(location string) ([]string, bool) {
	subs, ok := c.hierarchy[location]
	if !ok {
		return nil, false
	}
	return append([]string(nil), subs...), true
}

// LocationOf returns the location a sub-location belongs to.
func (c *Catalog) LocationOf(sublocation string) (string, bool) {
	loc, ok := c.parentOfSub[sublocation]
	return loc, ok
}

// Spec returns a copy of the definition the catalog was built from.
func (c *Catalog) Spec() Spec {
	return c.spec.clone()
}

func (s Spec) clone() Spec {
	out := Spec{
		Locations: make([]LocationSpec, len(s.Locations)),
		Seasons:   append([]string(nil), s.Seasons...),
		Crops:     append([]string(nil), s.Crops...),
	}
	for i, loc := range s.Locations {
		out.Locations[i] = LocationSpec{
			Name:         loc.Name,
			SubLocations: append([]string(nil), loc.SubLocations...),
		}
	}
	return out
}
