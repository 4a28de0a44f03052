package encoding

import (
	"errors"
	"fmt"

	"yield-advisor/internal/catalog"
)

var (
	// ErrUnknownCategory is matched by every UnknownCategoryError.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidHierarchy is matched by every InvalidHierarchyError.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")
)

// UnknownCategoryError reports a label outside its configured domain,
// or a field the encoder has no table for.
type UnknownCategoryError struct {
	Field catalog.Field
	Label string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Label)
}

// Is makes errors.Is(err, ErrUnknownCategory) hold.
func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// IsTransient returns false: the caller sent a value outside the domain
func (e *UnknownCategoryError) IsTransient() bool {
	return false
}

// InvalidHierarchyError reports a sub-location that is not nested under the selected location.
type InvalidHierarchyError struct {
	Location    string
	SubLocation string
	// Parent is the location the sub-location actually belongs to, empty if none.
	Parent string
}

func (e *InvalidHierarchyError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("sublocation %q belongs to %q, not %q", e.SubLocation, e.Parent, e.Location)
	}
	return fmt.Sprintf("sublocation %q is not part of %q", e.SubLocation, e.Location)
}

// Is makes errors.Is(err, ErrInvalidHierarchy) hold.
func (e *InvalidHierarchyError) Is(target error) bool {
	return target == ErrInvalidHierarchy
}

// IsTransient returns false as hierarchy violations are permanent
func (e *InvalidHierarchyError) IsTransient() bool {
	return false
}
