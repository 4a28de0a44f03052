// Package features assembles the fixed-order numeric vector the yield model consumes.
//
// The order is a versioned contract with the predictor. A mismatch does not fail,
// it silently produces wrong predictions, so Version must change whenever FieldOrder does.
package features

import (
	"errors"
	"fmt"
)

// Version identifies the FieldOrder contract sent to the predictor.
const Version = "v1"

// Width is the number of values in a Vector.
const Width = 8

const (
	numericArity     = 4
	categoricalArity = 4
)

// FieldOrder names each position of a Vector.
var FieldOrder = [Width]string{
	"temperature",
	"humidity",
	"soil_moisture",
	"area",
	"crop_index",
	"location_index",
	"sublocation_index",
	"season_index",
}

// ErrMalformedInput is matched by every MalformedInputError.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError reports an arity or index problem found while assembling.
type MalformedInputError struct {
	Part    string
	Message string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s input: %s", e.Part, e.Message)
}

// Is makes errors.Is(err, ErrMalformedInput) hold.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// IsTransient returns false as malformed input never succeeds on retry
func (e *MalformedInputError) IsTransient() bool {
	return false
}

// Readings are the raw environmental and plot values of one request.
type Readings struct {
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	SoilMoisture float64 `json:"soil_moisture"`
	Area         float64 `json:"area"`
}

// Numeric returns the readings in vector order.
func (r Readings) Numeric() []float64 {
	return []float64{r.Temperature, r.Humidity, r.SoilMoisture, r.Area}
}

// Categorical holds encoded indices of the four categorical fields.
type Categorical struct {
	Crop        int `json:"crop"`
	Location    int `json:"location"`
	SubLocation int `json:"sublocation"`
	Season      int `json:"season"`
}

// Indices returns the encoded indices in vector order.
func (c Categorical) Indices() []int {
	return []int{c.Crop, c.Location, c.SubLocation, c.Season}
}

// Vector is the model input. Its length and order never vary for a given Version.
type Vector [Width]float64

// Slice returns the vector as a freshly allocated slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Width)
	copy(out, v[:])
	return out
}

// Named pairs each value with its field name, for logging and responses.
func (v Vector) Named() map[string]float64 {
	out := make(map[string]float64, Width)
	for i, name := range FieldOrder {
		out[name] = v[i]
	}
	return out
}

// Assemble orders numeric readings and categorical indices into a Vector.
// Range checks on the readings are the caller's job.
func Assemble(numeric []float64, categorical []int) (Vector, error) {
	var v Vector

	if len(numeric) != numericArity {
		return v, &MalformedInputError{
			Part:    "numeric",
			Message: fmt.Sprintf("expected %d values, got %d", numericArity, len(numeric)),
		}
	}
	if len(categorical) != categoricalArity {
		return v, &MalformedInputError{
			Part:    "categorical",
			Message: fmt.Sprintf("expected %d indices, got %d", categoricalArity, len(categorical)),
		}
	}

	for i, idx := range categorical {
		if idx < 0 {
			return v, &MalformedInputError{
				Part:    "categorical",
				Message: fmt.Sprintf("%s is negative (%d)", FieldOrder[numericArity+i], idx),
			}
		}
	}

	copy(v[:numericArity], numeric)
	for i, idx := range categorical {
		v[numericArity+i] = float64(idx)
	}

	return v, nil
}

// AssembleFrom is Assemble over typed inputs.
func AssembleFrom(r Readings, c Categorical) (Vector, error) {
	return Assemble(r.Numeric(), c.Indices())
}
