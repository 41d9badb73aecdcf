package relaves

import (
	"fmt"

	"github.com/go-opt/relaves/lpo"
)

// MissingParameterError reports a required parameter, or one entry of a
// required table, that is absent. Index is empty for scalars.
type MissingParameterError struct {
	Key   string
	Index []int
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter %s", lpo.ColName(e.Key, e.Index...))
}

// InvalidDimensionError reports a dimension (T, M or K) that is not a
// positive integer.
type InvalidDimensionError struct {
	Key   string
	Value float64
}

func (e *InvalidDimensionError) Error() string {
	return fmt.Sprintf("invalid dimension %s = %g, must be a positive integer", e.Key, e.Value)
}

// InvalidParameterError reports a parameter whose value is out of its domain.
type InvalidParameterError struct {
	Key    string
	Index  []int
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s = %g: %s", lpo.ColName(e.Key, e.Index...), e.Value, e.Reason)
}
