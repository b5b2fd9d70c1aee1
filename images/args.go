package images

import (
	"math"

	"github.com/tsawler/pageblocks/model"
)

// MatrixFromArgs converts transform operator arguments into a matrix.
// Arguments may be six numbers or a single numeric slice or matrix.
// Missing or non-numeric slots take their identity value.
func MatrixFromArgs(args []any) model.Matrix {
	if len(args) == 1 {
		switch v := args[0].(type) {
		case model.Matrix:
			return model.MatrixFrom(v[:])
		case [6]float64:
			return model.MatrixFrom(v[:])
		case []float64:
			return model.MatrixFrom(v)
		case []any:
			return MatrixFromArgs(v)
		}
	}

	values := make([]float64, len(args))
	for i, arg := range args {
		values[i] = toFloat(arg)
	}
	return model.MatrixFrom(values)
}

// toFloat converts a numeric operand to float64, or NaN when it is not a
// number.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case uint32:
		return float64(n)
	default:
		return math.NaN()
	}
}
