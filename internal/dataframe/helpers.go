package dataframe

import (
	"math"
	"strconv"

	"github.com/dovahcrow/factor-expr/internal/errors"
)

var nanValue = math.NaN()

func errColumnNotFound(name string) error {
	return errors.NewSchemaError(name)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
