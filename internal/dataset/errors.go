package dataset

import (
	"errors"

	"shipping-price-pipeline/internal/core/domain"
)

var (
	errMissingColumn = domain.ErrMissingColumn
	errNotEnoughRows = domain.ErrNotEnoughRows
	errRaggedRow     = errors.New("row width does not match header")
)
