package analytics

import "errors"

var ErrInvalidPeriod = errors.New("period must be between 1 and 365 days")
