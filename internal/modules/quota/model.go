package quota

import "errors"

// ErrInsufficientTokens is returned when a caller has no requests left for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of model requests granted per month.
const DefaultTokens = 100

// monthLayout keys the lazy monthly reset.
const monthLayout = "2006-01"
