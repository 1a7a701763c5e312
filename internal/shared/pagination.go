package shared

import (
	"fmt"
	"strconv"
)

// DefaultLimit is used when the caller does not send a limit.
const DefaultLimit = 10

// Page holds offset based listing bounds.
type Page struct {
	Offset int
	Limit  int
}

// ParsePage reads offset/limit query values. Empty values fall back to
// 0 and DefaultLimit. Negative values are rejected; there is no upper cap.
func ParsePage(rawOffset, rawLimit string) (Page, error) {
	page := Page{Offset: 0, Limit: DefaultLimit}
	if rawOffset != "" {
		v, err := strconv.Atoi(rawOffset)
		if err != nil || v < 0 {
			return Page{}, fmt.Errorf("%w: offset must be a non-negative integer", ErrValidation)
		}
		page.Offset = v
	}
	if rawLimit != "" {
		v, err := strconv.Atoi(rawLimit)
		if err != nil || v < 0 {
			return Page{}, fmt.Errorf("%w: limit must be a non-negative integer", ErrValidation)
		}
		page.Limit = v
	}
	return page, nil
}
