package utils

import (
	"fmt"
	"strconv"
)

// ParseID parses a positive numeric path parameter such as :id
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}
