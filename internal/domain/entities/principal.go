package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Principal identifies the account a message comes from.
type Principal string

// ParsePrincipal accepts a decimal account id and returns its canonical form
// ("0042" -> "42").
func ParsePrincipal(raw string) (Principal, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid principal %q: %w", raw, err)
	}
	return Principal(strconv.FormatInt(id, 10)), nil
}
