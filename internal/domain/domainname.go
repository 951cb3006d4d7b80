package domain

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidDomainName = errors.New("invalid domain format")

// One or more labels of alphanumerics with internal hyphens (no
// leading/trailing hyphen, max 63 chars), dot separated, ending in a TLD of
// at least two letters.
var domainNameRegexp = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// NormalizeDomainName trims and lower-cases raw, then validates it against
// the hostname grammar. Pure; no network access.
func NormalizeDomainName(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if !domainNameRegexp.MatchString(name) {
		return "", ErrInvalidDomainName
	}
	return name, nil
}
