package boeparser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// identifierQueryParams are checked in order on the canonical URL.
var identifierQueryParams = []string{"id", "idSub"}

// DeriveIdentifier picks the listing identifier: the inline token, then a
// canonical URL path segment that fully matches the identifier pattern, then
// the id or idSub query parameter, then RAW-<raw id>.
func DeriveIdentifier(inline, canonicalURL *string, rawID int64, pattern *regexp.Regexp) string {
	if inline != nil {
		if v := strings.TrimSpace(*inline); v != "" {
			return v
		}
	}

	if canonicalURL != nil {
		if u, err := url.Parse(strings.TrimSpace(*canonicalURL)); err == nil {
			for _, segment := range strings.Split(u.Path, "/") {
				if segment != "" && pattern.MatchString(segment) {
					return segment
				}
			}
			query := u.Query()
			for _, name := range identifierQueryParams {
				if v := strings.TrimSpace(query.Get(name)); v != "" {
					return v
				}
			}
		}
	}

	return "RAW-" + strconv.FormatInt(rawID, 10)
}
