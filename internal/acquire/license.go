package acquire

import (
	"regexp"
	"strings"
)

var reCCBy = regexp.MustCompile(`^CC BY(\s+\d+(\.\d+)?)?$`)

// ValidLicense reports whether a LicenseShortName is on the allow-list:
// CC0, public domain, or plain CC BY with an optional version. Hyphens count
// as spaces and case is ignored, so "cc-by-4.0" passes while CC BY-SA does
// not.
func ValidLicense(license string) bool {
	n := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(license), "-", " "))
	return n == "CC0" || n == "PUBLIC DOMAIN" || reCCBy.MatchString(n)
}
