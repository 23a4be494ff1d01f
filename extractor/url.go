package extractor

import (
	"errors"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/use-agent/gpd-enhance/models"
)

var (
	errNotAbsolute = errors.New("not an absolute URL")
	errBadHost     = errors.New("invalid host")
)

var reScheme = regexp.MustCompile(`(?i)^(?:f|ht)tps?://`)

// reHostLabel matches one DNS label: alphanumerics and inner hyphens, max 63.
var reHostLabel = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// NormalizeURL prepends http:// when raw carries none of the accepted
// schemes. It is a prefix check, not a parse.
func NormalizeURL(raw string) string {
	if reScheme.MatchString(raw) {
		return raw
	}
	return "http://" + raw
}

// ValidateURL checks that u is an absolute URL with a scheme and a host
// that is either a hostname or an IP literal.
func ValidateURL(u string) (*url.URL, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" || parsed.Opaque != "" {
		return nil, &url.Error{Op: "validate", URL: u, Err: errNotAbsolute}
	}
	if !validHost(parsed.Hostname()) {
		return nil, &url.Error{Op: "validate", URL: u, Err: errBadHost}
	}
	if port := parsed.Port(); port != "" && strings.Trim(port, "0123456789") != "" {
		return nil, &url.Error{Op: "validate", URL: u, Err: errBadHost}
	}
	return parsed, nil
}

func validHost(host string) bool {
	if host == "" || len(host) > 253 {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	for _, label := range strings.Split(strings.TrimSuffix(host, "."), ".") {
		if !reHostLabel.MatchString(label) {
			return false
		}
	}
	return true
}

// resolveTarget applies normalization and validation, returning the URL to fetch.
func resolveTarget(raw string) (string, error) {
	if raw == "" {
		return "", models.NewScrapeError(models.ErrCodeConfigMissing,
			"Website URL is not set for this listing.", nil)
	}

	normalized := NormalizeURL(raw)
	parsed, err := ValidateURL(normalized)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeInvalidURL,
			"Invalid website URL format after attempting to normalize: "+raw, err)
	}
	return parsed.String(), nil
}
