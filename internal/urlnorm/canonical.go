package urlnorm

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
)

// maxUnwrapDepth bounds redirector unwrapping; feed links nest at most
// one level in practice.
const maxUnwrapDepth = 3

// DefaultRedirectorHost is the feed's link redirector domain.
const DefaultRedirectorHost = "news.google.com"

var trackingQueryKeys = map[string]struct{}{
	"gclid":  {},
	"fbclid": {},
	"ref":    {},
}

// Canonicalize normalizes a raw article URL into a stable form suitable
// for deduplication: redirector wrapping unwrapped, tracking parameters
// stripped, host lower-cased, fragment dropped. The remaining query
// parameters keep their original order. Canonicalization never fails:
// anything that cannot be parsed is returned unchanged.
func Canonicalize(raw string) string {
	return canonicalize(strings.TrimSpace(raw), maxUnwrapDepth)
}

func canonicalize(raw string, depth int) string {
	if raw == "" {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return raw
	}

	query := parsed.Query()
	if depth > 0 && isRedirectorHost(parsed.Hostname()) {
		if inner := strings.TrimSpace(query.Get("url")); inner != "" {
			return canonicalize(inner, depth-1)
		}
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Hostname())
	if port := parsed.Port(); port != "" {
		host = host + ":" + port
	}
	parsed.Host = host
	parsed.Fragment = ""
	parsed.RawFragment = ""

	parsed.RawQuery = filterQuery(parsed.RawQuery)

	return parsed.String()
}

// filterQuery drops tracking parameters while preserving the original
// order of whatever remains. url.Values cannot be used here because its
// encoding sorts keys.
func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	kept := make([]string, 0, 4)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if idx := strings.IndexByte(pair, '='); idx >= 0 {
			key = pair[:idx]
		}
		decoded, err := url.QueryUnescape(key)
		if err != nil {
			decoded = key
		}
		if isTrackingKey(decoded) {
			continue
		}
		kept = append(kept, pair)
	}

	return strings.Join(kept, "&")
}

func isTrackingKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	if strings.HasPrefix(lower, "utm_") {
		return true
	}
	_, ok := trackingQueryKeys[lower]
	return ok
}

func isRedirectorHost(host string) bool {
	lower := strings.ToLower(host)
	return lower == DefaultRedirectorHost || strings.HasSuffix(lower, "."+DefaultRedirectorHost)
}

// ContentID derives the News identity key from a canonical URL: a
// deterministic 160-bit digest, hex-encoded.
func ContentID(canonical string) string {
	sum := sha1.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
