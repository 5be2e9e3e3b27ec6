package domain

import "strings"

// localeExemptPrefixes are path prefixes that never receive a locale
// prefix: framework assets, the reserved API prefix, well-known
// metadata, the admin console and a fixed set of locale-agnostic
// account/checkout paths.
var localeExemptPrefixes = []string{
	"/_next",
	APIPrefix,
	"/.well-known",
	"/admin",
	"/login",
	"/logout",
	"/account",
	"/checkout",
}

// wellKnownRootFiles are served from the site root regardless of locale.
var wellKnownRootFiles = map[string]struct{}{
	"/favicon.ico":          {},
	"/robots.txt":           {},
	"/sitemap.xml":          {},
	"/manifest.webmanifest": {},
}

// BypassesLocalePrefix reports whether path is exempt from the locale
// prefix requirement. Final segments containing a dot are treated as
// static assets by convention.
func BypassesLocalePrefix(path string) bool {
	if _, ok := wellKnownRootFiles[path]; ok {
		return true
	}
	for _, prefix := range localeExemptPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	if i := strings.LastIndexByte(path, '/'); i != -1 && strings.Contains(path[i+1:], ".") {
		return true
	}
	return false
}

// HasLocalePrefix reports whether the first path segment is exactly two
// alphabetic characters, e.g. "/en/products".
func HasLocalePrefix(path string) bool {
	trimmed := strings.TrimPrefix(path, "/")
	seg := trimmed
	if i := strings.IndexByte(trimmed, '/'); i != -1 {
		seg = trimmed[:i]
	}
	if len(seg) != 2 {
		return false
	}
	return isAlpha(seg[0]) && isAlpha(seg[1])
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// AddLocalePrefix prepends "/" + lowercased locale to path. The root
// path maps to "/<locale>" with no trailing slash.
func AddLocalePrefix(path, locale string) string {
	locale = strings.ToLower(locale)
	if path == "" || path == "/" {
		return "/" + locale
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "/" + locale + path
}
