package parity

import (
	"net/url"
	"path"
	"strings"
)

// NormalizeURI reduces benign textual variation in a resolved-file URI:
// scheme and host case, the number of slashes after "file:", an explicit
// localhost authority, dot segments and trailing slashes. Userinfo, query and
// fragment are kept, and an opaque "file:" path stays relative.
// Strings that do not parse as URIs are returned trimmed.
func NormalizeURI(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return strings.TrimRight(s, "/")
	}

	scheme := strings.ToLower(u.Scheme)
	if u.Opaque != "" {
		// file:repo/x.jar names a relative path
		return scheme + ":" + path.Clean(u.Opaque) + uriSuffix(u)
	}

	host := strings.ToLower(u.Host)
	if u.User != nil {
		host = u.User.String() + "@" + host
	}

	p := cleanPath(u.Path)
	if scheme == "file" {
		if host == "localhost" {
			host = ""
		}
		return "file://" + host + p + uriSuffix(u)
	}

	if p == "/" {
		p = ""
	}
	return scheme + "://" + host + p + uriSuffix(u)
}

func uriSuffix(u *url.URL) string {
	var out string
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		out += "#" + u.EscapedFragment()
	}
	return out
}

// urisEqual compares two URIs under the given tolerance
func urisEqual(a, b string, tolerance URITolerance) bool {
	if tolerance == URIToleranceStrict {
		return a == b
	}
	return NormalizeURI(a) == NormalizeURI(b)
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
