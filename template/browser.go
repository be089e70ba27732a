package template

import (
	"strconv"
	"strings"
)

// browserTokens are User-Agent substrings that identify a real browser
// engine. Matching requires "mozilla" plus one of these.
var browserTokens = []string{
	"chrome",
	"safari",
	"firefox",
	"edge",
	"opera",
	"brave",
	"webkit",
}

// apiClientTokens are User-Agent substrings of common programmatic
// clients. Any of these overrides a browser match.
var apiClientTokens = []string{
	"curl",
	"wget",
	"python-requests",
	"go-http-client",
	"java/",
	"okhttp",
	"httpie",
	"postman",
	"insomnia",
}

// IsBrowserRequest classifies a request as browser or API from its
// User-Agent and Accept headers. It is a pure function and total over all
// inputs: an absent header classifies as API, since a missing User-Agent
// is atypical for browsers.
//
// Browser requires both signals: a browser User-Agent (browser token, no
// API-client token) and an Accept header that admits HTML. An explicit
// JSON preference without an HTML one classifies as API regardless of
// the User-Agent.
func IsBrowserRequest(userAgent, accept string) bool {
	if accept == "" || !hasBrowserUA(userAgent) {
		return false
	}

	htmlPriority := AcceptPriority(accept, "text/html")
	jsonPriority := AcceptPriority(accept, "application/json")

	if jsonPriority > 0.5 && htmlPriority < 0.3 {
		return false
	}
	return htmlPriority > 0
}

// hasBrowserUA reports whether the User-Agent names a browser and not a
// programmatic client.
func hasBrowserUA(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)

	if !strings.Contains(ua, "mozilla") {
		return false
	}
	hasBrowser := false
	for _, token := range browserTokens {
		if strings.Contains(ua, token) {
			hasBrowser = true
			break
		}
	}
	if !hasBrowser {
		return false
	}
	for _, token := range apiClientTokens {
		if strings.Contains(ua, token) {
			return false
		}
	}
	return !strings.HasPrefix(ua, "rest-client") && !strings.HasPrefix(ua, "http")
}

// AcceptPriority returns the RFC 7231 quality value the Accept header
// assigns to mediaType, falling back to a `*/*` entry when the type is
// not listed. Malformed or out-of-range q-values clamp to [0, 1]; an
// unmatched type yields 0.
func AcceptPriority(accept, mediaType string) float64 {
	wildcard := -1.0

	for _, part := range strings.Split(accept, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		name := strings.TrimSpace(fields[0])
		if name == "" {
			continue
		}

		q := 1.0
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if !strings.HasPrefix(param, "q=") {
				continue
			}
			parsed, err := strconv.ParseFloat(param[2:], 64)
			if err != nil {
				q = 0
				break
			}
			q = min(max(parsed, 0), 1)
		}

		if strings.EqualFold(name, mediaType) {
			return q
		}
		if name == "*/*" && q > wildcard {
			wildcard = q
		}
	}

	if wildcard >= 0 {
		return wildcard
	}
	return 0
}
