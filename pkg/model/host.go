package model

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// hostPrefixes are stripped from the front of a normalized host.
var hostPrefixes = []string{"www.", "mobile.", "m."}

// NormalizedHost returns the lowercase, Unicode host of rawURL with a leading
// "www.", "mobile." or "m." removed. ok is false when rawURL has no host.
//
// Sites sharing a normalized host are one site for top sites and share a
// tile label.
func NormalizedHost(rawURL string) (host string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	host = strings.ToLower(u.Hostname())
	if uni, err := idna.ToUnicode(host); err == nil {
		host = uni
	}
	for _, p := range hostPrefixes {
		if strings.HasPrefix(host, p) {
			host = host[len(p):]
			break
		}
	}
	return host, true
}
