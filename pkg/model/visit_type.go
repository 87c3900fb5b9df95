package model

import (
	"fmt"
	"strings"
)

// VisitType classifies how a navigation happened.
type VisitType int

const (
	VisitUnknown VisitType = iota
	VisitLink
	VisitTyped
	VisitBookmark
	VisitEmbed
	VisitPermanentRedirect
	VisitTemporaryRedirect
	VisitDownload
	VisitFramedLink
	VisitReload
)

var visitTypeNames = [...]string{
	VisitUnknown:           "unknown",
	VisitLink:              "link",
	VisitTyped:             "typed",
	VisitBookmark:          "bookmark",
	VisitEmbed:             "embed",
	VisitPermanentRedirect: "permanent_redirect",
	VisitTemporaryRedirect: "temporary_redirect",
	VisitDownload:          "download",
	VisitFramedLink:        "framed_link",
	VisitReload:            "reload",
}

// String returns the lowercase name used in JSON and the database.
func (v VisitType) String() string {
	if v < 0 || int(v) >= len(visitTypeNames) {
		return visitTypeNames[VisitUnknown]
	}
	return visitTypeNames[v]
}

// IsValid reports whether v is one of the declared visit types.
func (v VisitType) IsValid() bool {
	return v >= VisitUnknown && int(v) < len(visitTypeNames)
}

// ParseVisitType parses a visit type name. Matching is case-insensitive.
func ParseVisitType(s string) (VisitType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return VisitLink, nil
	}
	for i, name := range visitTypeNames {
		if name == s {
			return VisitType(i), nil
		}
	}
	return VisitUnknown, fmt.Errorf("unknown visit type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (v VisitType) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *VisitType) UnmarshalText(b []byte) error {
	parsed, err := ParseVisitType(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
