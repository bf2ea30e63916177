package message

import (
	"mime"
	"net/url"
	"strings"
	"time"
)

// discreteOrCompositeTypes are the MIME top-level types RFC 2046 names,
// plus the "x-" extension prefix the RFC reserves for experimental types.
var discreteOrCompositeTypes = map[string]bool{
	"text":        true,
	"image":       true,
	"audio":       true,
	"video":       true,
	"application": true,
	"message":     true,
	"multipart":   true,
}

// IsURIReference reports whether s is a non-empty URI-reference per
// RFC 3986 §4.1: either an absolute URI or a relative reference. The
// cloudevents SDK performs the same net/url-based check internally when it
// validates the "source" attribute, which is why this model uses net/url
// rather than a regex.
func IsURIReference(s string) bool {
	if s == "" {
		return false
	}
	_, err := url.Parse(s)
	return err == nil
}

// IsAbsoluteURI reports whether s parses as a full (non-relative) URI —
// i.e. it carries a scheme.
func IsAbsoluteURI(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.IsAbs()
}

// IsRFC3339Time reports whether s is a valid RFC 3339 timestamp, rejecting
// impossible calendar dates (e.g. Feb 30) the way time.Parse already does.
func IsRFC3339Time(s string) bool {
	if s == "" {
		return false
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// IsMIMEType reports whether s is a "type/subtype[; param=value]" media
// type per RFC 2046, with the top-level type restricted to the
// discrete/composite set or an "x-" extension.
func IsMIMEType(s string) bool {
	if s == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(s)
	if err != nil {
		return false
	}
	top, _, ok := strings.Cut(mediaType, "/")
	if !ok {
		return false
	}
	if discreteOrCompositeTypes[top] {
		return true
	}
	return strings.HasPrefix(top, "x-")
}
