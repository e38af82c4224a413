// internal/utils/image.go
package utils

import (
	"strings"
)

// Base64Size reports the decoded byte size of a base64 string without
// decoding it. Data-URL prefixes ("data:image/png;base64,") are ignored, and
// plain URL references are cheap enough to measure the same way.
func Base64Size(s string) int64 {
	if idx := strings.Index(s, ","); idx != -1 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}
	padding := int64(strings.Count(s, "="))
	return int64(len(s))*3/4 - padding
}
