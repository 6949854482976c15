package resolver

import (
	"regexp"
	"strings"
)

var (
	trailingDigitsRe = regexp.MustCompile(`[0-9]+$`)
	segmentSplitRe   = regexp.MustCompile(`[._\-]`)
)

// genericLocalParts are role words that make a useless display name on
// their own ("Dear Support," reads wrong). Multi-segment local-parts
// are kept even when one segment is generic.
var genericLocalParts = map[string]struct{}{
	"contact": {},
	"info":    {},
	"support": {},
	"admin":   {},
	"hr":      {},
	"sales":   {},
	"hello":   {},
}

// extractNameFromEmail derives a best-guess display name from an address
// local-part: strip trailing digits, split on dot/underscore/hyphen,
// title-case each segment, join with spaces.
// "john.doe123@co.com" → "John Doe"; "support@co.com" → "".
func extractNameFromEmail(email string) string {
	localPart, _, found := strings.Cut(email, "@")
	if !found || localPart == "" {
		return ""
	}

	localPart = trailingDigitsRe.ReplaceAllString(localPart, "")
	if localPart == "" {
		return ""
	}

	segments := segmentSplitRe.Split(localPart, -1)

	if len(segments) == 1 {
		if _, generic := genericLocalParts[strings.ToLower(segments[0])]; generic {
			return ""
		}
	}

	var parts []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(seg[:1])+seg[1:])
	}
	return strings.Join(parts, " ")
}
