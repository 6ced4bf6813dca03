package fetch

import (
	"strings"

	"drivegate/internal/config"
)

// Interstitial reports whether a candidate looks like an error/consent page
// served in place of content: an HTML-declared type with a payload under the
// size ceiling. The heuristic is a pragmatic proxy and occasionally wrong —
// a legitimately small HTML deliverable is misclassified, and an oversized
// interstitial passes. No stronger upstream signal exists.
func Interstitial(cand *Candidate) bool {
	return isHTMLType(cand.ContentType) && cand.Length < config.InterstitialCeiling
}

// Acceptable classifies a candidate as genuine content. Large payloads are
// deliberately accepted even when mislabeled, since legitimate downloads can
// carry a generic declared type.
func Acceptable(cand *Candidate) bool {
	if Interstitial(cand) {
		return false
	}
	return cand.Status >= 200 && cand.Status < 300
}

func isHTMLType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}
