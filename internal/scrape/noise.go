package scrape

import (
	"regexp"
	"strings"
)

// noiseMarkers flag where LinkedIn chrome begins in extracted innerText.
// The footer cluster is "About" immediately followed by a footer link, so a
// profile's own "About" heading never matches.
var noiseMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^About\n(?:Accessibility|Talent Solutions)`),
	regexp.MustCompile(`(?m)^More profiles for you`),
	regexp.MustCompile(`(?m)^People also viewed`),
	regexp.MustCompile(`(?m)^Explore premium profiles`),
	regexp.MustCompile(`(?m)^You've approached your profile search limit`),
}

// StripNoise truncates raw page text at the earliest noise marker and trims
// whitespace. Text without any marker is returned trimmed.
func StripNoise(raw string) string {
	cut := len(raw)
	for _, re := range noiseMarkers {
		if loc := re.FindStringIndex(raw); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return strings.TrimSpace(raw[:cut])
}
