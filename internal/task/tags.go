package task

import (
	"regexp"
	"strings"
)

// tagPattern matches #word tokens, allowing Unicode letters and digits plus
// underscore and hyphen.
var tagPattern = regexp.MustCompile(`#[\p{L}\p{N}_-]+`)

// ExtractTags returns the lowercased #tags found in text, deduplicated in
// order of first appearance. It never returns nil.
func ExtractTags(text string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, m := range tagPattern.FindAllString(text, -1) {
		tag := strings.ToLower(m)
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}
