package util

import (
	"regexp"
	"strings"
)

var (
	reSpaces    = regexp.MustCompile(`\s+`)
	reNonSlug   = regexp.MustCompile(`[^a-z0-9]+`)
	reHasLetter = regexp.MustCompile(`[A-Za-z]`)
)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// Slugify builds a URL handle from a title and a unique id. Runs of
// non-alphanumerics collapse to single hyphens; the id is always appended so
// handles stay unique even for identical titles.
func Slugify(title, id string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = reNonSlug.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return id
	}
	if id == "" {
		return slug
	}
	return slug + "-" + id
}

// FirstWord returns the first whitespace-delimited token of input.
func FirstWord(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func HasLetter(input string) bool {
	return reHasLetter.MatchString(input)
}
