package listing

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var reWhitespace = regexp.MustCompile(`[\r\n\t ]+`)

// SanitizeText strips markup, collapses all whitespace runs (line breaks
// included) into one space and trims. Used for single-line fields.
func SanitizeText(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(stripTags(s), " "))
}

// SanitizeTextarea strips markup and trims but keeps line breaks.
func SanitizeTextarea(s string) string {
	return strings.TrimSpace(stripTags(s))
}

// stripTags drops invalid UTF-8, tags, and the contents of script and style
// elements. Entities come back decoded.
func stripTags(s string) string {
	s = strings.ToValidUTF8(s, "")
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var buf strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
			}
		case html.StartTagToken:
			if tn, _ := z.TagName(); isRawTextTag(tn) {
				skip++
			}
		case html.EndTagToken:
			if tn, _ := z.TagName(); isRawTextTag(tn) && skip > 0 {
				skip--
			}
		}
	}
}

func isRawTextTag(tn []byte) bool {
	tag := string(tn)
	return tag == "script" || tag == "style"
}
