package domain

import (
	"strings"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
)

// Slugify derives the URL slug of a profile name. Unicode letters, marks and
// decimal digits are kept as-is, so "Café Studio!" becomes "café-studio".
// Names with nothing left are transliterated, and as a last resort the
// profile id is used.
func Slugify(name string, id snowflake.ID) string {
	if s := unicodeSlug(name); s != "" {
		return s
	}
	if s := slug.Make(name); s != "" {
		return s
	}
	return "profile-" + id.String()
}

func unicodeSlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r == ' ':
			pendingHyphen = b.Len() > 0
		case r == '_' || unicode.IsLetter(r) || unicode.IsMark(r) || unicode.Is(unicode.Nd, r):
			if pendingHyphen {
				b.WriteByte('-')
				pendingHyphen = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
