package youtube

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds Slug output, in runes.
const MaxSlugLength = 60

// Slug turns a video title into a lowercase, hyphen-separated file name.
// Accents are folded away and anything other than letters, digits and
// underscores is dropped. Slugs longer than MaxSlugLength are cut back to
// the last whole word. It returns "" when nothing usable remains.
func Slug(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingHyphen = true
		}
	}

	slug := []rune(b.String())
	if len(slug) <= MaxSlugLength {
		return string(slug)
	}
	cut := string(slug[:MaxSlugLength])
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return cut
}
