package ocr

import "golang.org/x/text/language"

var (
	tesseractCodes = map[language.Base]string{}
	paddleCodes    = map[language.Base]string{}
)

func init() {
	for tag, codes := range map[string][2]string{
		"en": {"eng", "en"},
		"de": {"deu", "german"},
		"fr": {"fra", "fr"},
		"es": {"spa", "es"},
		"it": {"ita", "it"},
		"pt": {"por", "pt"},
		"ru": {"rus", "ru"},
		"ja": {"jpn", "japan"},
		"ko": {"kor", "korean"},
		"zh": {"chi_sim", "ch"},
		"vi": {"vie", "vi"},
	} {
		base, _ := language.MustParse(tag).Base()
		tesseractCodes[base] = codes[0]
		paddleCodes[base] = codes[1]
	}
}

func lookup(codes map[language.Base]string, tag, fallback string) string {
	if tag == "" {
		return fallback
	}
	t, err := language.Parse(tag)
	if err != nil {
		return fallback
	}
	base, _ := t.Base()
	if code, ok := codes[base]; ok {
		return code
	}
	return fallback
}

func tesseractLanguage(tag string) string {
	return lookup(tesseractCodes, tag, "eng")
}

func paddleLanguage(tag string) string {
	return lookup(paddleCodes, tag, "en")
}
