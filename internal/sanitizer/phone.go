package sanitizer

import "regexp"

// Date ranges such as "2019-2022" must survive: years of experience are inferred from them.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(phone|t[ée]l[ée]phone|tel\.?|mobile|gsm)\s*[:=]?\s*\+?[\d\s\-().]{7,}\d`),
	regexp.MustCompile(`\+\d{1,3}[\s.-]?\(?\d{1,4}\)?(?:[\s.-]?\d{2,4}){2,4}`),
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[\s.-]\d{4}`),
	regexp.MustCompile(`\b\d{3}[.-]\d{3}[.-]\d{4}\b`),
	regexp.MustCompile(`\b0\d(?:[\s.]\d{2}){4}\b`),
}

type PhoneSanitizer struct{}

func (s *PhoneSanitizer) Sanitize(text string) string {
	for _, pattern := range phonePatterns {
		text = pattern.ReplaceAllString(text, `[FILTERED_PHONE]`)
	}

	return text
}
