package sanitizer

import "regexp"

var cardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
	regexp.MustCompile(`(?i)(card[_-]?number|num[ée]ro[_ -]de[_ -]carte)\s*[:=]\s*["']?(\d{13,19})["']?`),
}

type CardSanitizer struct{}

func (s *CardSanitizer) Sanitize(text string) string {
	for _, pattern := range cardPatterns {
		text = pattern.ReplaceAllString(text, `[FILTERED]`)
	}

	return text
}
