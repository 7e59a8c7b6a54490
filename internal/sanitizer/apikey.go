package sanitizer

import "regexp"

var apiKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|api[_-]?secret|api[_-]?token)\s*[:=]\s*["']?([a-zA-Z0-9_-]{20,})["']?`),
	regexp.MustCompile(`(?i)(secret[_-]?key|access[_-]?token)\s*[:=]\s*["']?([a-zA-Z0-9_-]{20,})["']?`),
	regexp.MustCompile(`\b(AIza)[0-9A-Za-z_-]{30,}`),
	regexp.MustCompile(`\b(gsk_)[0-9A-Za-z]{20,}`),
}

type APIKeySanitizer struct{}

func (s *APIKeySanitizer) Sanitize(text string) string {
	for _, pattern := range apiKeyPatterns {
		text = pattern.ReplaceAllString(text, `${1}: [FILTERED]`)
	}

	return text
}
