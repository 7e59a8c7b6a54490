// Package sanitizer вычищает персональные данные из текста резюме перед отправкой в LLM.
package sanitizer

import "strings"

type DataSanitizer struct {
	rules []SanitizerRule
}

type SanitizerRule interface {
	Sanitize(text string) string
}

// New собирает цепочку правил; порядок важен: ключи до карт, карты до телефонов.
func New() *DataSanitizer {
	return &DataSanitizer{
		rules: []SanitizerRule{
			&APIKeySanitizer{},
			&CardSanitizer{},
			&EmailSanitizer{},
			&PhoneSanitizer{},
		},
	}
}

func (s *DataSanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, rule := range s.rules {
		result = rule.Sanitize(result)
	}

	return result
}

// SanitizeLabel is applied to question labels before they are put into a prompt.
// Labels are short, so only the email and phone rules run.
func (s *DataSanitizer) SanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return label
	}
	return (&PhoneSanitizer{}).Sanitize((&EmailSanitizer{}).Sanitize(label))
}
