package answers

import (
	"regexp"
	"strings"
)

var (
	trailingQuestion = regexp.MustCompile(`\s*\?+\s*\*?\s*$`)
	conjunctions     = regexp.MustCompile(`(?i)\s+et/ou\s+|\s+and/or\s+|\s+and\s+|\s+or\s+|\s+et\s+|\s+ou\s+|,|/`)
	leadingArticle   = regexp.MustCompile(`(?i)^(des?|du|de la|les?|the|using|utilisant)\s+`)
	wordToken        = regexp.MustCompile(`[a-zA-Z0-9+#./]+`)
)

var skillSeparators = []string{" with ", " avec ", " using ", " utilisant ", " in "}

var skillStopWords = map[string]bool{
	"the": true, "and": true, "you": true, "have": true, "your": true, "avec": true,
	"experience": true, "expérience": true, "years": true, "années": true,
}

// SkillPhrases вытаскивает технологии из вопроса:
// "How many years of experience with Docker and/or Kubernetes?" -> [docker kubernetes].
func SkillPhrases(label string) []string {
	text := strings.TrimSpace(label)
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	src := text
	if len(lower) != len(text) {
		src = lower
	}

	rest, found := "", false
	for _, sep := range skillSeparators {
		idx := strings.Index(lower, sep)
		if idx < 0 {
			continue
		}
		rest = strings.TrimSpace(trailingQuestion.ReplaceAllString(strings.TrimSpace(src[idx+len(sep):]), ""))
		if len(rest) > 2 && len(rest) < 150 {
			found = true
			break
		}
	}
	if !found {
		rest = strings.TrimSpace(trailingQuestion.ReplaceAllString(text, ""))
	}

	if strings.Contains(rest, ":") {
		parts := strings.Split(rest, ":")
		after := strings.TrimSpace(parts[len(parts)-1])
		if len(after) > 2 && len(after) < 120 {
			rest = after
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, p := range conjunctions.Split(rest, -1) {
		p = leadingArticle.ReplaceAllString(strings.TrimSpace(p), "")
		p = strings.ToLower(strings.Trim(strings.TrimSpace(p), " .*"))
		if len(p) <= 1 || len(p) >= 60 || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}

	if len(out) == 0 && rest != "" {
		for _, w := range wordToken.FindAllString(rest, -1) {
			w = strings.ToLower(w)
			if len(w) > 2 && !skillStopWords[w] {
				out = append(out, w)
			}
		}
	}

	if len(out) > 15 {
		out = out[:15]
	}
	return out
}

// SkillMentioned reports whether any skill named in the question appears in
// the credential list or the CV text. A question with no extractable skill
// counts as mentioned.
func SkillMentioned(label, cvText string, credentials []string) bool {
	phrases := SkillPhrases(label)
	if len(phrases) == 0 {
		return true
	}

	for _, ph := range phrases {
		for _, c := range credentials {
			c = strings.ToLower(strings.TrimSpace(c))
			if c == "" {
				continue
			}
			if strings.Contains(ph, c) || strings.Contains(c, ph) {
				return true
			}
		}
	}

	cv := strings.ToLower(cvText)
	if strings.TrimSpace(cv) == "" {
		return false
	}
	compact := strings.ReplaceAll(cv, " ", "")
	for _, ph := range phrases {
		if strings.Contains(cv, ph) {
			return true
		}
		if len(ph) > 3 && strings.Contains(compact, strings.ReplaceAll(ph, " ", "")) {
			return true
		}
	}
	return false
}

// CertificationName returns the credential a certification/permit question asks about.
func CertificationName(label string) (string, bool) {
	lower := strings.ToLower(label)
	if !containsAny(lower, "certificat", "certification", "permit", "permis", "licence") {
		return "", false
	}
	if i := strings.Index(label, ":"); i >= 0 {
		after := strings.TrimSpace(trailingQuestion.ReplaceAllString(strings.TrimSpace(label[i+1:]), ""))
		al := strings.ToLower(after)
		if after != "" && len(after) < 80 &&
			!strings.HasPrefix(al, "avez") && !strings.HasPrefix(al, "do you") && !strings.HasPrefix(al, "have you") {
			return after, true
		}
	}
	if strings.Contains(lower, "certificat") {
		return strings.TrimSpace(label), true
	}
	return "", false
}

// HasCertification: первое слово названия ищется в CV, полное - в списке из конфига.
func HasCertification(name, cvText string, credentials []string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	key := strings.Fields(name)[0]
	if strings.Contains(strings.ToLower(cvText), key) {
		return true
	}
	for _, c := range credentials {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && (strings.Contains(name, c) || strings.Contains(c, key)) {
			return true
		}
	}
	return false
}
