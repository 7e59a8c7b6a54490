package answers

import (
	"regexp"
	"strings"
)

const (
	YearsCore  = 4
	YearsStack = 3
	YearsOther = 2
	YearsTotal = 3
)

// Основной язык.
var tierCore = []string{"java", "core java", "java se", "jvm"}

// Стек, с которым кандидат работал регулярно.
var tierStack = []string{
	"spring", "spring boot", "springboot",
	"postgres", "postgresql", "mysql",
	"websocket", "web socket", "webservices", "web services",
	"rest api", "restapis", "restful",
	"react", "angular", "angular ui", "ui integration",
	"mockito", "unit test", "unittesting", "junit",
	"agile", "scrum", "agile/scrum",
	"microservices", "docker", "ci/cd", "git",
	"nestjs", "typescript",
	"ejb", "enterprise javabeans",
	"data structures", "keycloak", "rbac",
	"graphql", "graph ql", "ruby", "banking",
}

var yesNoExperiencePatterns = compileAll(
	`do you have .* experience`,
	`do you have experience`,
	`do you have (at least|an understanding of)`,
	`have you (worked|used|experience)`,
	`are you (experienced|familiar)`,
	`experience with .*\?`,
	`experience (programming|using|with)`,
	`avez-vous .* expérience`,
	`oui ou non`,
	`yes or no`,
	`yes/no`,
)

var spaces = regexp.MustCompile(`\s+`)

func normalize(label string) string {
	return spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), " ")
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

func matchAny(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// YearsFor returns the tiered year count for a years-of-experience label.
// Tiers are checked core → stack → other; "total" phrasing wins over all.
func YearsFor(label string) (int, bool) {
	text := normalize(label)
	if text == "" || !containsAny(text, "year", "année", "expérience", "experience") {
		return 0, false
	}
	if strings.Contains(text, "total") && containsAny(text, "year", "experience") {
		return YearsTotal, true
	}
	if containsAny(text, tierCore...) {
		return YearsCore, true
	}
	if containsAny(text, tierStack...) {
		return YearsStack, true
	}
	if containsAny(text, "year", "experience") {
		return YearsOther, true
	}
	return 0, false
}

// IsYesNoExperience: "how many ... years" всегда означает число, а не да/нет.
func IsYesNoExperience(label string) bool {
	text := normalize(label)
	if text == "" {
		return false
	}
	if strings.Contains(text, "how many") && strings.Contains(text, "years") {
		return false
	}
	return matchAny(yesNoExperiencePatterns, text)
}

func YesNoForExperience(label string) (string, bool) {
	if !IsYesNoExperience(label) {
		return "", false
	}
	years, ok := YearsFor(label)
	if !ok {
		years = YearsOther
	}
	if years > 0 {
		return "Yes", true
	}
	return "No", true
}
