package answers

import (
	"strings"

	"easyApply/internal/config"
)

// Гражданство, резидентство, право на работу.
var workAuthPatterns = compileAll(
	`citizenship`,
	`citizen of`,
	`authorized to work`,
	`legally (eligible|authorized) to work`,
	`right to work`,
	`resid(e|ency) in`,
	`currently (live|reside)`,
	`work (permit|authorization|visa)`,
	`citoyenneté`,
	`autorisé à travailler`,
	`résidence`,
	`work in (canada|usa|united states|uk|france)`,
)

// Нужна ли визовая поддержка (sponsorship / parrainage).
var sponsorshipPatterns = compileAll(
	`require.*sponsorship`,
	`need.*sponsorship`,
	`do you (need|require) sponsorship`,
	`sponsorship (required|needed)`,
	`sponsorship.*(employment)?.*visa`,
	`visa.*sponsorship`,
	`will you .* require sponsorship`,
	`sponsorship for employment visa`,
	`parrainage.*(immigration|autorisation|travail)`,
	`aur(ez|ez-vous).*parrainage`,
)

var authCountries = []string{"canada", "usa", "united states", "uk", "france", "germany", "maroc", "morocco"}

// IsSponsorshipQuestion reports sponsorship / visa phrasing in English or French.
func IsSponsorshipQuestion(label string) bool {
	text := normalize(label)
	if text == "" {
		return false
	}
	if matchAny(sponsorshipPatterns, text) {
		return true
	}
	if strings.Contains(text, "sponsorship") && containsAny(text, "require", "need", "future") {
		return true
	}
	if strings.Contains(text, "visa") && strings.Contains(text, "sponsorship") {
		return true
	}
	return strings.Contains(text, "parrainage") && containsAny(text, "immigration", "autorisation", "travail", "aurez")
}

// IsWorkAuthorizationQuestion reports citizenship, residency or right-to-work phrasing.
// country is the configured authorization country and is matched like the built-in list.
func IsWorkAuthorizationQuestion(label, country string) bool {
	text := normalize(label)
	if text == "" {
		return false
	}
	if matchAny(workAuthPatterns, text) {
		return true
	}
	topical := containsAny(text, "work", "authorized", "citizen", "resid")
	if !topical {
		return false
	}
	if containsAny(text, authCountries...) {
		return true
	}
	country = strings.ToLower(strings.TrimSpace(country))
	return country != "" && strings.Contains(text, country)
}

// AuthorizationAnswer - жёсткое правило: спонсорство проверяется первым,
// затем право на работу. Ни CV, ни LLM его не переопределяют.
func AuthorizationAnswer(label string, policy config.Policy) (string, bool) {
	if IsSponsorshipQuestion(label) {
		return policy.NeedSponsorship, true
	}
	if IsWorkAuthorizationQuestion(label, policy.AuthorizationCountry) {
		return policy.WorkAuthorization, true
	}
	return "", false
}
