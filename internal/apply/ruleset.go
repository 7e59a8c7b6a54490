package apply

import "strings"

// Ruleset holds the selectors and phrases that describe the application dialog.
type Ruleset struct {
	Modal     string
	ModalID   string
	Next      string
	Verify    string
	Confirm   string
	Typeahead string
	Invalid   string

	Submit   []string
	Discard  []string
	Dismiss  []string
	Overlays []string

	ValidationPhrases []string
}

func DefaultRuleset() Ruleset {
	return Ruleset{
		Modal:     "[data-test-modal], .jobs-easy-apply-modal, [role='dialog'], .jobs-easy-apply-content",
		ModalID:   "[data-test-modal-id='easy-apply-modal']",
		Next:      "button:has-text('Suivant'), button:has-text('Next'), button[aria-label*='Next']",
		Verify:    "button:has-text('Vérifier'), button:has-text('Verify'), button:has-text('Review')",
		Confirm:   "button:has-text('Terminé'), button:has-text('OK'), button:has-text('Fermer'), button:has-text('Done'), button:has-text('Fermer la fenêtre'), button[aria-label*='Fermer'], button[aria-label*='Close']",
		Typeahead: "[role='option'], .artdeco-typeahead-item",
		Invalid:   "[aria-invalid='true']",
		Submit: []string{
			"button:has-text('Envoyer la candidature')",
			"button:has-text('Send application')",
			"button:has-text('Soumettre')",
			"button:has-text('Submit')",
			"button:has-text('Envoyer')",
			"[role='button']:has-text('Envoyer la candidature')",
			"[role='button']:has-text('Send application')",
			"a:has-text('Envoyer la candidature')",
			"a:has-text('Send application')",
			".artdeco-button:has-text('Envoyer la candidature')",
			".artdeco-button:has-text('Send application')",
		},
		Discard: []string{
			"button:has-text('Supprimer')",
			"button:has-text('Discard')",
			"button:has-text('Delete')",
			"button:has-text('Ne pas enregistrer')",
			`button:has-text("Don't save")`,
		},
		Dismiss: []string{
			".artdeco-modal__dismiss",
			"button[aria-label*='Fermer']",
			"button[aria-label*='Close']",
			"[data-test-modal] button[aria-label*='Fermer']",
			"[data-test-modal] button[aria-label*='Close']",
			"button[data-test-modal-id] button",
		},
		Overlays: []string{
			".artdeco-modal-overlay",
			"#artdeco-modal-outlet .artdeco-modal-overlay",
			"[data-test-modal]",
			"[data-test-modal-id='easy-apply-modal']",
			"#artdeco-modal-outlet .artdeco-modal-overlay, #artdeco-modal-outlet [role='dialog']",
		},
		ValidationPhrases: []string{
			"enter a decimal number larger than 0.0",
			"enter a whole number between 0 and 99",
			"please enter a valid",
			"veuillez saisir une réponse valable",
			"veuillez saisir",
			"valid response",
			"réponse valable",
			"this field is required",
			"ce champ est obligatoire",
		},
	}
}

// Within ограничивает селектор поиском внутри окна подачи.
func (r Ruleset) Within(selector string) string {
	return r.Modal + " >> " + selector
}

// HasValidationPhrase проверяет текст окна на сообщения об ошибках (EN/FR).
func (r Ruleset) HasValidationPhrase(text string) bool {
	text = strings.ToLower(text)
	for _, p := range r.ValidationPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

var (
	consentKeywords    = []string{"consent", "i consent", "agree", "privacy", "declare", "read and understand", "approve", "accept", "authorize"}
	ratingFieldWords   = []string{"frontend", "backend", "microservice", "microservices", "api", "database", "devops", "fullstack", "mobile", "cloud", "security", "testing", "data"}
	locationWords      = []string{"montreal", "quebec", "situé", "eligible", "déménager", "relocat", "relocation", "province", "full time", "located", "work full time"}
	relocationWords    = []string{"relocat", "déménager", "open to"}
	backgroundWords    = []string{"criminal background", "background check", "employment verification", "reference check", "education check", "agree to partake"}
	selectPlaceholders = []string{"select an option", "choose", "sélectionnez une option", "sélectionner une option"}
	legalStatusChoices = []string{"No status", "Other", "Open Work Visa"}
)
