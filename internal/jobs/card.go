package jobs

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Card - то, что видно о вакансии в левом списке.
type Card struct {
	ID       string
	Title    string
	Company  string
	Location string
}

var (
	titleSelectors    = []string{".job-card-list__title", ".job-card-container__link strong", ".artdeco-entity-lockup__title", "a.job-card-container__link", "strong"}
	companySelectors  = []string{".job-card-container__primary-description", ".artdeco-entity-lockup__subtitle", ".job-card-container__company-name"}
	locationSelectors = []string{".job-card-container__metadata-item", ".artdeco-entity-lockup__caption", ".job-card-container__metadata-wrapper li"}
)

// ParseCard extracts id, title, company and location from a card's outer HTML.
func ParseCard(html string) (Card, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Card{}, fmt.Errorf("разбор карточки: %w", err)
	}

	var c Card
	for _, attr := range []string{"data-job-id", "data-occludable-job-id"} {
		if id, ok := doc.Find("[" + attr + "]").First().Attr(attr); ok && strings.TrimSpace(id) != "" {
			c.ID = strings.TrimSpace(id)
			break
		}
	}

	c.Title = firstText(doc, titleSelectors)
	if c.Title == "" {
		if label, ok := doc.Find("a[aria-label]").First().Attr("aria-label"); ok {
			c.Title = collapse(label)
		}
	}
	c.Company = firstText(doc, companySelectors)
	c.Location = firstText(doc, locationSelectors)
	return c, nil
}

// String is the short form used in logs and the journal.
func (c Card) String() string {
	switch {
	case c.Title != "" && c.Company != "":
		return c.Title + " @ " + c.Company
	case c.Title != "":
		return c.Title
	case c.ID != "":
		return "#" + c.ID
	}
	return "?"
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if t := collapse(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// collapse убирает переводы строк и повторы пробелов.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
