// Package embedded - microdata.go recovers JobPosting records marked up
// with schema.org microdata attributes.
package embedded

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func mineMicrodata(doc *goquery.Document) *Candidate {
	var found *Posting
	doc.Find(`[itemtype]`).EachWithBreak(func(_ int, scope *goquery.Selection) bool {
		itemtype, _ := scope.Attr("itemtype")
		if !strings.Contains(itemtype, "JobPosting") {
			return true
		}
		posting := postingFromScope(scope)
		if posting != nil {
			found = posting
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return &Candidate{Source: "microdata", Confidence: ConfidenceMicrodata, Posting: *found}
}

func postingFromScope(scope *goquery.Selection) *Posting {
	posting := &Posting{
		Title:          itemprop(scope, "title"),
		Company:        itemprop(scope, "hiringOrganization", "name"),
		Location:       itemprop(scope, "jobLocation", "addressLocality"),
		Salary:         itemprop(scope, "baseSalary"),
		EmploymentType: itemprop(scope, "employmentType"),
		Description:    itemprop(scope, "description"),
	}
	if posting.Location == "" {
		posting.Location = itemprop(scope, "jobLocation")
	}
	if posting.Company == "" {
		posting.Company = itemprop(scope, "hiringOrganization")
	}
	if posting.Empty() {
		return nil
	}
	return posting
}

// itemprop resolves a chain of itemprop names inside a scope and returns
// the final element's text (or content/value attribute when present, as
// meta-style microdata prefers).
func itemprop(scope *goquery.Selection, names ...string) string {
	current := scope
	for _, name := range names {
		current = current.Find(`[itemprop="` + name + `"]`)
		if current.Length() == 0 {
			return ""
		}
		current = current.First()
	}
	if content, ok := current.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	return strings.Join(strings.Fields(current.Text()), " ")
}
