// Package profiles - extract.go applies a profile's selector table to a
// parsed document.
package profiles

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// descriptionFloor is the minimum character length for a selector match to
// count as a description. Below it a match is treated as a teaser snippet
// and extraction keeps looking.
const descriptionFloor = 120

// ErrParse is returned when the HTML cannot be parsed at all.
var ErrParse = fmt.Errorf("failed to parse HTML")

// Extraction is the partial result of applying a profile. Empty fields mean
// the profile's selectors found nothing; callers decide whether the result
// clears their acceptance threshold.
type Extraction struct {
	SiteID       string
	Title        string
	Company      string
	Location     string
	Salary       string
	Description  string
	Requirements []string
}

// Fields returns the non-empty structured fields as a map.
func (e *Extraction) Fields() map[string]string {
	fields := make(map[string]string)
	if e.Title != "" {
		fields["title"] = e.Title
	}
	if e.Company != "" {
		fields["company"] = e.Company
	}
	if e.Location != "" {
		fields["location"] = e.Location
	}
	if e.Salary != "" {
		fields["salary"] = e.Salary
	}
	return fields
}

// Text assembles the extraction into plain text suitable for downstream
// parsing: header fields first, then the description body.
func (e *Extraction) Text() string {
	var sb strings.Builder
	if e.Title != "" {
		sb.WriteString(e.Title + "\n")
	}
	if e.Company != "" {
		sb.WriteString(e.Company + "\n")
	}
	if e.Location != "" {
		sb.WriteString(e.Location + "\n")
	}
	if e.Salary != "" {
		sb.WriteString(e.Salary + "\n")
	}
	if sb.Len() > 0 && e.Description != "" {
		sb.WriteString("\n")
	}
	sb.WriteString(e.Description)
	for _, req := range e.Requirements {
		sb.WriteString("\n- " + req)
	}
	return strings.TrimSpace(sb.String())
}

// Extract parses html and applies the profile's selector table. Selectors
// are tried in priority order per field, first non-empty match wins. For the
// description, every selector's matches are considered and the longest
// concatenated text above the length floor wins, so a short teaser block
// never shadows the full body.
func (p *Profile) Extract(html string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	doc.Find("script, style, noscript, nav, header, footer").Remove()
	if len(p.Noise) > 0 {
		doc.Find(strings.Join(p.Noise, ", ")).Remove()
	}

	result := &Extraction{
		SiteID:   p.ID,
		Title:    firstMatch(doc, p.Selectors.Title),
		Company:  firstMatch(doc, p.Selectors.Company),
		Location: firstMatch(doc, p.Selectors.Location),
		Salary:   firstMatch(doc, p.Selectors.Salary),
	}

	result.Description = longestMatch(doc, p.Selectors.Description)

	for _, selector := range p.Selectors.Requirements {
		doc.Find(selector).Find("li").Each(func(_ int, s *goquery.Selection) {
			if item := collapse(s.Text()); item != "" {
				result.Requirements = append(result.Requirements, item)
			}
		})
		if len(result.Requirements) > 0 {
			break
		}
	}

	return result, nil
}

// firstMatch returns the first selector's first non-empty match.
func firstMatch(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			// Company logos carry the name in alt text rather than
			// element text.
			if goquery.NodeName(s) == "img" {
				if alt, ok := s.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
					found = collapse(alt)
					return false
				}
				return true
			}
			if text := collapse(s.Text()); text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// longestMatch concatenates per-selector match text and returns the longest
// candidate above the description floor. Falls back to the longest overall
// when nothing clears the floor.
func longestMatch(doc *goquery.Document, selectors []string) string {
	var best string
	for _, selector := range selectors {
		var parts []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if text := normalizeBlock(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		candidate := strings.TrimSpace(strings.Join(parts, "\n\n"))
		if len(candidate) >= descriptionFloor {
			return candidate
		}
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	return best
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// normalizeBlock keeps line structure but trims each line and drops blanks.
func normalizeBlock(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
