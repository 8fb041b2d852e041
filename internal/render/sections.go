// Package render - sections.go pulls titled sections out of a rendered DOM.
// Rendered job pages tend to use headings ("Responsibilities", "What you'll
// do") over lists, so a heading scan recovers structure the generic text
// dump flattens away.
package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sectionAliases map heading phrasings to canonical section names.
var sectionAliases = map[string][]string{
	"responsibilities": {
		"responsibilities", "what you'll do", "what you will do",
		"your role", "the role", "duties", "day to day",
	},
	"qualifications": {
		"qualifications", "requirements", "what we're looking for",
		"what we are looking for", "who you are", "about you",
		"skills", "must have", "nice to have",
	},
}

const headingSelector = "h1, h2, h3, h4, h5, strong, b"

// Sections scans a rendered document for responsibility and qualification
// sections. Keys are canonical names; values are the bullet items found
// under the matching heading.
func Sections(doc *goquery.Document) map[string][]string {
	sections := make(map[string][]string)

	doc.Find(headingSelector).Each(func(_ int, heading *goquery.Selection) {
		name := canonicalSection(heading.Text())
		if name == "" {
			return
		}

		items := itemsAfterHeading(heading)
		if len(items) > 0 && len(sections[name]) == 0 {
			sections[name] = items
		}
	})

	return sections
}

func canonicalSection(headingText string) string {
	normalized := strings.ToLower(strings.TrimSpace(headingText))
	normalized = strings.TrimSuffix(normalized, ":")
	if normalized == "" || len(normalized) > 60 {
		return ""
	}
	for name, aliases := range sectionAliases {
		for _, alias := range aliases {
			if strings.Contains(normalized, alias) {
				return name
			}
		}
	}
	return ""
}

// itemsAfterHeading collects list items between a heading and the next
// heading at any level. It checks siblings first, then climbs one level
// for markup that wraps the heading in its own container.
func itemsAfterHeading(heading *goquery.Selection) []string {
	if items := itemsFromSiblings(heading); len(items) > 0 {
		return items
	}
	parent := heading.Parent()
	if parent.Length() == 0 {
		return nil
	}
	return itemsFromSiblings(parent)
}

func itemsFromSiblings(start *goquery.Selection) []string {
	var items []string
	for sibling := start.Next(); sibling.Length() > 0; sibling = sibling.Next() {
		if sibling.Is(headingSelector) || sibling.Find(headingSelector).Length() > 0 {
			break
		}
		sibling.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := strings.TrimSpace(li.Text()); text != "" {
				items = append(items, text)
			}
		})
		if sibling.Is("li") {
			if text := strings.TrimSpace(sibling.Text()); text != "" {
				items = append(items, text)
			}
		}
	}
	return items
}
