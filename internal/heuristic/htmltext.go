// Package heuristic - htmltext.go converts HTML fragments to readable plain
// text: list items become bullet lines, headings become section breaks,
// table cells become pipe-delimited fragments, entities are decoded by the
// parser, and whitespace is collapsed to at most one blank line.
package heuristic

import (
	"strings"

	"golang.org/x/net/html"
)

var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
	"head":     true,
	"title":    true,
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"ul": true, "ol": true, "table": true, "blockquote": true,
	"form": true, "fieldset": true, "main": true, "aside": true,
}

// HTMLToText renders an HTML string as normalized plain text.
func HTMLToText(htmlStr string) string {
	root, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return collapseWhitespace(htmlStr)
	}
	var sb strings.Builder
	renderNode(root, &sb)
	return collapseWhitespace(sb.String())
}

func renderNode(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return
	}

	tag := n.Data
	if n.Type == html.ElementNode {
		if skipTags[tag] {
			return
		}
		switch {
		case tag == "br":
			sb.WriteString("\n")
			return
		case headingTags[tag]:
			sb.WriteString("\n\n")
			sb.WriteString(inlineText(n))
			sb.WriteString("\n\n")
			return
		case tag == "li":
			sb.WriteString("\n- ")
			sb.WriteString(inlineText(n))
			return
		case tag == "tr":
			sb.WriteString("\n")
			sb.WriteString(rowText(n))
			return
		case blockTags[tag]:
			sb.WriteString("\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(c, sb)
	}

	if n.Type == html.ElementNode && blockTags[tag] {
		sb.WriteString("\n")
	}
}

// inlineText flattens an element's text, collapsing internal whitespace.
// Nested lists inside a list item are rendered inline; losing one level of
// nesting beats emitting broken indentation.
func inlineText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
			return
		}
		if node.Type == html.ElementNode && skipTags[node.Data] {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// rowText renders a table row as pipe-delimited cell text.
func rowText(n *html.Node) string {
	var cells []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "td" || node.Data == "th") {
			if text := inlineText(node); text != "" {
				cells = append(cells, text)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(cells, " | ")
}

// collapseWhitespace trims every line and squeezes runs of blank lines down
// to one.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blank := true // leading blanks are dropped
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
				blank = true
			}
			continue
		}
		out = append(out, strings.Join(strings.Fields(line), " "))
		blank = false
	}
	// Drop a trailing blank line.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
