package fetcher

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// findByClass returns the first element carrying the given class.
func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key != "class" {
				continue
			}
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

// findElement returns the first descendant element with the given tag.
func findElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// textByParagraph renders the node's text with blank lines between
// block-level elements, the shape the delivered messages use. Nodes for
// which skip returns true are left out entirely.
func textByParagraph(root *html.Node, skip func(*html.Node) bool) string {
	var paras []string
	var cur strings.Builder

	flush := func() {
		p := strings.Join(strings.Fields(cur.String()), " ")
		if p != "" {
			paras = append(paras, p)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if skip != nil && skip(n) {
			return
		}
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br":
				flush()
				return
			}
			block := isBlock(n.Data)
			if block {
				flush()
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if block {
				flush()
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	flush()

	return strings.Join(paras, "\n\n")
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "ul", "ol", "li",
		"h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "figure", "table", "tr":
		return true
	}
	return false
}

// extractClassText parses an HTML page and renders the text of the first
// element with the given class.
func extractClassText(body []byte, class string) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	node := findByClass(doc, class)
	if node == nil {
		return "", fmt.Errorf("page has no %q element", class)
	}
	return textByParagraph(node, nil), nil
}
