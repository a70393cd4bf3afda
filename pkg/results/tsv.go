package results

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TSVFromHTML serialises the first table found in markup: cells of a row are
// joined by a tab and every row, the header row included, ends with a
// newline. Rows without cells are skipped.
func TSVFromHTML(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("results: parse table: %w", err)
	}

	table := findFirst(doc, atom.Table)
	if table == nil {
		return "", nil
	}

	var out strings.Builder
	walk(table, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Tr {
			return true
		}
		cells := make([]string, 0, 8)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
				cells = append(cells, textContent(c))
			}
		}
		if len(cells) > 0 {
			out.WriteString(strings.Join(cells, "\t"))
			out.WriteByte('\n')
		}
		return false
	})
	return out.String(), nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(n, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if node.Type == html.ElementNode && node.DataAtom == a {
			found = node
			return false
		}
		return true
	})
	return found
}

// walk visits n depth-first; visit returns false to skip the children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		return true
	})
	return b.String()
}
