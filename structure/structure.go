// Package structure converts raw rendered markup into a compact,
// semantically tagged document suitable for downstream text analysis.
//
// One recursive traversal classifies every DOM node (heading, text, list,
// link, table, container or ignored) and hands the extracted content to a
// pluggable renderer. The text and HTML renderings share the identical
// traversal and differ only in how fragments are written out.
package structure

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/serpscout/serpscout/models"
)

// Mode selects the fragment rendering.
type Mode string

const (
	// ModeText renders fragments as annotated plain text (tag label prefixes).
	ModeText Mode = "text"
	// ModeHTML re-wraps extracted content in a minimal semantic HTML subset.
	ModeHTML Mode = "html"
	// ModeMarkdown converts the HTML rendering to Markdown.
	ModeMarkdown Mode = "markdown"
)

// Structurer owns the reusable Markdown converter. Safe for concurrent use.
type Structurer struct {
	mdConverter *converter.Converter
}

// New initialises a Structurer.
func New() *Structurer {
	return &Structurer{mdConverter: newMarkdownConverter()}
}

// Extract parses rawHTML, traverses the document body and returns the
// normalized structured document in the requested mode. sourceURL is used
// to absolutize links when converting to Markdown; it may be empty.
func (s *Structurer) Extract(rawHTML string, mode Mode, sourceURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeExtraction, "failed to parse markup", err)
	}

	var r renderer
	switch mode {
	case ModeHTML, ModeMarkdown:
		r = htmlRenderer{}
	default:
		r = textRenderer{}
	}

	var frags []string
	for _, body := range doc.Find("body").Nodes {
		for child := body.FirstChild; child != nil; child = child.NextSibling {
			visit(child, r, &frags)
		}
	}

	out := Normalize(strings.Join(frags, ""))

	if mode == ModeMarkdown {
		md, err := toMarkdown(s.mdConverter, out, sourceURL)
		if err != nil {
			return "", models.NewScrapeError(models.ErrCodeExtraction, "markdown conversion failed", err)
		}
		return strings.TrimSpace(md), nil
	}

	return out, nil
}

// headingLevels maps heading tags to their level.
var headingLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// relevantTags are the categories a link must not be nested inside to be
// emitted standalone; a link under any of these already had its text
// captured by the ancestor's extraction.
var relevantTags = map[string]struct{}{
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"p": {}, "blockquote": {}, "span": {},
	"ul": {}, "ol": {}, "li": {},
	"a":     {},
	"table": {}, "tr": {}, "td": {}, "th": {},
}

// visit classifies one node and either emits a fragment, prunes the
// subtree, or recurses into children.
func visit(n *html.Node, r renderer, frags *[]string) {
	if n.Type == html.CommentNode {
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	tag := n.Data
	switch {
	case tag == "script" || tag == "style" || tag == "img":
		// Ignored: the whole subtree is pruned.
		return

	case headingLevels[tag] > 0:
		if text := nodeText(n); text != "" {
			*frags = append(*frags, r.Heading(headingLevels[tag], text))
		}

	case tag == "p":
		if text := nodeText(n); text != "" {
			*frags = append(*frags, r.Paragraph(text))
		}

	case tag == "blockquote":
		if text := nodeText(n); text != "" {
			*frags = append(*frags, r.Quote(text))
		}

	case tag == "span":
		// A span under a paragraph or quote anywhere in its ancestor
		// chain was already captured by that ancestor's text.
		if hasAncestor(n, "p", "blockquote") {
			return
		}
		if text := nodeText(n); text != "" {
			*frags = append(*frags, r.Span(text))
		}

	case tag == "ul" || tag == "ol":
		*frags = append(*frags, r.List(collectList(n)))

	case tag == "a":
		if hasAncestorIn(n, relevantTags) {
			return
		}
		href := attr(n, "href")
		text := nodeText(n)
		if text == "" || href == "" || strings.HasPrefix(href, "#") {
			return
		}
		*frags = append(*frags, r.Link(text, href))

	case tag == "table":
		if rows := collectRows(n); len(rows) > 0 {
			*frags = append(*frags, r.Table(rows))
		}

	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child, r, frags)
		}
	}
}

// listData is the traversal's view of one list: ordered/unordered plus the
// items, each of which may carry sublists one level deeper. Nesting beyond
// two levels is not modeled; a depth-2 item's text simply includes whatever
// deeper content it contains.
type listData struct {
	ordered bool
	items   []listItem
}

type listItem struct {
	text string
	subs []listData
}

// collectList gathers the direct li children of a ul/ol, separating each
// item's own text from its nested sublists so nested items get their own
// indented markers instead of being flattened into the parent item.
func collectList(n *html.Node) listData {
	l := listData{ordered: n.Data == "ol"}

	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}

		item := listItem{text: ownText(li)}
		for sub := li.FirstChild; sub != nil; sub = sub.NextSibling {
			if sub.Type != html.ElementNode || (sub.Data != "ul" && sub.Data != "ol") {
				continue
			}
			subList := listData{ordered: sub.Data == "ol"}
			for subLi := sub.FirstChild; subLi != nil; subLi = subLi.NextSibling {
				if subLi.Type != html.ElementNode || subLi.Data != "li" {
					continue
				}
				subList.items = append(subList.items, listItem{text: nodeText(subLi)})
			}
			item.subs = append(item.subs, subList)
		}
		l.items = append(l.items, item)
	}

	return l
}

// collectRows gathers cell texts per tr, skipping rows with no non-empty cell.
func collectRows(table *html.Node) [][]string {
	var rows [][]string
	for _, tr := range descendants(table, "tr") {
		var cells []string
		hasContent := false
		for _, cell := range descendants(tr, "td", "th") {
			text := nodeText(cell)
			if text != "" {
				hasContent = true
			}
			cells = append(cells, text)
		}
		if hasContent {
			rows = append(rows, cells)
		}
	}
	return rows
}

// --- node helpers ---

// nodeText returns the collapsed, trimmed text content of a subtree,
// skipping script and style content.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb, nil)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// ownText is nodeText with nested lists excluded, so a list item's text
// does not swallow its sublists.
func ownText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb, map[string]struct{}{"ul": {}, "ol": {}})
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(n *html.Node, sb *strings.Builder, skip map[string]struct{}) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	if n.Type == html.ElementNode {
		if n.Data == "script" || n.Data == "style" {
			return
		}
		if skip != nil {
			if _, skipped := skip[n.Data]; skipped {
				return
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb, skip)
	}
}

// hasAncestor walks the full parent chain looking for any of the tags.
func hasAncestor(n *html.Node, tags ...string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		for _, tag := range tags {
			if p.Data == tag {
				return true
			}
		}
	}
	return false
}

// hasAncestorIn walks the full parent chain against a tag set.
func hasAncestorIn(n *html.Node, tags map[string]struct{}) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if _, ok := tags[p.Data]; ok {
			return true
		}
	}
	return false
}

// descendants collects all descendant elements with any of the given tags.
func descendants(n *html.Node, tags ...string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode {
				for _, tag := range tags {
					if child.Data == tag {
						out = append(out, child)
						break
					}
				}
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
