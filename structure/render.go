package structure

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// renderer turns extracted content into fragments. Implementations must not
// re-trim or re-classify; the traversal owns those decisions.
type renderer interface {
	Heading(level int, text string) string
	Paragraph(text string) string
	Quote(text string) string
	Span(text string) string
	Link(text, href string) string
	List(l listData) string
	Table(rows [][]string) string
}

// textRenderer produces the annotated plain-text form: each fragment is
// prefixed with a label naming what it was in the source document.
type textRenderer struct{}

func (textRenderer) Heading(level int, text string) string {
	return "\n\nH" + strconv.Itoa(level) + ": " + text
}

func (textRenderer) Paragraph(text string) string {
	return "\n" + text
}

func (textRenderer) Quote(text string) string {
	return "\n\nQuote: \"" + text + "\""
}

func (textRenderer) Span(text string) string {
	return "\n" + text
}

func (textRenderer) Link(text, href string) string {
	return "\nLink: " + text + " (" + href + ")"
}

// List renders "• " / "1. " markers for top-level items and the distinct
// "◦ " / "1) " markers for second-level items. Markers carry the nesting
// distinction because normalization strips leading indentation from every
// line. The leading blank line is emitted even for an empty list so list
// boundaries stay visible in the text form.
func (textRenderer) List(l listData) string {
	var sb strings.Builder
	sb.WriteString("\n")

	num := 1
	for _, item := range l.items {
		if item.text != "" {
			sb.WriteString("\n" + marker(l.ordered, num) + item.text)
			num++
		}
		for _, sub := range item.subs {
			subNum := 1
			for _, subItem := range sub.items {
				if subItem.text == "" {
					continue
				}
				sb.WriteString("\n   " + subMarker(sub.ordered, subNum) + subItem.text)
				subNum++
			}
		}
	}

	return sb.String()
}

func marker(ordered bool, n int) string {
	if ordered {
		return strconv.Itoa(n) + ". "
	}
	return "• "
}

func subMarker(ordered bool, n int) string {
	if ordered {
		return strconv.Itoa(n) + ") "
	}
	return "◦ "
}

func (textRenderer) Table(rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("\n\nTable:")
	for _, row := range rows {
		sb.WriteString("\n" + strings.Join(row, " | "))
	}
	return sb.String()
}

// htmlRenderer re-wraps extracted content in a minimal semantic HTML
// subset. Text is escaped; nothing from the source markup survives except
// the tag identity.
type htmlRenderer struct{}

func (htmlRenderer) Heading(level int, text string) string {
	tag := "h" + strconv.Itoa(level)
	return "\n<" + tag + ">" + html.EscapeString(text) + "</" + tag + ">"
}

func (htmlRenderer) Paragraph(text string) string {
	return "\n<p>" + html.EscapeString(text) + "</p>"
}

func (htmlRenderer) Quote(text string) string {
	return "\n<blockquote>" + html.EscapeString(text) + "</blockquote>"
}

func (htmlRenderer) Span(text string) string {
	return "\n<span>" + html.EscapeString(text) + "</span>"
}

func (htmlRenderer) Link(text, href string) string {
	return fmt.Sprintf("\n<a href=%q>%s</a>", href, html.EscapeString(text))
}

// List emits nested <ul>/<ol> markup. Unlike the text form, lists and
// sublists with no non-empty items are dropped entirely: an empty <ul></ul>
// is dead weight in markup meant to be re-parsed.
func (r htmlRenderer) List(l listData) string {
	var items []string
	for _, item := range l.items {
		var sb strings.Builder
		if item.text != "" {
			sb.WriteString(html.EscapeString(item.text))
		}
		for _, sub := range item.subs {
			if rendered := r.List(sub); rendered != "" {
				sb.WriteString(rendered)
			}
		}
		if sb.Len() == 0 {
			continue
		}
		items = append(items, "<li>"+sb.String()+"</li>")
	}
	if len(items) == 0 {
		return ""
	}

	tag := "ul"
	if l.ordered {
		tag = "ol"
	}
	return "\n<" + tag + ">\n" + strings.Join(items, "\n") + "\n</" + tag + ">"
}

func (htmlRenderer) Table(rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("\n<table>")
	for _, row := range rows {
		sb.WriteString("\n<tr>")
		for _, cell := range row {
			sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("\n</table>")
	return sb.String()
}
