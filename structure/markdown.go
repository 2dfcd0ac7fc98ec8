package structure

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter creates the reusable, goroutine-safe converter used
// for the markdown output mode. The input is our own minimal HTML
// rendering, so the base plugin mostly has nothing to strip, but it keeps
// the conversion robust against stray noise.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// toMarkdown converts the minimal-HTML rendering to Markdown. domain, when
// non-empty, resolves relative link targets into absolute URLs.
func toMarkdown(conv *converter.Converter, htmlContent string, domain string) (string, error) {
	if domain == "" {
		return conv.ConvertString(htmlContent)
	}
	return conv.ConvertString(htmlContent, converter.WithDomain(domain))
}
