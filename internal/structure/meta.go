package structure

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

// Meta is what a page contributes to the sidebar.
type Meta struct {
	Title  string
	Icon   string
	Order  int
	Hidden bool
}

type frontMatter struct {
	Title string `yaml:"title"`
	Icon  string `yaml:"icon"`
	Order int    `yaml:"order"`
	Index *bool  `yaml:"index"`
}

// MetaScanner reads front matter and the first heading of a markdown page.
type MetaScanner struct {
	md goldmark.Markdown
}

func NewMetaScanner() *MetaScanner {
	return &MetaScanner{
		md: goldmark.New(
			goldmark.WithExtensions(&frontmatter.Extender{}),
		),
	}
}

// Scan never fails: a page with broken front matter still appears, titled by
// its heading or its file name.
func (s *MetaScanner) Scan(source []byte) Meta {
	ctx := parser.NewContext()
	doc := s.md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	var meta Meta
	if data := frontmatter.Get(ctx); data != nil {
		var fm frontMatter
		if err := data.Decode(&fm); err == nil {
			meta.Title = strings.TrimSpace(fm.Title)
			meta.Icon = fm.Icon
			meta.Order = fm.Order
			meta.Hidden = fm.Index != nil && !*fm.Index
		}
	}
	if meta.Title == "" {
		meta.Title = firstHeading(doc, source)
	}
	return meta
}

func firstHeading(doc ast.Node, source []byte) string {
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		title = inlineText(h, source)
		return ast.WalkStop, nil
	})
	return strings.TrimSpace(title)
}

func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, source))
		}
	}
	return buf.String()
}
