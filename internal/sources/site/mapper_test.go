package site

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/navkit/internal/domain"
)

func mapYAML(t *testing.T, src string) (*domain.Site, error) {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return NewMapper(bcrypt.MinCost).MapSite(doc, "test.yaml")
}

func TestMapperMapSite(t *testing.T) {
	s, err := mapYAML(t, journeyYAML)
	require.NoError(t, err)

	require.Len(t, s.Navbar, 11)
	require.Equal(t, "Home", s.Navbar[0].Text)

	lang := s.Navbar[1]
	require.Equal(t, domain.KindGroup, lang.Kind)
	require.Equal(t, "/docs/language/rust/", lang.Children[2].Href)

	mq := s.Navbar[3].Children[0]
	require.Equal(t, "消息队列", mq.Text)
	require.Equal(t, "/docs/middleware/mq/nats/", mq.Children[0].Href)

	require.Equal(t, 8, s.Sidebar.Len())
	res := s.ResolveSidebar("/docs/language/go/goroutines.html")
	require.True(t, res.Matched)
	require.Equal(t, "/docs/language", res.Prefix)
	require.Equal(t, domain.StrategyStructure, res.Strategy)

	require.False(t, s.ResolveSidebar("/docs/os/").Matched)

	rule, locked := s.Encryption.Lookup("/demo/encrypt.html")
	require.True(t, locked)
	require.Equal(t, "Password: 1234", rule.Hint)
	require.True(t, rule.Verify("1234"))

	logo, ok := s.Theme.Get("logo")
	require.True(t, ok)
	require.Equal(t, "/books.svg", logo)
	require.Equal(t, "test.yaml", s.Source)
	require.NotEmpty(t, s.Checksum)
}

func TestMapperCollectsErrorsAcrossSections(t *testing.T) {
	src := `navbar:
  - text: Empty
    prefix: /docs/
    children: []
sidebar:
  /docs/lang/: structure
  /docs/lang/: structure
theme:
  colour: red
encrypt:
  /secret.html:
    hint: none
`
	_, err := mapYAML(t, src)
	require.Error(t, err)

	var errs domain.ConfigErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 4)

	paths := make([]string, len(errs))
	for i, e := range errs {
		paths[i] = e.Path
	}
	require.Equal(t, []string{
		"navbar[0].children",
		`sidebar["/docs/lang/"]`,
		"theme.colour",
		`encrypt["/secret.html"]`,
	}, paths)
	require.Equal(t, 7, errs[1].Line)
}

func TestMapperSidebarShapes(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"sidebar not a mapping", "sidebar: [a, b]\n", "sidebar must be a mapping"},
		{"strategy is a mapping", "sidebar:\n  /docs/:\n    a: b\n", "must be a tag or a list"},
		{"encrypt not a mapping", "encrypt: nope\n", "encrypt must be a mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapYAML(t, tt.src)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMapperExplicitSidebarAndPasswordList(t *testing.T) {
	src := `sidebar:
  /guide/:
    - intro.html
    - text: Advanced
      prefix: advanced/
      children: [a.html, b.html]
  /guide/legacy/: false
encrypt:
  /team/:
    password: [one, two]
`
	s, err := mapYAML(t, src)
	require.NoError(t, err)

	res := s.ResolveSidebar("/guide/advanced/a.html")
	require.Equal(t, domain.StrategyExplicit, res.Strategy)
	require.Len(t, res.Entries, 2)
	require.Equal(t, "/guide/advanced/b.html", res.Entries[1].Children[1].Href)

	require.Equal(t, domain.StrategyNone, s.ResolveSidebar("/guide/legacy/x.html").Strategy)
	require.True(t, s.ResolveSidebar("/guide/legacy/x.html").Matched)

	rule, ok := s.Encryption.Lookup("/team/notes.html")
	require.True(t, ok)
	require.True(t, rule.Verify("two"))
}
