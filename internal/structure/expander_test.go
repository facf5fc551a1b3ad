package structure

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/navkit/internal/domain"
)

func contentFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	return fs
}

func TestExpand(t *testing.T) {
	fs := contentFs(t, map[string]string{
		"/src/docs/language/README.md":            "---\ntitle: Languages\n---\n",
		"/src/docs/language/go/README.md":         "# Go\n",
		"/src/docs/language/go/goroutines.md":     "---\norder: 2\n---\n# Goroutines\n",
		"/src/docs/language/go/channels.md":       "---\norder: 1\n---\n# Channels\n",
		"/src/docs/language/go/draft.md":          "---\nindex: false\n---\n# Draft\n",
		"/src/docs/language/cpp/smart_pointer.md": "no heading here\n",
		"/src/docs/language/overview.md":          "# Overview\n",
		"/src/docs/language/.hidden/secret.md":    "# Secret\n",
		"/src/docs/language/assets/logo.svg":      "<svg/>",
	})

	entries, err := NewExpander(fs, "/src").Expand("/docs/language")
	require.NoError(t, err)

	want := []domain.NavEntry{
		{
			Kind:   domain.KindGroup,
			Text:   "Cpp",
			Prefix: "/docs/language/cpp/",
			Children: []domain.NavEntry{
				{Kind: domain.KindLink, Text: "Smart Pointer", Link: "/docs/language/cpp/smart_pointer.html", Href: "/docs/language/cpp/smart_pointer.html"},
			},
		},
		{
			Kind:   domain.KindGroup,
			Text:   "Go",
			Link:   "/docs/language/go/",
			Href:   "/docs/language/go/",
			Prefix: "/docs/language/go/",
			Children: []domain.NavEntry{
				{Kind: domain.KindLink, Text: "Channels", Link: "/docs/language/go/channels.html", Href: "/docs/language/go/channels.html"},
				{Kind: domain.KindLink, Text: "Goroutines", Link: "/docs/language/go/goroutines.html", Href: "/docs/language/go/goroutines.html"},
			},
		},
		{Kind: domain.KindLink, Text: "Overview", Link: "/docs/language/overview.html", Href: "/docs/language/overview.html"},
	}
	require.Equal(t, want, entries)
}

func TestExpandFlattensDeepDirectories(t *testing.T) {
	fs := contentFs(t, map[string]string{
		"/src/docs/db/README.md":                  "# Databases\n",
		"/src/docs/db/redis/README.md":            "# Redis\n",
		"/src/docs/db/redis/cluster/README.md":    "# Cluster\n",
		"/src/docs/db/redis/cluster/slots.md":     "# Slots\n",
		"/src/docs/db/redis/cluster/deep/more.md": "# More\n",
	})

	entries, err := NewExpander(fs, "/src").Expand("/docs/")
	require.NoError(t, err)

	require.Len(t, entries, 1)
	db := entries[0]
	require.Equal(t, domain.KindGroup, db.Kind)
	require.Len(t, db.Children, 1)

	redis := db.Children[0]
	require.Equal(t, domain.KindGroup, redis.Kind)
	require.Equal(t, []domain.NavEntry{
		{Kind: domain.KindLink, Text: "Cluster", Link: "/docs/db/redis/cluster/", Href: "/docs/db/redis/cluster/"},
	}, redis.Children)

	require.LessOrEqual(t, deepestGroup(entries, 0), domain.MaxGroupDepth)
}

// deepestGroup returns the depth of the most nested group, -1 for none.
func deepestGroup(entries []domain.NavEntry, depth int) int {
	deepest := -1
	for _, e := range entries {
		if !e.IsGroup() {
			continue
		}
		deepest = max(deepest, depth, deepestGroup(e.Children, depth+1))
	}
	return deepest
}

func TestExpandMissingDir(t *testing.T) {
	_, err := NewExpander(afero.NewMemMapFs(), "/src").Expand("/docs/nope/")
	require.Error(t, err)
}

func TestExpandRelativePrefix(t *testing.T) {
	_, err := NewExpander(afero.NewMemMapFs(), "/src").Expand("docs/")
	require.Error(t, err)
}

func TestMetaScanner(t *testing.T) {
	s := NewMetaScanner()

	tests := []struct {
		name   string
		source string
		want   Meta
	}{
		{"front matter title wins", "---\ntitle: From FM\nicon: go\n---\n# Heading\n", Meta{Title: "From FM", Icon: "go"}},
		{"heading fallback", "# Hello *World*\n\nbody", Meta{Title: "Hello World"}},
		{"second level ignored", "## Sub\n", Meta{}},
		{"hidden page", "---\nindex: false\n---\n", Meta{Hidden: true}},
		{"broken front matter", "---\ntitle: [oops\n---\n# Fallback\n", Meta{Title: "Fallback"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.Scan([]byte(tt.source)))
		})
	}
}
