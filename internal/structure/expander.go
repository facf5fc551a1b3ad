// Package structure derives sidebar entries from a content directory, for
// sidebar rules using the auto-structure strategy.
package structure

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/utils"
)

// indexFile is the page describing a directory.
const indexFile = "README.md"

// Expander walks a content tree and turns it into navigation entries.
type Expander struct {
	fs      afero.Fs
	root    string
	scanner *MetaScanner
}

// NewExpander creates an expander rooted at contentDir on fs.
func NewExpander(fs afero.Fs, contentDir string) *Expander {
	return &Expander{
		fs:      fs,
		root:    contentDir,
		scanner: NewMetaScanner(),
	}
}

type node struct {
	entry domain.NavEntry
	order int
}

// Expand lists the pages below prefix. Directories become groups (titled by
// their README.md), markdown pages become links to the rendered .html path.
func (e *Expander) Expand(prefix string) ([]domain.NavEntry, error) {
	if !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("prefix %q must be absolute", prefix)
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	dir := path.Join(e.root, prefix)
	info, err := e.fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat content dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path %s is not a directory", dir)
	}

	nodes, err := e.walk(dir, prefix, 0)
	if err != nil {
		return nil, err
	}
	return entries(nodes), nil
}

// walk lists dir. depth is the group depth its sub-directories would take.
func (e *Expander) walk(dir, urlPrefix string, depth int) ([]node, error) {
	infos, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var nodes []node
	for _, fi := range infos {
		name := fi.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}

		if fi.IsDir() {
			child, ok, err := e.dirNode(path.Join(dir, name), urlPrefix+name+"/", name, depth)
			if err != nil {
				return nil, err
			}
			if ok {
				nodes = append(nodes, child)
			}
			continue
		}

		if !strings.HasSuffix(name, ".md") || name == indexFile {
			continue
		}
		meta, err := e.readMeta(path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if meta.Hidden {
			continue
		}
		href := urlPrefix + strings.TrimSuffix(name, ".md") + ".html"
		title := meta.Title
		if title == "" {
			title = domain.TitleFromPath(href)
		}
		nodes = append(nodes, node{
			entry: domain.NavEntry{Kind: domain.KindLink, Text: title, Icon: meta.Icon, Link: href, Href: href},
			order: meta.Order,
		})
	}

	sortNodes(nodes)
	return nodes, nil
}

// dirNode builds the group for a sub-directory. Directories without pages
// are skipped. Below domain.MaxGroupDepth a directory becomes a link to its
// index page, so expanded sidebars nest like declared ones.
func (e *Expander) dirNode(dir, urlPrefix, name string, depth int) (node, bool, error) {
	children, err := e.walk(dir, urlPrefix, depth+1)
	if err != nil {
		return node{}, false, err
	}

	var meta Meta
	hasIndex := false
	if _, err := e.fs.Stat(path.Join(dir, indexFile)); err == nil {
		hasIndex = true
		if meta, err = e.readMeta(path.Join(dir, indexFile)); err != nil {
			return node{}, false, err
		}
	}
	if meta.Hidden || (len(children) == 0 && !hasIndex) {
		return node{}, false, nil
	}

	title := meta.Title
	if title == "" {
		title = domain.TitleFromPath(name)
	}

	if len(children) == 0 || depth > domain.MaxGroupDepth {
		return node{
			entry: domain.NavEntry{Kind: domain.KindLink, Text: title, Icon: meta.Icon, Link: urlPrefix, Href: urlPrefix},
			order: meta.Order,
		}, true, nil
	}

	group := domain.NavEntry{
		Kind:     domain.KindGroup,
		Text:     title,
		Icon:     meta.Icon,
		Prefix:   urlPrefix,
		Children: entries(children),
	}
	if hasIndex {
		group.Link, group.Href = urlPrefix, urlPrefix
	}
	return node{entry: group, order: meta.Order}, true, nil
}

func (e *Expander) readMeta(p string) (Meta, error) {
	f, err := e.fs.Open(p)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer utils.Close(f)

	src, err := io.ReadAll(f)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return e.scanner.Scan(src), nil
}

// sortNodes orders positive "order" values first (ascending), then pages
// without an order by title, then negative orders (ascending).
func sortNodes(nodes []node) {
	rank := func(o int) int {
		switch {
		case o > 0:
			return 0
		case o == 0:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if ra, rb := rank(a.order), rank(b.order); ra != rb {
			return ra < rb
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.entry.Text < b.entry.Text
	})
}

func entries(nodes []node) []domain.NavEntry {
	out := make([]domain.NavEntry, len(nodes))
	for i, n := range nodes {
		out[i] = n.entry
	}
	return out
}
