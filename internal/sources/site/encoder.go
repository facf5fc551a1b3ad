package site

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/navkit/internal/domain"
)

// Encode serializes the navbar, sidebar and theme of a site back into the
// site.yaml schema. Encrypt rules are left out: only their hashes survive
// the build. Building the output again yields an equal navbar and sidebar.
func Encode(s *domain.Site) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	navbar := &yaml.Node{}
	if err := navbar.Encode(fromNavEntries(s.Navbar)); err != nil {
		return nil, fmt.Errorf("failed to encode navbar: %w", err)
	}
	root.Content = append(root.Content, scalar("navbar"), navbar)

	sidebar := &yaml.Node{Kind: yaml.MappingNode}
	for _, rule := range s.Sidebar.Rules() {
		val := &yaml.Node{}
		switch rule.Strategy {
		case domain.StrategyExplicit:
			if err := val.Encode(fromNavEntries(rule.Entries)); err != nil {
				return nil, fmt.Errorf("failed to encode sidebar %s: %w", rule.Prefix, err)
			}
		default:
			val = scalar(rule.Strategy.String())
		}
		sidebar.Content = append(sidebar.Content, scalar(rule.Prefix), val)
	}
	root.Content = append(root.Content, scalar("sidebar"), sidebar)

	if opts := s.Theme.Options(); len(opts) > 0 {
		theme := &yaml.Node{}
		if err := theme.Encode(opts); err != nil {
			return nil, fmt.Errorf("failed to encode theme: %w", err)
		}
		root.Content = append(root.Content, scalar("theme"), theme)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode site: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func fromNavEntries(entries []domain.NavEntry) []Entry {
	specs := domain.SpecsFromNavbar(entries)
	return fromSpecs(specs)
}

func fromSpecs(specs []domain.EntrySpec) []Entry {
	out := make([]Entry, 0, len(specs))
	for _, s := range specs {
		out = append(out, Entry{
			Text:     s.Text,
			Link:     s.Link,
			Icon:     s.Icon,
			Prefix:   s.Prefix,
			Children: fromSpecs(s.Children),
		})
	}
	return out
}
