package commands

import (
	"fmt"

	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/logger"
	"github.com/MrSnakeDoc/navkit/internal/structure"
)

// ResolveCmd answers the sidebar question for one page path. With a content
// directory, auto-structure sidebars are expanded into their entries.
type ResolveCmd struct {
	SiteFlags  `embed:""`
	ContentDir string `name:"content-dir" help:"Content root used to expand auto-structure sidebars" type:"path"`
	Path       string `arg:"" help:"Request path, ex: /docs/go/intro.html"`
}

func (c *ResolveCmd) Run(g *Global) error {
	s, err := c.load(g)
	if err != nil {
		return err
	}

	res := s.ResolveSidebar(c.Path)
	g.Logger.Debug("sidebar resolved",
		logger.String("path", c.Path),
		logger.String("prefix", res.Prefix),
		logger.String("strategy", res.Strategy.String()))

	if res.Strategy == domain.StrategyStructure && c.ContentDir != "" {
		entries, err := structure.NewExpander(g.Fs, c.ContentDir).Expand(res.Prefix)
		if err != nil {
			return fmt.Errorf("failed to expand %s: %w", res.Prefix, err)
		}
		res.Entries = entries
	}
	return writeJSON(g.Out, res)
}
