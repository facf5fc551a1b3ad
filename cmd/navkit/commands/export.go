package commands

import (
	"fmt"

	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/sources/site"
)

// ExportCmd prints the normalized model, either back in the declaration
// format or as the JSON served by the API.
type ExportCmd struct {
	SiteFlags `embed:""`
	Format    string `help:"Output format" default:"yaml" enum:"yaml,json"`
}

type exportModel struct {
	Checksum string               `json:"checksum"`
	Navbar   domain.Navbar        `json:"navbar"`
	Sidebar  []domain.SidebarRule `json:"sidebar"`
	Theme    domain.ThemeConfig   `json:"theme"`
	Encrypt  []domain.EncryptRule `json:"encrypt"`
}

func (c *ExportCmd) Run(g *Global) error {
	s, err := c.load(g)
	if err != nil {
		return err
	}

	if c.Format == "json" {
		return writeJSON(g.Out, exportModel{
			Checksum: s.Checksum,
			Navbar:   s.Navbar,
			Sidebar:  s.Sidebar.Rules(),
			Theme:    s.Theme,
			Encrypt:  s.Encryption.Rules(),
		})
	}

	out, err := site.Encode(s)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", c.File, err)
	}
	_, err = g.Out.Write(out)
	return err
}
