package commands

import (
	"fmt"
)

// ValidateCmd builds the model and lists every configuration error.
type ValidateCmd struct {
	SiteFlags `embed:""`
}

func (c *ValidateCmd) Run(g *Global) error {
	s, err := c.load(g)
	if err != nil {
		errs := configErrors(err)
		if len(errs) == 0 {
			return err
		}
		for _, e := range errs {
			printf(g.Out, "✗ %s\n", e.Error())
		}
		return fmt.Errorf("%s: %d configuration error(s)", c.File, len(errs))
	}

	printf(g.Out, "✓ %s is valid (checksum %s)\n", c.File, s.Checksum)
	printf(g.Out, "  navbar entries: %d\n", len(s.Navbar))
	printf(g.Out, "  sidebar rules:  %d\n", s.Sidebar.Len())
	printf(g.Out, "  encrypt rules:  %d\n", len(s.Encryption.Rules()))
	return nil
}
