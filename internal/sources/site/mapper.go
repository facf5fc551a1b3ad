package site

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/navkit/internal/domain"
)

// Mapper converts a parsed Document into a validated domain.Site.
type Mapper struct {
	bcryptCost int
	now        func() time.Time
}

// NewMapper creates a mapper. bcryptCost 0 selects bcrypt.DefaultCost.
func NewMapper(bcryptCost int) *Mapper {
	return &Mapper{bcryptCost: bcryptCost, now: time.Now}
}

// MapSite runs every builder and returns all configuration errors at once.
func (m *Mapper) MapSite(doc *Document, source string) (*domain.Site, error) {
	var errs domain.ConfigErrors

	navbar, err := domain.BuildNavbar(navbarSpecs(&doc.Navbar, &errs))
	errs.Merge("navbar", err)

	ruleSpecs := sidebarSpecs(&doc.Sidebar, &errs)
	sidebar, err := domain.BuildSidebar(ruleSpecs)
	errs.Merge("sidebar", err)

	theme, err := domain.BuildTheme(themeOptions(&doc.Theme, &errs))
	errs.Merge("theme", err)

	encSpecs := encryptSpecs(&doc.Encrypt, &errs)
	encryption, err := domain.BuildEncryption(encSpecs, m.bcryptCost)
	errs.Merge("encrypt", err)

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	return &domain.Site{
		Navbar:     navbar,
		Sidebar:    sidebar,
		Theme:      theme,
		Encryption: encryption,
		Checksum:   doc.Checksum,
		Source:     source,
		LoadedAt:   m.now(),
	}, nil
}

// isEmpty reports a section that is absent or declared without a value.
func isEmpty(node *yaml.Node) bool {
	return node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func navbarSpecs(node *yaml.Node, errs *domain.ConfigErrors) []domain.EntrySpec {
	if isEmpty(node) {
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		errs.Add("navbar", node.Line, "navbar must be a list of entries", node.Value)
		return nil
	}
	return entrySpecs(node)
}

// entrySpecs converts a sequence of entries. An entry of the wrong shape is
// kept, marked Malformed, so the builder reports it at its own index.
func entrySpecs(node *yaml.Node) []domain.EntrySpec {
	specs := make([]domain.EntrySpec, 0, len(node.Content))
	for _, n := range node.Content {
		specs = append(specs, entrySpec(n))
	}
	return specs
}

// entrySpec accepts the string form (shorthand link) and the mapping form.
func entrySpec(n *yaml.Node) domain.EntrySpec {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	spec := domain.EntrySpec{Line: n.Line}

	switch n.Kind {
	case yaml.ScalarNode:
		spec.Shorthand = n.Value
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			switch key.Value {
			case "text", "link", "icon", "prefix":
				if val.Kind != yaml.ScalarNode {
					spec.Malformed = key.Value + " must be a string"
					return spec
				}
				switch key.Value {
				case "text":
					spec.Text = val.Value
				case "link":
					spec.Link = val.Value
				case "icon":
					spec.Icon = val.Value
				case "prefix":
					spec.Prefix = val.Value
				}
			case "children":
				spec.HasChildren = true
				switch {
				case val.Kind == yaml.SequenceNode:
					spec.Children = entrySpecs(val)
				case !isEmpty(val):
					spec.Malformed = "children must be a list of entries"
					return spec
				}
			}
		}
	default:
		spec.Malformed = "entry must be a string or a mapping"
	}
	return spec
}

// themeOptions decodes the theme mapping; option names are checked by BuildTheme.
func themeOptions(node *yaml.Node, errs *domain.ConfigErrors) map[string]any {
	if isEmpty(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		errs.Add("theme", node.Line, "theme must be a mapping of option to value", "")
		return nil
	}
	var opts map[string]any
	if err := node.Decode(&opts); err != nil {
		errs.Add("theme", node.Line, "cannot decode theme options: "+err.Error(), "")
		return nil
	}
	return opts
}

// sidebarSpecs walks the raw sidebar mapping in declaration order.
// Duplicate keys are kept so BuildSidebar can reject them.
func sidebarSpecs(node *yaml.Node, errs *domain.ConfigErrors) []domain.RuleSpec {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		errs.Add("sidebar", node.Line, "sidebar must be a mapping of prefix to strategy", "")
		return nil
	}

	specs := make([]domain.RuleSpec, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		loc := fmt.Sprintf("sidebar[%q]", key.Value)
		spec := domain.RuleSpec{Prefix: key.Value, Line: key.Line}

		switch val.Kind {
		case yaml.ScalarNode:
			spec.Tag = val.Value
		case yaml.SequenceNode:
			spec.IsList = true
			spec.Entries = entrySpecs(val)
		default:
			errs.Add(loc, val.Line, "sidebar strategy must be a tag or a list of entries", "")
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// encryptSpecs walks the raw encrypt mapping.
func encryptSpecs(node *yaml.Node, errs *domain.ConfigErrors) []domain.EncryptSpec {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		errs.Add("encrypt", node.Line, "encrypt must be a mapping of path to password", "")
		return nil
	}

	specs := make([]domain.EncryptSpec, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		loc := fmt.Sprintf("encrypt[%q]", key.Value)
		spec := domain.EncryptSpec{Path: key.Value, Line: key.Line}

		switch val.Kind {
		case yaml.ScalarNode:
			spec.Passwords = []string{val.Value}
		case yaml.MappingNode:
			var f encryptFields
			if err := val.Decode(&f); err != nil {
				errs.Add(loc, val.Line, "cannot decode encrypt rule: "+err.Error(), "")
				continue
			}
			spec.Hint = f.Hint
			switch f.Password.Kind {
			case yaml.ScalarNode:
				spec.Passwords = []string{f.Password.Value}
			case yaml.SequenceNode:
				if err := f.Password.Decode(&spec.Passwords); err != nil {
					errs.Add(loc+".password", f.Password.Line, "password list must hold strings", "")
					continue
				}
			}
		default:
			errs.Add(loc, val.Line, "encrypt rule must be a password or a mapping", "")
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}
