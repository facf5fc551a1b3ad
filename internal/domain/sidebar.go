package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy says how the sidebar for a subtree is produced.
type Strategy int

const (
	// StrategyNone means no sidebar: the default when no rule matches.
	StrategyNone Strategy = iota
	// StrategyStructure derives the sidebar from the content directory.
	StrategyStructure
	// StrategyExplicit uses the declared ordered entry list.
	StrategyExplicit
)

func (s Strategy) String() string {
	switch s {
	case StrategyStructure:
		return "auto-structure"
	case StrategyExplicit:
		return "explicit"
	default:
		return "no-sidebar"
	}
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Strategy) UnmarshalText(b []byte) error {
	if string(b) == "explicit" {
		*s = StrategyExplicit
		return nil
	}
	parsed, ok := ParseStrategyTag(string(b))
	if !ok {
		return fmt.Errorf("unknown sidebar strategy %q", b)
	}
	*s = parsed
	return nil
}

// ParseStrategyTag maps a declared strategy tag to a Strategy.
// "structure" is the tag used by existing site declarations.
func ParseStrategyTag(tag string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "auto-structure", "structure":
		return StrategyStructure, true
	case "no-sidebar", "none", "false":
		return StrategyNone, true
	default:
		return StrategyNone, false
	}
}

// RuleSpec is one declared sidebar rule. Either Tag is set, or IsList is set
// and Entries holds the explicit entries (possibly empty, which is an error).
type RuleSpec struct {
	Prefix  string
	Tag     string
	Entries []EntrySpec
	IsList  bool
	Line    int
}

// SidebarRule is a validated prefix -> strategy mapping.
type SidebarRule struct {
	Prefix   string     `json:"prefix"`
	Strategy Strategy   `json:"strategy"`
	Entries  []NavEntry `json:"entries,omitempty"`
	Line     int        `json:"-"`

	key string // normalized prefix used for matching
}

// Resolution is the answer to a sidebar lookup.
type Resolution struct {
	Path     string     `json:"path"`
	Matched  bool       `json:"matched"`
	Prefix   string     `json:"prefix,omitempty"`
	Strategy Strategy   `json:"strategy"`
	Entries  []NavEntry `json:"entries,omitempty"`
}

// Sidebar is the validated, immutable rule set.
type Sidebar struct {
	rules   []SidebarRule // declaration order
	longest []int         // indexes into rules, longest prefix first
}

// BuildSidebar validates the declared rules.
//
// Prefixes must be absolute paths and unique once trailing slashes are
// normalized; a duplicate is rejected instead of letting the last one win.
// Unique normalized prefixes never tie during lookup, so ambiguity is ruled
// out here rather than at request time.
func BuildSidebar(specs []RuleSpec) (*Sidebar, error) {
	var errs ConfigErrors
	seen := make(map[string]RuleSpec, len(specs))
	rules := make([]SidebarRule, 0, len(specs))

	for _, spec := range specs {
		loc := fmt.Sprintf("sidebar[%q]", spec.Prefix)
		if reason := validatePath(spec.Prefix); reason != "" {
			errs.add(loc, spec.Line, "malformed sidebar prefix: "+reason, spec.Prefix)
			continue
		}

		key := normalizePrefix(spec.Prefix)
		if prev, dup := seen[key]; dup {
			msg := "duplicate sidebar prefix"
			if prev.Line > 0 {
				msg = fmt.Sprintf("duplicate sidebar prefix (first declared on line %d)", prev.Line)
			}
			errs.add(loc, spec.Line, msg, spec.Prefix)
			continue
		}
		seen[key] = spec

		rule := SidebarRule{Prefix: spec.Prefix, Line: spec.Line, key: key}
		switch {
		case spec.IsList:
			if len(spec.Entries) == 0 {
				errs.add(loc, spec.Line, "explicit sidebar has no entries", "")
				continue
			}
			before := len(errs)
			rule.Entries = buildEntries(spec.Entries, key, 0, loc, &errs)
			if len(errs) > before {
				continue
			}
			rule.Strategy = StrategyExplicit
		default:
			strategy, ok := ParseStrategyTag(spec.Tag)
			if !ok {
				errs.add(loc, spec.Line, "unknown sidebar strategy", spec.Tag)
				continue
			}
			rule.Strategy = strategy
		}
		rules = append(rules, rule)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return newSidebar(rules), nil
}

func newSidebar(rules []SidebarRule) *Sidebar {
	longest := make([]int, len(rules))
	for i := range rules {
		longest[i] = i
	}
	sort.SliceStable(longest, func(a, b int) bool {
		return len(rules[longest[a]].key) > len(rules[longest[b]].key)
	})
	return &Sidebar{rules: rules, longest: longest}
}

// Rules returns the rules in declaration order.
func (s *Sidebar) Rules() []SidebarRule {
	if s == nil {
		return nil
	}
	out := make([]SidebarRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules.
func (s *Sidebar) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Resolve returns the strategy of the longest prefix containing requestPath,
// or the no-sidebar default when no prefix matches.
func (s *Sidebar) Resolve(requestPath string) Resolution {
	res := Resolution{Path: requestPath, Strategy: StrategyNone}
	if s == nil {
		return res
	}
	p := cleanRequestPath(requestPath)
	for _, i := range s.longest {
		rule := s.rules[i]
		if hasPathPrefix(p, rule.key) {
			res.Matched = true
			res.Prefix = rule.Prefix
			res.Strategy = rule.Strategy
			res.Entries = rule.Entries
			return res
		}
	}
	return res
}

// cleanRequestPath drops query and fragment and makes the path absolute.
func cleanRequestPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
