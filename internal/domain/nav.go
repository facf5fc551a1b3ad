package domain

import (
	"fmt"
	"strings"
)

// Kind tags the variant held by a NavEntry.
type Kind string

const (
	KindLink  Kind = "link"
	KindGroup Kind = "group"
)

// MaxGroupDepth is the deepest level a group may sit at: a top-level group
// (depth 0) may hold one more level of groups (depth 1), nothing below.
const MaxGroupDepth = 1

// NavEntry is one resolved navigation entry: either a link or a group.
//
// Both variants share Text and Icon. A link carries the declared Link and the
// absolute Href it resolves to. A group carries its declared Prefix, the
// ordered Children and, optionally, a Link to its own index page.
type NavEntry struct {
	Kind     Kind       `json:"kind"`
	Text     string     `json:"text"`
	Icon     string     `json:"icon,omitempty"`
	Link     string     `json:"link,omitempty"`
	Href     string     `json:"href,omitempty"`
	Prefix   string     `json:"prefix,omitempty"`
	Children []NavEntry `json:"children,omitempty"`
}

// IsGroup reports whether the entry is a group.
func (e NavEntry) IsGroup() bool { return e.Kind == KindGroup }

// Navbar is the ordered top-level navigation menu.
type Navbar []NavEntry

// EntrySpec is the declarative, not yet validated form of a NavEntry.
//
// Shorthand holds the bare-string form ("/docs/go/"). A spec with
// HasChildren set is a group even when Children is empty, so an empty
// children list can be reported instead of being mistaken for a link.
// Malformed is set by source decoders when the declared entry has the wrong
// shape; the builder reports it at the entry's position.
type EntrySpec struct {
	Shorthand   string
	Text        string
	Link        string
	Icon        string
	Prefix      string
	Children    []EntrySpec
	HasChildren bool
	Malformed   string
	Line        int
}

// LinkSpec is the shorthand constructor used by callers building specs in code.
func LinkSpec(path string) EntrySpec { return EntrySpec{Shorthand: path} }

// BuildNavbar validates and resolves the declared navbar entries.
// Input order is preserved. Every problem found is returned in one ConfigErrors.
func BuildNavbar(entries []EntrySpec) (Navbar, error) {
	var errs ConfigErrors
	out := buildEntries(entries, "", 0, "navbar", &errs)
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return Navbar(out), nil
}

// buildEntries resolves a list of entries against base. depth is the group
// depth of the list owner, so top-level lists are at depth 0.
func buildEntries(specs []EntrySpec, base string, depth int, loc string, errs *ConfigErrors) []NavEntry {
	out := make([]NavEntry, 0, len(specs))
	for i, spec := range specs {
		entryLoc := fmt.Sprintf("%s[%d]", loc, i)
		if entry, ok := buildEntry(spec, base, depth, entryLoc, errs); ok {
			out = append(out, entry)
		}
	}
	return out
}

func buildEntry(spec EntrySpec, base string, depth int, loc string, errs *ConfigErrors) (NavEntry, bool) {
	switch {
	case spec.Malformed != "":
		errs.add(loc, spec.Line, "malformed entry: "+spec.Malformed, "")
		return NavEntry{}, false
	case spec.Shorthand != "":
		return buildLink(spec.Shorthand, "", "", base, spec.Line, loc, errs)
	case spec.HasChildren:
		return buildGroup(spec, base, depth, loc, errs)
	case spec.Link != "":
		return buildLink(spec.Link, spec.Text, spec.Icon, base, spec.Line, loc, errs)
	default:
		errs.add(loc, spec.Line, "entry is neither a link nor a group (needs a link or children)", spec.Text)
		return NavEntry{}, false
	}
}

func buildLink(link, text, icon, base string, line int, loc string, errs *ConfigErrors) (NavEntry, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		errs.add(loc, line, "link destination is empty", "")
		return NavEntry{}, false
	}
	href := joinPath(base, link)
	if reason := validatePath(href); reason != "" {
		errs.add(loc, line, "malformed link destination: "+reason, href)
		return NavEntry{}, false
	}
	if text == "" {
		text = TitleFromPath(href)
	}
	return NavEntry{Kind: KindLink, Text: text, Icon: icon, Link: link, Href: href}, true
}

func buildGroup(spec EntrySpec, base string, depth int, loc string, errs *ConfigErrors) (NavEntry, bool) {
	ok := true
	if depth > MaxGroupDepth {
		errs.add(loc, spec.Line, "groups nest at most one level deep", spec.Text)
		return NavEntry{}, false
	}
	if strings.TrimSpace(spec.Text) == "" {
		errs.add(loc, spec.Line, "group text is empty", "")
		ok = false
	}

	groupBase := joinPath(base, spec.Prefix)
	if spec.Prefix != "" {
		if reason := validatePath(groupBase); reason != "" {
			errs.add(loc+".prefix", spec.Line, "malformed group prefix: "+reason, groupBase)
			ok = false
		}
	}

	group := NavEntry{Kind: KindGroup, Text: spec.Text, Icon: spec.Icon, Prefix: spec.Prefix}
	if spec.Link != "" {
		idx, linkOK := buildLink(spec.Link, spec.Text, "", groupBase, spec.Line, loc+".link", errs)
		ok = ok && linkOK
		group.Link, group.Href = idx.Link, idx.Href
	}

	if len(spec.Children) == 0 {
		errs.add(loc+".children", spec.Line, "group has no children", spec.Text)
		return NavEntry{}, false
	}

	before := len(*errs)
	group.Children = buildEntries(spec.Children, groupBase, depth+1, loc+".children", errs)
	if len(*errs) > before || !ok {
		return NavEntry{}, false
	}
	return group, true
}

// SpecsFromNavbar turns resolved entries back into their declarative form.
// Building the result yields entries equal to the input.
func SpecsFromNavbar(entries []NavEntry) []EntrySpec {
	specs := make([]EntrySpec, 0, len(entries))
	for _, e := range entries {
		spec := EntrySpec{Text: e.Text, Icon: e.Icon, Link: e.Link}
		if e.IsGroup() {
			spec.Prefix = e.Prefix
			spec.HasChildren = true
			spec.Children = SpecsFromNavbar(e.Children)
		}
		specs = append(specs, spec)
	}
	return specs
}
