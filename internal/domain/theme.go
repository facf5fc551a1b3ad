package domain

import (
	"encoding/json"
	"maps"
	"sort"
)

// knownThemeOptions lists the option names the renderer understands.
// Values are passed through untouched.
var knownThemeOptions = map[string]struct{}{
	"hostname":      {},
	"author":        {},
	"logo":          {},
	"logoDark":      {},
	"favicon":       {},
	"repo":          {},
	"repoDisplay":   {},
	"docsDir":       {},
	"docsBranch":    {},
	"darkmode":      {},
	"toggle":        {},
	"footer":        {},
	"displayFooter": {},
	"copyright":     {},
	"metaLocales":   {},
	"locales":       {},
	"markdown":      {},
	"plugins":       {},
	"blog":          {},
	"hotReload":     {},
	"pageInfo":      {},
	"print":         {},
	"fullscreen":    {},
	"license":       {},
}

// ThemeConfig is the opaque presentation option record handed to the renderer.
type ThemeConfig struct {
	options map[string]any
}

// BuildTheme checks that every top-level option name is known.
func BuildTheme(options map[string]any) (ThemeConfig, error) {
	var errs ConfigErrors
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := knownThemeOptions[name]; !ok {
			errs.add("theme."+name, 0, "unknown theme option", name)
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return ThemeConfig{}, err
	}
	return ThemeConfig{options: maps.Clone(options)}, nil
}

// Get returns a single option.
func (t ThemeConfig) Get(name string) (any, bool) {
	v, ok := t.options[name]
	return v, ok
}

// Options returns a shallow copy of the option record.
func (t ThemeConfig) Options() map[string]any {
	if t.options == nil {
		return map[string]any{}
	}
	return maps.Clone(t.options)
}

func (t ThemeConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Options())
}
