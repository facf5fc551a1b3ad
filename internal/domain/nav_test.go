package domain

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestBuildNavbarShorthandAndGroup(t *testing.T) {
	entries := []EntrySpec{
		LinkSpec("/docs/a/"),
		{
			Text:        "G",
			Prefix:      "/docs/b/",
			HasChildren: true,
			Children:    []EntrySpec{LinkSpec("x/"), LinkSpec("y/")},
		},
	}

	navbar, err := BuildNavbar(entries)
	if err != nil {
		t.Fatalf("BuildNavbar() error = %v", err)
	}
	if len(navbar) != 2 {
		t.Fatalf("BuildNavbar() returned %d entries, want 2", len(navbar))
	}

	link := navbar[0]
	if link.Kind != KindLink || link.Href != "/docs/a/" || link.Text != "A" {
		t.Errorf("first entry = %+v, want link /docs/a/ with text A", link)
	}

	group := navbar[1]
	if group.Kind != KindGroup || group.Text != "G" || group.Prefix != "/docs/b/" {
		t.Fatalf("second entry = %+v, want group G under /docs/b/", group)
	}
	if len(group.Children) != 2 {
		t.Fatalf("group has %d children, want 2", len(group.Children))
	}
	wantChildren := []struct{ link, href string }{
		{"x/", "/docs/b/x/"},
		{"y/", "/docs/b/y/"},
	}
	for i, want := range wantChildren {
		got := group.Children[i]
		if got.Link != want.link || got.Href != want.href {
			t.Errorf("child %d = (%s, %s), want (%s, %s)", i, got.Link, got.Href, want.link, want.href)
		}
	}
}

func TestBuildNavbarPreservesOrder(t *testing.T) {
	paths := []string{"/", "/docs/os/", "/docs/algorithm/", "/docs/network/", "/docs/interview/", "/docs/tools/"}
	specs := make([]EntrySpec, len(paths))
	for i, p := range paths {
		specs[i] = LinkSpec(p)
	}

	navbar, err := BuildNavbar(specs)
	if err != nil {
		t.Fatalf("BuildNavbar() error = %v", err)
	}
	got := make([]string, len(navbar))
	for i, e := range navbar {
		got[i] = e.Href
	}
	if !reflect.DeepEqual(got, paths) {
		t.Errorf("order = %v, want %v", got, paths)
	}
}

func TestBuildNavbarNestedGroup(t *testing.T) {
	specs := []EntrySpec{{
		Text:        "Middleware",
		Prefix:      "/docs/middleware/",
		HasChildren: true,
		Children: []EntrySpec{{
			Text:        "MQ",
			Prefix:      "mq/",
			HasChildren: true,
			Children:    []EntrySpec{LinkSpec("nats/")},
		}},
	}}

	navbar, err := BuildNavbar(specs)
	if err != nil {
		t.Fatalf("BuildNavbar() error = %v", err)
	}
	nats := navbar[0].Children[0].Children[0]
	if nats.Href != "/docs/middleware/mq/nats/" {
		t.Errorf("nested href = %s, want /docs/middleware/mq/nats/", nats.Href)
	}
	if nats.Text != "Nats" {
		t.Errorf("nested text = %s, want Nats", nats.Text)
	}
}

func TestBuildNavbarErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries []EntrySpec
		wantMsg string
	}{
		{
			name:    "empty group",
			entries: []EntrySpec{{Text: "Empty", Prefix: "/docs/", HasChildren: true}},
			wantMsg: "group has no children",
		},
		{
			name:    "relative top-level link",
			entries: []EntrySpec{LinkSpec("docs/a/")},
			wantMsg: "must start with /",
		},
		{
			name:    "empty link",
			entries: []EntrySpec{{Text: "Nowhere", Link: "   "}},
			wantMsg: "link destination is empty",
		},
		{
			name:    "neither link nor group",
			entries: []EntrySpec{{Text: "Orphan"}},
			wantMsg: "neither a link nor a group",
		},
		{
			name:    "malformed child",
			entries: []EntrySpec{{Text: "Guide", Prefix: "/guide/", HasChildren: true, Children: []EntrySpec{{Malformed: "entry must be a string or a mapping"}}}},
			wantMsg: "malformed entry",
		},
		{
			name:    "whitespace in path",
			entries: []EntrySpec{LinkSpec("/docs/a b/")},
			wantMsg: "whitespace",
		},
		{
			name: "group too deep",
			entries: []EntrySpec{{
				Text: "L0", Prefix: "/a/", HasChildren: true,
				Children: []EntrySpec{{
					Text: "L1", Prefix: "b/", HasChildren: true,
					Children: []EntrySpec{{
						Text: "L2", Prefix: "c/", HasChildren: true,
						Children: []EntrySpec{LinkSpec("d/")},
					}},
				}},
			}},
			wantMsg: "nest at most one level",
		},
		{
			name:    "group without text",
			entries: []EntrySpec{{Prefix: "/a/", HasChildren: true, Children: []EntrySpec{LinkSpec("b/")}}},
			wantMsg: "group text is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			navbar, err := BuildNavbar(tt.entries)
			if err == nil {
				t.Fatalf("BuildNavbar() = %v, want error", navbar)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error %T is not a *ConfigError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestBuildNavbarReportsEveryError(t *testing.T) {
	specs := []EntrySpec{
		LinkSpec("bad/"),
		LinkSpec("/good/"),
		{Text: "Empty", Prefix: "/e/", HasChildren: true, Line: 7},
	}

	_, err := BuildNavbar(specs)
	var errs ConfigErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error %T is not ConfigErrors", err)
	}
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), err)
	}
	if errs[0].Path != "navbar[0]" {
		t.Errorf("first error path = %s, want navbar[0]", errs[0].Path)
	}
	if errs[1].Path != "navbar[2].children" || errs[1].Line != 7 {
		t.Errorf("second error = %+v, want navbar[2].children at line 7", errs[1])
	}
}

func TestBuildNavbarIdempotent(t *testing.T) {
	specs := []EntrySpec{
		LinkSpec("/"),
		{Text: "Lang", Prefix: "/docs/language/", Icon: "/i.svg", HasChildren: true,
			Children: []EntrySpec{LinkSpec("cpp/"), LinkSpec("go/")}},
	}
	first, err := BuildNavbar(specs)
	if err != nil {
		t.Fatalf("BuildNavbar() error = %v", err)
	}

	second, err := BuildNavbar(SpecsFromNavbar(first))
	if err != nil {
		t.Fatalf("rebuild error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("rebuild differs:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "Home"},
		{"/docs/algorithm/", "Algorithm"},
		{"/docs/web_server/", "Web Server"},
		{"/docs/cs-basics", "Cs Basics"},
		{"/demo/encrypt.html", "Encrypt"},
		{"x/", "X"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := TitleFromPath(tt.path); got != tt.want {
				t.Errorf("TitleFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
