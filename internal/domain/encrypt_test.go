package domain

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestEncryptionLookupAndVerify(t *testing.T) {
	enc, err := BuildEncryption([]EncryptSpec{
		{Path: "/demo/encrypt.html", Hint: "Password: 1234", Passwords: []string{"1234"}},
		{Path: "/private/", Passwords: []string{"alpha", "beta"}},
	}, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("BuildEncryption() error = %v", err)
	}

	tests := []struct {
		name     string
		path     string
		locked   bool
		password string
		ok       bool
	}{
		{"page exact", "/demo/encrypt.html", true, "1234", true},
		{"page wrong password", "/demo/encrypt.html", true, "nope", false},
		{"page does not cover siblings", "/demo/other.html", false, "", false},
		{"dir covers children", "/private/notes/a.html", true, "beta", true},
		{"dir covers itself without slash", "/private", true, "alpha", true},
		{"segment boundary", "/privateer/", false, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, locked := enc.Lookup(tt.path)
			if locked != tt.locked {
				t.Fatalf("Lookup(%q) locked = %v, want %v", tt.path, locked, tt.locked)
			}
			if !locked {
				return
			}
			if got := rule.Verify(tt.password); got != tt.ok {
				t.Errorf("Verify(%q) = %v, want %v", tt.password, got, tt.ok)
			}
		})
	}
}

func TestBuildEncryptionErrors(t *testing.T) {
	tests := []struct {
		name    string
		specs   []EncryptSpec
		wantMsg string
	}{
		{"no password", []EncryptSpec{{Path: "/a.html"}}, "no password"},
		{"empty password", []EncryptSpec{{Path: "/a.html", Passwords: []string{""}}}, "password is empty"},
		{"relative path", []EncryptSpec{{Path: "a.html", Passwords: []string{"x"}}}, "must start with /"},
		{"duplicate", []EncryptSpec{
			{Path: "/a.html", Passwords: []string{"x"}, Line: 4},
			{Path: "/a.html", Passwords: []string{"y"}, Line: 9},
		}, "first declared on line 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildEncryption(tt.specs, bcrypt.MinCost)
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("BuildEncryption() error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestBuildThemeRejectsUnknownOption(t *testing.T) {
	if _, err := BuildTheme(map[string]any{"logo": "/books.svg", "darkmode": "switch"}); err != nil {
		t.Fatalf("BuildTheme() error = %v", err)
	}

	_, err := BuildTheme(map[string]any{"logo": "/x.svg", "navbarr": true})
	if err == nil || !strings.Contains(err.Error(), "theme.navbarr") {
		t.Errorf("BuildTheme() error = %v, want unknown option theme.navbarr", err)
	}
}

func TestThemeOptionsIsACopy(t *testing.T) {
	theme, err := BuildTheme(map[string]any{"logo": "/a.svg"})
	if err != nil {
		t.Fatalf("BuildTheme() error = %v", err)
	}
	opts := theme.Options()
	opts["logo"] = "/changed.svg"
	if v, _ := theme.Get("logo"); v != "/a.svg" {
		t.Errorf("theme mutated through Options(): logo = %v", v)
	}
}
