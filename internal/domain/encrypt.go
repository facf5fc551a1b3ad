package domain

import (
	"fmt"
	"sort"

	"golang.org/x/crypto/bcrypt"
)

// EncryptSpec declares the passwords protecting a page or a subtree.
// A path ending in "/" protects everything below it.
type EncryptSpec struct {
	Path      string
	Hint      string
	Passwords []string
	Line      int
}

// EncryptRule is a validated rule. Only bcrypt hashes are kept.
type EncryptRule struct {
	Path string `json:"path"`
	Hint string `json:"hint,omitempty"`

	key    string
	hashes [][]byte
}

// Verify reports whether password unlocks the rule.
func (r EncryptRule) Verify(password string) bool {
	for _, h := range r.hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(password)) == nil {
			return true
		}
	}
	return false
}

// Encryption is the immutable set of encrypt rules, longest path first.
type Encryption struct {
	rules []EncryptRule
}

// BuildEncryption validates the declared rules and hashes their passwords
// with the given bcrypt cost (bcrypt.DefaultCost when cost is 0).
func BuildEncryption(specs []EncryptSpec, cost int) (*Encryption, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	var errs ConfigErrors
	seen := make(map[string]int, len(specs))
	rules := make([]EncryptRule, 0, len(specs))

	for _, spec := range specs {
		loc := fmt.Sprintf("encrypt[%q]", spec.Path)
		if reason := validatePath(spec.Path); reason != "" {
			errs.add(loc, spec.Line, "malformed encrypt path: "+reason, spec.Path)
			continue
		}
		if line, dup := seen[spec.Path]; dup {
			errs.add(loc, spec.Line, fmt.Sprintf("duplicate encrypt path (first declared on line %d)", line), spec.Path)
			continue
		}
		seen[spec.Path] = spec.Line

		if len(spec.Passwords) == 0 {
			errs.add(loc, spec.Line, "encrypt rule has no password", "")
			continue
		}
		rule := EncryptRule{Path: spec.Path, Hint: spec.Hint, key: spec.Path}
		for i, pw := range spec.Passwords {
			if pw == "" {
				errs.add(fmt.Sprintf("%s.password[%d]", loc, i), spec.Line, "password is empty", "")
				continue
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
			if err != nil {
				errs.add(fmt.Sprintf("%s.password[%d]", loc, i), spec.Line, "cannot hash password: "+err.Error(), "")
				continue
			}
			rule.hashes = append(rule.hashes, hash)
		}
		if len(rule.hashes) == len(spec.Passwords) {
			rules = append(rules, rule)
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	sort.SliceStable(rules, func(a, b int) bool { return len(rules[a].key) > len(rules[b].key) })
	return &Encryption{rules: rules}, nil
}

// Lookup returns the most specific rule protecting requestPath.
func (e *Encryption) Lookup(requestPath string) (EncryptRule, bool) {
	if e == nil {
		return EncryptRule{}, false
	}
	p := cleanRequestPath(requestPath)
	for _, r := range e.rules {
		if p == r.key || (r.key[len(r.key)-1] == '/' && hasPathPrefix(p, r.key)) {
			return r, true
		}
	}
	return EncryptRule{}, false
}

// Rules returns the rules, most specific first.
func (e *Encryption) Rules() []EncryptRule {
	if e == nil {
		return nil
	}
	out := make([]EncryptRule, len(e.rules))
	copy(out, e.rules)
	return out
}
