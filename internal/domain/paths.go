package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// validatePath checks that p is a well-formed absolute site path.
// It returns an empty string when p is valid, otherwise the reason.
func validatePath(p string) string {
	switch {
	case p == "":
		return "path is empty"
	case !strings.HasPrefix(p, "/"):
		return "path must start with /"
	case strings.Contains(p, "//"):
		return "path contains an empty segment"
	case strings.IndexFunc(p, unicode.IsSpace) >= 0:
		return "path contains whitespace"
	case strings.Contains(p, "?") || strings.Contains(p, "#"):
		return "path must not carry a query or fragment"
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." {
			return "path contains a relative segment"
		}
	}
	return ""
}

// joinPath resolves p against base the way the renderer does: absolute
// paths ignore the base, relative ones are appended to it.
func joinPath(base, p string) string {
	if p == "" || strings.HasPrefix(p, "/") || base == "" {
		return p
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + p
}

// normalizePrefix gives every prefix a trailing slash so "/docs/go" and
// "/docs/go/" compare equal and match on segment boundaries only.
func normalizePrefix(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// hasPathPrefix reports whether requestPath lies under the normalized prefix.
// "/docs/go" and "/docs/go/intro.html" are under "/docs/go/",
// "/docs/golang/" is not.
func hasPathPrefix(requestPath, prefix string) bool {
	if prefix == "/" {
		return true
	}
	return strings.HasPrefix(requestPath, prefix) || requestPath+"/" == prefix
}

// TitleFromPath derives display text from the last segment of a path.
// Example: "/docs/web_server/" -> "Web Server", "/" -> "Home"
func TitleFromPath(p string) string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return "Home"
	}
	last := trimmed[strings.LastIndex(trimmed, "/")+1:]
	last = strings.TrimSuffix(last, ".html")
	last = strings.TrimSuffix(last, ".md")

	last = strings.ReplaceAll(last, "-", " ")
	last = strings.ReplaceAll(last, "_", " ")

	words := strings.Fields(last)
	caser := cases.Title(language.English)
	for i, word := range words {
		words[i] = caser.String(word)
	}
	return strings.Join(words, " ")
}
