package site

import "gopkg.in/yaml.v3"

// Document is the top-level structure of site.yaml.
//
// Every section is kept as a raw node: the decoder stops at the first shape
// problem with a bare parse error, and duplicate mapping keys would be lost.
// The mapper walks the nodes and reports each problem with its location.
type Document struct {
	Navbar  yaml.Node `yaml:"navbar"`
	Sidebar yaml.Node `yaml:"sidebar"`
	Theme   yaml.Node `yaml:"theme"`
	Encrypt yaml.Node `yaml:"encrypt"`

	// Checksum is the hex SHA-256 of the raw source, set by the loader.
	Checksum string `yaml:"-"`
	// Raw holds the source bytes as written, placeholders unexpanded.
	Raw []byte `yaml:"-"`
}

// Entry is the mapping form of a navbar or sidebar entry, as written by Encode.
type Entry struct {
	Text     string  `yaml:"text,omitempty"`
	Link     string  `yaml:"link,omitempty"`
	Icon     string  `yaml:"icon,omitempty"`
	Prefix   string  `yaml:"prefix,omitempty"`
	Children []Entry `yaml:"children,omitempty"`
}

// encryptFields is one value of the encrypt mapping. password may be a
// string or a list of strings.
type encryptFields struct {
	Hint     string    `yaml:"hint"`
	Password yaml.Node `yaml:"password"`
}
