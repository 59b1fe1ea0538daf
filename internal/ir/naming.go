package ir

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SourceExt is the extension stripped from file paths to form IDs.
const SourceExt = ".js"

// Namespace separators for global names.
const (
	SepFlat   = "_" // foo_util: one global per module
	SepNested = "." // foo.util: one shared namespace object
)

// UnresolvableIDError reports a file that does not lie under the package root.
type UnresolvableIDError struct {
	File string
	Root string
}

func (e *UnresolvableIDError) Error() string {
	return fmt.Sprintf("cannot derive module id for %s: not under package root %s", e.File, e.Root)
}

// Namer derives canonical identifiers and global names.
//
// A Namer is immutable after construction and safe for concurrent use.
type Namer struct {
	root   string
	prefix string // package name + separator
	sep    string
	main   string
}

// NewNamer creates a Namer for the package rooted at root.
//
// main is the package's main entry as declared in the descriptor; only its
// final path segment matters (see MainIdentifier).
func NewNamer(root, pkgName, main string, singleNamespace bool) *Namer {
	sep := SepFlat
	if singleNamespace {
		sep = SepNested
	}
	return &Namer{
		root:   filepath.Clean(root),
		prefix: pkgName + sep,
		sep:    sep,
		main:   MainIdentifier(main),
	}
}

// Root returns the package root directory.
func (n *Namer) Root() string { return n.root }

// Main returns the bare main identifier.
func (n *Namer) Main() string { return n.main }

// Namespace returns the prefix put in front of every non-main global,
// including the trailing separator.
func (n *Namer) Namespace() string { return n.prefix }

// SingleNamespace reports whether globals share one namespace object.
func (n *Namer) SingleNamespace() bool { return n.sep == SepNested }

// ID returns the canonical identifier of an absolute file path: the path
// relative to the package root, "/"-separated, without the source extension.
func (n *Namer) ID(file string) (string, error) {
	rel, err := filepath.Rel(n.root, filepath.Clean(file))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &UnresolvableIDError{File: file, Root: n.root}
	}

	id := strings.TrimSuffix(filepath.ToSlash(rel), SourceExt)
	if id == "" {
		return "", &UnresolvableIDError{File: file, Root: n.root}
	}
	return norm.NFC.String(id), nil
}

// Global returns the global variable name for an identifier.
//
// A module whose final segment equals the main identifier gets that bare
// segment. Every other module gets the namespace prefix followed by its ID
// with "/" replaced by "_".
func (n *Namer) Global(id string) string {
	base := id[strings.LastIndex(id, "/")+1:]
	if base == n.main {
		return base
	}
	return n.prefix + strings.ReplaceAll(id, "/", "_")
}

// IsMainAlias reports whether global is the bare main name.
func (n *Namer) IsMainAlias(global string) bool {
	return global == n.main
}

// MainIdentifier reduces a declared main entry to its bare identifier:
// "./lib/index.js", "foo/index" and "index" all become "index".
func MainIdentifier(entry string) string {
	entry = strings.TrimSuffix(filepath.ToSlash(entry), SourceExt)
	entry = strings.TrimRight(entry, "/")
	if i := strings.LastIndex(entry, "/"); i >= 0 {
		entry = entry[i+1:]
	}
	return norm.NFC.String(entry)
}
