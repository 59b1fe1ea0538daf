package ir

// ModuleRecord is one input file as it moves through the pipeline.
//
// Stages fill the fields strictly in order: File, Content, ID, Global, then
// DepIDs (extraction) and Deps (linking). Content is rewritten in place by
// extraction and define-shim insertion.
type ModuleRecord struct {
	File    string   `json:"file"`   // absolute source path
	ID      string   `json:"id"`     // canonical identifier, graph key
	Global  string   `json:"global"` // emitted global variable name
	Content string   `json:"-"`      // module text, mutated in place
	DepIDs  []string `json:"deps"`   // dependency identifiers in call-site order

	// Deps holds the records DepIDs resolved to. Unknown identifiers have no
	// entry here.
	Deps []*ModuleRecord `json:"-"`

	// External lists lookup paths that resolved outside the package root.
	// They are left unrewritten.
	External []string `json:"external,omitempty"`
}

// NewModuleRecord creates a record for an absolute file path.
func NewModuleRecord(file string) *ModuleRecord {
	return &ModuleRecord{File: file}
}

// Package is the subset of the package descriptor the bundler needs.
type Package struct {
	Name string `json:"name"`
	Main string `json:"main,omitempty"`

	// Path is the absolute descriptor path; Root is its directory and the
	// root every module ID is relative to.
	Path string `json:"path"`
	Root string `json:"root"`
}

// MainEntry returns the declared main entry, falling back to the name.
func (p *Package) MainEntry() string {
	if p.Main != "" {
		return p.Main
	}
	return p.Name
}
