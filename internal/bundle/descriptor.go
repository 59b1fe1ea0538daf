package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/anachronize/internal/ir"
)

// packageSchema constrains the descriptor fields the bundler reads. The
// struct is open: every other field of a package.json is accepted as is.
const packageSchema = `
#Package: {
	name:  string & =~"^[^\\s]+$"
	main?: string
	...
}
`

// DescriptorError reports a missing or unusable package descriptor.
type DescriptorError struct {
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *DescriptorError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *DescriptorError) Unwrap() error {
	return e.Err
}

// LoadPackage reads a JSON package descriptor and validates it.
//
// JSON is a subset of CUE, so the file is compiled as CUE and unified with
// a schema that requires a non-blank name and an optional string main. An
// empty main falls back to the name, like an absent one.
// The returned package's Root is the descriptor's directory.
func LoadPackage(path string) (*ir.Package, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &DescriptorError{Path: path, Message: "resolving path", Err: err}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &DescriptorError{Path: abs, Message: fmt.Sprintf("reading package descriptor: %v", err), Err: err}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(abs))
	if err := value.Err(); err != nil {
		return nil, descriptorCUEError(abs, "parsing package descriptor", err)
	}
	if value.IncompleteKind() != cue.StructKind {
		return nil, &DescriptorError{Path: abs, Message: "package descriptor must be a JSON object"}
	}

	schema := ctx.CompileString(packageSchema).LookupPath(cue.ParsePath("#Package"))
	value = schema.Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, descriptorCUEError(abs, "invalid package descriptor", err)
	}

	pkg := &ir.Package{Path: abs, Root: filepath.Dir(abs)}
	if pkg.Name, err = value.LookupPath(cue.ParsePath("name")).String(); err != nil {
		return nil, descriptorCUEError(abs, "reading name", err)
	}
	if main := value.LookupPath(cue.ParsePath("main")); main.Exists() {
		if pkg.Main, err = main.String(); err != nil {
			return nil, descriptorCUEError(abs, "reading main", err)
		}
	}

	return pkg, nil
}

// descriptorCUEError keeps the first CUE error and its position.
func descriptorCUEError(path, what string, err error) error {
	derr := &DescriptorError{Path: path, Message: fmt.Sprintf("%s: %v", what, err), Err: err}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return derr
	}
	derr.Message = fmt.Sprintf("%s: %s", what, errs[0].Error())

	// Schema positions have no file name; only report positions in the descriptor.
	for _, pos := range errors.Positions(errs[0]) {
		if pos.Filename() == path {
			derr.Pos = pos
			break
		}
	}
	return derr
}
