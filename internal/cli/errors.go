package cli

import (
	"errors"
	"io/fs"

	"github.com/roach88/anachronize/internal/bundle"
	"github.com/roach88/anachronize/internal/collect"
	"github.com/roach88/anachronize/internal/compiler"
	"github.com/roach88/anachronize/internal/ir"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Config file or template file unusable
	ErrCodeNoPatterns   = "E003" // No input globs given
	ErrCodeDescriptor   = "E004" // Package descriptor missing or invalid
	ErrCodeBadPattern   = "E005" // Glob or exclude pattern invalid
	ErrCodeNoModules    = "E006" // Globs matched nothing
	ErrCodeReadFailed   = "E007" // Module file unreadable
	ErrCodeUnresolvable = "E008" // Module outside the package root
	ErrCodeCycle        = "E009" // Dependency cycle
	ErrCodeCollision    = "E010" // Two modules share a global name
	ErrCodeDangling     = "E011" // Unresolved dependency in strict mode
	ErrCodeDuplicateID  = "E012" // Two files derive the same module ID
	ErrCodeWriteFailed  = "E013" // Output write error
)

// classify maps a pipeline error to its CLI error code and exit code.
// Errors about the input graph exit with ExitFailure; everything that
// stops the run before the graph exists is a command error.
func classify(err error) (string, int) {
	var (
		descErr    *bundle.DescriptorError
		patternErr *collect.PatternError
		idErr      *ir.UnresolvableIDError
		compErr    *compiler.Error
		pathErr    *fs.PathError
	)

	switch {
	case errors.As(err, &descErr):
		return ErrCodeDescriptor, ExitCommandError
	case errors.As(err, &patternErr):
		return ErrCodeBadPattern, ExitCommandError
	case errors.Is(err, bundle.ErrNoModules):
		return ErrCodeNoModules, ExitCommandError
	case errors.As(err, &idErr):
		return ErrCodeUnresolvable, ExitCommandError
	case errors.As(err, &compErr):
		return compilerCode(compErr.Code), ExitFailure
	case errors.As(err, &pathErr):
		return ErrCodeReadFailed, ExitCommandError
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

func compilerCode(code compiler.ErrorCode) string {
	switch code {
	case compiler.ErrCodeCycle:
		return ErrCodeCycle
	case compiler.ErrCodeCollision:
		return ErrCodeCollision
	case compiler.ErrCodeDangling:
		return ErrCodeDangling
	case compiler.ErrCodeDuplicateID:
		return ErrCodeDuplicateID
	default:
		return ErrCodeGeneric
	}
}

// errorDetails returns the structured context worth showing for err.
func errorDetails(err error) interface{} {
	var compErr *compiler.Error
	if errors.As(err, &compErr) {
		details := map[string]interface{}{}
		if compErr.File != "" {
			details["file"] = compErr.File
		}
		if len(compErr.Path) > 0 {
			details["cycle"] = compErr.Path
		}
		if len(details) > 0 {
			return details
		}
		return nil
	}

	var idErr *ir.UnresolvableIDError
	if errors.As(err, &idErr) {
		return map[string]string{"file": idErr.File, "root": idErr.Root}
	}
	return nil
}

// reportError writes err through the formatter and converts it to an
// ExitError for the caller to return.
func reportError(f *OutputFormatter, message string, err error) error {
	code, exit := classify(err)
	if outErr := f.Error(code, err.Error(), errorDetails(err)); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, message, err)
}
