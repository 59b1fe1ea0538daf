// Package collect turns glob patterns into the ordered list of module files
// a bundle is built from.
//
// Patterns use doublestar syntax ("lib/**/*.js"). Relative patterns are
// resolved against a base directory, usually the working directory. The
// configured output path is always excluded so a bundle never ingests its
// own previous output.
package collect
