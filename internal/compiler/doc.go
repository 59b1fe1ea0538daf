// Package compiler rewrites UMD modules into loader-free globals and orders
// them for emission.
//
// The stages, in pipeline order:
//
//  1. ExtractDependencies rewrites require('./rel') call sites to global
//     names and records the dependency IDs
//  2. InsertDefine replaces the UMD define guard with a shim that assigns
//     the factory result onto the module's global
//  3. LinkDependencies resolves dependency IDs to records
//  4. Merge orders records dependencies-first, each exactly once
//  5. Concat and Assemble produce the final script around the lookup shim
//
// Recognition is syntactic: only statically quoted relative paths are
// rewritten. Computed or concatenated arguments pass through untouched.
//
// Nothing in this package performs I/O.
package compiler
