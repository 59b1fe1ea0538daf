// Package ir provides the data model shared by every stage of the bundler.
//
// This package contains the module record, the package descriptor and the
// naming rules that turn a file path into a canonical identifier and a
// global name. All other internal packages import ir; ir imports nothing
// internal.
//
// Key constraints:
//   - A module's ID is derived once from its file path relative to the
//     package root and never changes afterwards
//   - IDs always use "/" separators, whatever the host OS uses
//   - IDs are NFC normalized so NFD file systems produce the same IDs
package ir
