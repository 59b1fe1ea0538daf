package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is where golden files live, relative to the test's package.
const GoldenDir = "testdata/golden"

// AssertGolden compares data against testdata/golden/{name}.golden.
//
// To regenerate golden files, run the package tests with -update.
func AssertGolden(t *testing.T, name string, data []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
