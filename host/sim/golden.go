package sim

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunGolden runs the scenario file at path and compares its transcript with
// testdata/golden/<name>.golden. Run the test with -update to rewrite it.
func RunGolden(t *testing.T, path string) *Result {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load %s: %v", filepath.Base(path), err)
	}
	res, err := Run(s)
	if err != nil {
		t.Fatalf("run %s: %v", s.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, []byte(res.Transcript()))
	return res
}
