// Package testutil provides shared test utilities for hsfit.
//
// # Fixtures
//
// The fixtures.go file provides sample data for testing:
//
//   - SampleErrors() - the nine evenly spaced errors 0.1 to 0.9
//   - SampleCloud1D(n, f), SampleCloud2D(n, f) - point clouds sampled on a
//     uniform parameter grid over the unit interval or square
//   - Quadratic, Ridge - smooth target functions for fitting tests
//   - SampleHistory(), SampleHistoryStalled() - history entries for testing
//
// # Environment Helpers
//
// The env.go file provides test environment setup:
//
//   - SetupTestDir(t) - creates a temp directory with .hsfit structure
//   - WriteTestFile(t, base, path, content) - writes a file in test dir
//   - WritePointsCSV(t, base, name, params, points) - writes a point cloud
//   - MustMarshalJSON(t, v), MustUnmarshalJSON(t, data, v)
//
// # Assertions
//
// The assertions.go file provides custom test assertions:
//
//   - AssertBoxesEqual(t, expected, actual) - structural box diff
//   - AssertBoxesWithin(t, boxes, numBreaks) - corner bounds per level
//   - AssertHistoryLength(t, history, expected)
//   - AssertHistoryImproves(t, history) - last max error below the first
//
// # Usage
//
//	func TestSomething(t *testing.T) {
//	    tmpDir, store := testutil.SetupTestDir(t)
//	    params, points := testutil.SampleCloud1D(33, testutil.Quadratic)
//	    // ... run test ...
//	}
package testutil
