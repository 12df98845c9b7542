// Package refine drives adaptive hierarchical fitting.
//
// A Refiner owns the refine/refit cycle for one fitting session:
//   - SelectThreshold turns the current point errors into an error cutoff
//   - a Marker converts the points at or above the cutoff into refinement
//     boxes, one per distinct max-level cell, each targeting the level just
//     above the cell's current level
//   - NextIteration applies one batch of boxes to the basis and refits
//   - IterativeRefine repeats NextIteration until the tolerance is met, no
//     boxes remain, or the iteration budget is spent
//
// The fitting engine and the hierarchical basis are reached only through the
// Session and HierarchicalBasis interfaces. DetectStall and ReductionRate
// summarise a refinement trace for reporting.
package refine
