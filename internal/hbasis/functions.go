package hbasis

import "math"

// Function identifies one tensor hat function: the hat centred on breakpoint
// multi-index Node of level Level.
type Function struct {
	Level int
	Node  []int
}

// Term is the value of one active basis function at a point.
type Term struct {
	Index int
	Value float64
}

// NumFunctions returns the number of active basis functions.
func (b *Basis) NumFunctions() int {
	b.ensureFunctions()
	return len(b.funcs)
}

// Functions returns the active basis functions in a stable order: by level,
// then by node with the last dimension fastest.
func (b *Basis) Functions() []Function {
	b.ensureFunctions()
	out := make([]Function, len(b.funcs))
	for i, f := range b.funcs {
		out[i] = Function{Level: f.Level, Node: append([]int(nil), f.Node...)}
	}
	return out
}

// Eval returns the active functions that are nonzero at parameter u together
// with their values. Parameters outside the domain are clamped onto it.
func (b *Basis) Eval(u []float64) []Term {
	b.ensureFunctions()

	var terms []Term
	t := make([]float64, b.dim)
	cell := make([]int, b.dim)
	node := make([]int, b.dim)
	for level := 0; level <= b.maxLevel; level++ {
		index := b.nodeIndex[level]
		if len(index) == 0 {
			continue
		}
		for dim := 0; dim < b.dim; dim++ {
			n := b.Cells(level, dim)
			x := (u[dim] - b.lower[dim]) / (b.upper[dim] - b.lower[dim])
			x = math.Min(math.Max(x, 0), 1)
			t[dim] = x * float64(n)
			cell[dim] = clamp(int(math.Floor(t[dim])), 0, n-1)
		}

		// Visit the 2^d corners of the containing cell.
		for corner := 0; corner < 1<<uint(b.dim); corner++ {
			value := 1.0
			for dim := 0; dim < b.dim; dim++ {
				node[dim] = cell[dim] + (corner>>uint(dim))&1
				value *= math.Max(0, 1-math.Abs(t[dim]-float64(node[dim])))
			}
			if value == 0 {
				continue
			}
			if fi, ok := index[b.nodeOffset(node, level)]; ok {
				terms = append(terms, Term{Index: fi, Value: value})
			}
		}
	}
	return terms
}

func (b *Basis) ensureFunctions() {
	if b.funcs != nil {
		return
	}

	b.funcs = []Function{}
	b.nodeIndex = make([]map[int]int, b.maxLevel+1)
	lo := make([]int, b.dim)
	hi := make([]int, b.dim)
	supLo := make([]int, b.dim)
	supHi := make([]int, b.dim)

	for level := 0; level <= b.maxLevel; level++ {
		b.nodeIndex[level] = map[int]int{}
		for dim := 0; dim < b.dim; dim++ {
			hi[dim] = b.NumBreaks(level, dim)
		}
		forEachIndex(lo, hi, func(node []int) {
			for dim := 0; dim < b.dim; dim++ {
				n := b.Cells(level, dim)
				supLo[dim] = clamp(node[dim]-1, 0, n-1)
				supHi[dim] = clamp(node[dim], 0, n-1) + 1
			}
			// Active when the support sits in Omega^level but not Omega^(level+1),
			// i.e. the coarsest level under the support is exactly level.
			if b.QueryCoarsestActiveLevel(supLo, supHi, level) != level {
				return
			}
			b.nodeIndex[level][b.nodeOffset(node, level)] = len(b.funcs)
			b.funcs = append(b.funcs, Function{Level: level, Node: append([]int(nil), node...)})
		})
	}
}

func (b *Basis) nodeOffset(node []int, level int) int {
	off := 0
	for dim := 0; dim < b.dim; dim++ {
		off = off*b.NumBreaks(level, dim) + node[dim]
	}
	return off
}
