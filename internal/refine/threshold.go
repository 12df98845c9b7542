package refine

import "math"

// SelectThreshold returns the error cutoff that marks the worst percentage
// fraction of points: the value of rank N-ceil(N*percentage) in ascending
// order, which is floor(N*(1-percentage)) in exact arithmetic. At least
// ceil(N*percentage) errors are >= the result, and equal errors are all marked
// together. A percentage of 0 selects the largest error. The input is not
// modified; an empty input yields 0.
func SelectThreshold(errors []float64, percentage float64) float64 {
	n := len(errors)
	if n == 0 {
		return 0
	}

	k := n - int(math.Ceil(float64(n)*percentage))
	if k >= n {
		k = n - 1
	}
	if k < 0 {
		k = 0
	}

	work := append([]float64(nil), errors...)
	return nthElement(work, k)
}

// nthElement places the k-th smallest value of a at index k and returns it.
// Quickselect with a median-of-three pivot and a three-way partition, so
// runs of equal values are settled in one pass and results do not depend on
// any random source.
func nthElement(a []float64, k int) float64 {
	lo, hi := 0, len(a)-1
	for lo < hi {
		pivot := medianOfThree(a[lo], a[lo+(hi-lo)/2], a[hi])

		// a[lo:lt] < pivot, a[lt:i] == pivot, a[gt+1:hi+1] > pivot
		lt, i, gt := lo, lo, hi
		for i <= gt {
			switch {
			case a[i] < pivot:
				a[lt], a[i] = a[i], a[lt]
				lt++
				i++
			case a[i] > pivot:
				a[i], a[gt] = a[gt], a[i]
				gt--
			default:
				i++
			}
		}

		switch {
		case k < lt:
			hi = lt - 1
		case k > gt:
			lo = gt + 1
		default:
			return a[k]
		}
	}
	return a[k]
}

func medianOfThree(x, y, z float64) float64 {
	if x > y {
		x, y = y, x
	}
	if y > z {
		y = z
	}
	if x > y {
		return x
	}
	return y
}
