package refine

// DetectStall reports whether the max error has failed to decrease across the
// last window records. A trace shorter than window is never stalled.
func DetectStall(trace []Record, window int) bool {
	if window <= 0 || len(trace) < window {
		return false
	}

	recent := trace[len(trace)-window:]
	best := recent[0].MaxError
	for _, rec := range recent[1:] {
		if rec.MaxError < best {
			return false
		}
	}
	return true
}

// ReductionRate returns the mean decrease of the max error per step over the
// last window records. Positive values mean the fit is improving.
func ReductionRate(trace []Record, window int) float64 {
	if window < 2 || len(trace) < 2 {
		return 0
	}
	if window > len(trace) {
		window = len(trace)
	}

	recent := trace[len(trace)-window:]
	steps := len(recent) - 1
	return (recent[0].MaxError - recent[len(recent)-1].MaxError) / float64(steps)
}
