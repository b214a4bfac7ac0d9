package inference

import "sort"

// FindPeaks returns the indices of local maxima at or above height, in
// ascending order. When two peaks are closer than distance samples only the
// higher one is kept.
func FindPeaks(signal []float64, height float64, distance int) []int {
	var cand []int
	for i := 0; i < len(signal); i++ {
		v := signal[i]
		if v < height {
			continue
		}
		if i > 0 && signal[i-1] >= v {
			continue
		}
		// plateaus report their first sample
		j := i + 1
		for j < len(signal) && signal[j] == v {
			j++
		}
		if j < len(signal) && signal[j] > v {
			continue
		}
		cand = append(cand, i)
	}
	if distance <= 1 || len(cand) < 2 {
		return cand
	}

	byHeight := append([]int(nil), cand...)
	sort.SliceStable(byHeight, func(a, b int) bool { return signal[byHeight[a]] > signal[byHeight[b]] })
	var kept []int
	for _, p := range byHeight {
		ok := true
		for _, k := range kept {
			if abs(p-k) < distance {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, p)
		}
	}
	sort.Ints(kept)
	return kept
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
