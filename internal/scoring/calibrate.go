package scoring

import "math"

// stddev below this is treated as "no spread": remapping would divide by
// (nearly) zero and amplify noise in tiny populations.
const minSpread = 1e-9

const (
	DefaultTargetMean   = 5.0
	DefaultTargetSpread = 2.0
)

// Calibrate remaps a population of raw (pre-clamp) scores to a target mean
// and standard deviation via a z-score transform, then clamps and rounds each
// result. When the population has no spread the remap is skipped and the raw
// scores are only clamped and rounded.
//
// Statistics are computed fresh from the given slice on every call; nothing
// is cached across batch runs.
func Calibrate(raws []float64, targetMean, targetSpread float64) []float64 {
	out := make([]float64, len(raws))
	if len(raws) == 0 {
		return out
	}

	mean, stddev := populationStats(raws)
	if stddev < minSpread {
		for i, raw := range raws {
			out[i] = Finalize(raw)
		}
		return out
	}

	for i, raw := range raws {
		z := (raw - mean) / stddev
		out[i] = Finalize(targetMean + z*targetSpread)
	}
	return out
}

// populationStats returns the population mean and population standard
// deviation (not the sample estimator).
func populationStats(values []float64) (mean, stddev float64) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / n

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / n)
}
