package scoring

import "math"

const (
	scoreMin = 0.0
	scoreMax = 10.0
)

// Result is the outcome of one Drop Cred computation for one user.
type Result struct {
	Likes       int
	Dislikes    int
	Possible    int
	Submissions int
	Version     int
	Raw         float64 // pre-clamp, used for calibration
	Score       float64 // clamped to [0, 10], one decimal place
	Params      Params
}

// Compute runs one formula version over a user's feedback history. It is
// pure: persistence is the caller's concern.
func Compute(in Input, version int, p Params) (Result, error) {
	formula, err := ForVersion(version)
	if err != nil {
		return Result{}, err
	}

	raw := formula.Apply(in, p)
	return Result{
		Likes:       in.Likes,
		Dislikes:    in.Dislikes,
		Possible:    in.Possible,
		Submissions: in.Submissions,
		Version:     version,
		Raw:         raw,
		Score:       Finalize(raw),
		Params:      p,
	}, nil
}

// PopulationMean computes the global mean approval rate over the same
// denominator definition the formulas use. With zero possible votes in the
// whole population it falls back to the configured constant prior.
func PopulationMean(totalLikes, totalPossible int, fallback float64) float64 {
	if totalPossible == 0 {
		return fallback
	}
	return float64(totalLikes) / float64(totalPossible)
}

// Finalize clamps a raw score to [0, 10] and rounds to one decimal place.
func Finalize(raw float64) float64 {
	return round1(clamp(raw))
}

func clamp(v float64) float64 {
	if v < scoreMin {
		return scoreMin
	}
	if v > scoreMax {
		return scoreMax
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
