package scoring

import (
	"errors"
	"fmt"
)

// ErrUnknownVersion is returned for formula versions outside the supported
// set. The version set is code-controlled, so hitting this is a programming
// bug rather than bad user input.
var ErrUnknownVersion = errors.New("unknown scoring formula version")

// Input is a user's aggregated feedback history.
type Input struct {
	Likes       int
	Dislikes    int
	Possible    int
	Submissions int
}

// Params are the tunable scoring constants. PriorMean is the population mean
// like rate used for Bayesian shrinkage, recomputed per batch run.
type Params struct {
	PriorStrength       float64 `json:"prior_strength"`       // alpha
	PriorMean           float64 `json:"prior_mean"`           // mu
	ParticipationWeight float64 `json:"participation_weight"` // beta
	ParticipationCap    int     `json:"participation_cap"`    // S_max
}

// Formula is one version of the Drop Cred computation. Apply returns the raw
// (pre-clamp, pre-round) score on the 0-10 scale.
type Formula interface {
	Version() int
	Apply(in Input, p Params) float64
}

// ForVersion selects the formula strategy for an explicit version number.
func ForVersion(version int) (Formula, error) {
	switch version {
	case 1:
		return Ratio{}, nil
	case 2:
		return NetRatio{}, nil
	case 3:
		return BayesianSmoothed{}, nil
	case 4:
		return BayesianPlusParticipation{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}
}

// Ratio is version 1: pure approval ratio.
type Ratio struct{}

func (Ratio) Version() int { return 1 }

func (Ratio) Apply(in Input, _ Params) float64 {
	if in.Possible == 0 {
		return 0
	}
	return float64(in.Likes) / float64(in.Possible) * 10
}

// NetRatio is version 2: likes minus dislikes over possible.
type NetRatio struct{}

func (NetRatio) Version() int { return 2 }

func (NetRatio) Apply(in Input, _ Params) float64 {
	if in.Possible == 0 {
		return 0
	}
	return float64(in.Likes-in.Dislikes) / float64(in.Possible) * 10
}

// BayesianSmoothed is version 3: approval rate shrunk toward the population
// prior. With possible = 0 it degrades to the prior-only term.
type BayesianSmoothed struct{}

func (BayesianSmoothed) Version() int { return 3 }

func (BayesianSmoothed) Apply(in Input, p Params) float64 {
	denominator := float64(in.Possible) + p.PriorStrength
	if denominator == 0 {
		return 0
	}
	return (float64(in.Likes) + p.PriorStrength*p.PriorMean) / denominator * 10
}

// BayesianPlusParticipation is version 4: the v3 base plus a capped
// participation bonus independent of rating quality.
type BayesianPlusParticipation struct{}

func (BayesianPlusParticipation) Version() int { return 4 }

func (BayesianPlusParticipation) Apply(in Input, p Params) float64 {
	base := BayesianSmoothed{}.Apply(in, p)

	if p.ParticipationCap <= 0 {
		return base
	}
	rate := float64(in.Submissions) / float64(p.ParticipationCap)
	if rate > 1 {
		rate = 1
	}
	return base + p.ParticipationWeight*rate*10
}
