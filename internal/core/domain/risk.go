package domain

import (
	"fmt"
	"time"
)

// Band is the severity classification of an E×P×F risk value. The band
// thresholds are fixed and inclusive; every surface that displays a risk
// (wizard preview, evidence rows, generated documents) recomputes the band
// from the factors so the text can never drift.
type Band string

const (
	BandAcceptable   Band = "acceptable"
	BandMonitor      Band = "monitor"
	BandUnacceptable Band = "unacceptable"
)

const (
	acceptableMax = 36
	monitorMax    = 70

	factorMin = 1
	factorMax = 6
)

// Factors is one E×P×F triple: severity of consequence, probability of
// occurrence and frequency of exposure, each ordinal 1-6.
type Factors struct {
	Severity    int `json:"severity"`
	Probability int `json:"probability"`
	Frequency   int `json:"frequency"`
}

func (f Factors) Validate() error {
	for name, v := range map[string]int{
		"severity":    f.Severity,
		"probability": f.Probability,
		"frequency":   f.Frequency,
	} {
		if v < factorMin || v > factorMax {
			return WrapError(ErrInvalidInput, "validate risk factors",
				fmt.Errorf("%s must be between %d and %d, got %d", name, factorMin, factorMax, v))
		}
	}
	return nil
}

// Value is the raw risk product, range 1-216 for valid factors.
func (f Factors) Value() int {
	return f.Severity * f.Probability * f.Frequency
}

// ClassifyValue maps a risk value to its band: <=36 acceptable,
// 37-70 monitor, >70 unacceptable.
func ClassifyValue(value int) Band {
	switch {
	case value <= acceptableMax:
		return BandAcceptable
	case value <= monitorMax:
		return BandMonitor
	default:
		return BandUnacceptable
	}
}

// Score is one computed (value, band) pair.
type Score struct {
	Value int  `json:"value"`
	Band  Band `json:"band"`
}

// Classify validates the factors and computes their score. Out-of-range
// factors are a caller contract violation and fail hard.
func Classify(f Factors) (Score, error) {
	if err := f.Validate(); err != nil {
		return Score{}, err
	}
	value := f.Value()
	return Score{Value: value, Band: ClassifyValue(value)}, nil
}

// RiskPair is the scored initial/residual pair of one hazard assessment.
type RiskPair struct {
	Initial  Score `json:"initial"`
	Residual Score `json:"residual"`
}

// ScorePair computes both scores and enforces that corrective measures
// actually reduce the risk: the residual value must be strictly below the
// initial value.
func ScorePair(initial, residual Factors) (RiskPair, error) {
	initialScore, err := Classify(initial)
	if err != nil {
		return RiskPair{}, err
	}
	residualScore, err := Classify(residual)
	if err != nil {
		return RiskPair{}, err
	}
	if residualScore.Value >= initialScore.Value {
		return RiskPair{}, WrapError(ErrInvalidInput, "score risk pair",
			fmt.Errorf("residual risk %d must be lower than initial risk %d", residualScore.Value, initialScore.Value))
	}
	return RiskPair{Initial: initialScore, Residual: residualScore}, nil
}

// HazardAssessment is one hazard row of a work-position risk assessment.
// Rows are immutable once attached to a generated document version; a
// reassessment inserts a new row referencing the superseded one.
type HazardAssessment struct {
	ID         string `json:"id"`
	CompanyID  string `json:"company_id"`
	PositionID string `json:"position_id"`

	HazardCode string `json:"hazard_code"`
	HazardName string `json:"hazard_name"`

	Initial  Factors `json:"initial"`
	Residual Factors `json:"residual"`
	Measures string  `json:"measures"`

	// IsHighRisk denormalizes "initial band is unacceptable" for position
	// queries. The single writer keeps it in sync with the factors.
	IsHighRisk bool `json:"is_high_risk"`

	SupersedesID      string `json:"supersedes_id,omitempty"`
	DocumentVersionID string `json:"document_version_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Pair rescores the stored factors. It never fails for a persisted
// assessment because the factors were validated at write time.
func (a *HazardAssessment) Pair() RiskPair {
	initialValue := a.Initial.Value()
	residualValue := a.Residual.Value()
	return RiskPair{
		Initial:  Score{Value: initialValue, Band: ClassifyValue(initialValue)},
		Residual: Score{Value: residualValue, Band: ClassifyValue(residualValue)},
	}
}
