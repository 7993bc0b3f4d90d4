package domain

import "testing"

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		factors Factors
		value   int
		band    Band
	}{
		{"minimum", Factors{Severity: 1, Probability: 1, Frequency: 1}, 1, BandAcceptable},
		{"acceptable upper bound", Factors{Severity: 2, Probability: 3, Frequency: 6}, 36, BandAcceptable},
		{"acceptable upper bound alt", Factors{Severity: 6, Probability: 6, Frequency: 1}, 36, BandAcceptable},
		{"monitor lower region", Factors{Severity: 2, Probability: 4, Frequency: 5}, 40, BandMonitor},
		{"monitor upper bound", Factors{Severity: 2, Probability: 5, Frequency: 6}, 60, BandMonitor},
		{"unacceptable above seventy", Factors{Severity: 6, Probability: 6, Frequency: 2}, 72, BandUnacceptable},
		{"unacceptable high", Factors{Severity: 6, Probability: 6, Frequency: 3}, 108, BandUnacceptable},
		{"maximum", Factors{Severity: 6, Probability: 6, Frequency: 6}, 216, BandUnacceptable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, err := Classify(tc.factors)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if score.Value != tc.value {
				t.Fatalf("expected value %d, got %d", tc.value, score.Value)
			}
			if score.Band != tc.band {
				t.Fatalf("expected band %s, got %s", tc.band, score.Band)
			}
		})
	}
}

func TestClassifyIsPureOverFullRange(t *testing.T) {
	for e := 1; e <= 6; e++ {
		for p := 1; p <= 6; p++ {
			for f := 1; f <= 6; f++ {
				factors := Factors{Severity: e, Probability: p, Frequency: f}
				first, err := Classify(factors)
				if err != nil {
					t.Fatalf("Classify(%v) error = %v", factors, err)
				}
				second, err := Classify(factors)
				if err != nil {
					t.Fatalf("Classify(%v) repeat error = %v", factors, err)
				}
				if first != second {
					t.Fatalf("classification not stable for %v: %v vs %v", factors, first, second)
				}
				if first.Value != e*p*f {
					t.Fatalf("value mismatch for %v: got %d", factors, first.Value)
				}
				if first.Band != ClassifyValue(e*p*f) {
					t.Fatalf("band not a function of the product for %v", factors)
				}
			}
		}
	}
}

func TestClassifyRejectsOutOfRangeFactors(t *testing.T) {
	invalid := []Factors{
		{Severity: 0, Probability: 1, Frequency: 1},
		{Severity: 7, Probability: 1, Frequency: 1},
		{Severity: 1, Probability: 0, Frequency: 1},
		{Severity: 1, Probability: 1, Frequency: 7},
		{Severity: -1, Probability: 3, Frequency: 3},
	}
	for _, factors := range invalid {
		if _, err := Classify(factors); !IsKind(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %v, got %v", factors, err)
		}
	}
}

func TestScorePairEnforcesResidualBelowInitial(t *testing.T) {
	initial := Factors{Severity: 4, Probability: 4, Frequency: 4}
	residual := Factors{Severity: 2, Probability: 2, Frequency: 2}

	pair, err := ScorePair(initial, residual)
	if err != nil {
		t.Fatalf("ScorePair() error = %v", err)
	}
	if pair.Initial.Value != 64 || pair.Initial.Band != BandMonitor {
		t.Fatalf("unexpected initial score: %+v", pair.Initial)
	}
	if pair.Residual.Value != 8 || pair.Residual.Band != BandAcceptable {
		t.Fatalf("unexpected residual score: %+v", pair.Residual)
	}

	if _, err := ScorePair(residual, initial); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when residual >= initial, got %v", err)
	}
	if _, err := ScorePair(initial, initial); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for equal risk values, got %v", err)
	}
}

func TestHazardAssessmentPairMatchesClassify(t *testing.T) {
	assessment := HazardAssessment{
		Initial:  Factors{Severity: 6, Probability: 6, Frequency: 2},
		Residual: Factors{Severity: 3, Probability: 2, Frequency: 2},
	}
	pair := assessment.Pair()
	if pair.Initial.Band != BandUnacceptable {
		t.Fatalf("expected unacceptable initial band, got %s", pair.Initial.Band)
	}
	if pair.Residual.Band != BandAcceptable {
		t.Fatalf("expected acceptable residual band, got %s", pair.Residual.Band)
	}
}
