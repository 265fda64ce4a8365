package leadership

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		signals   Signals
		score     float64
		level     string
		rationale []string
	}{
		{
			name: "developing",
			signals: Signals{
				TrainingCompletion:    0.55,
				RecognitionCount:      2,
				Engagement:            0.7,
				PositiveFeedbackRatio: 0.65,
			},
			score: 56.3,
			level: LevelDeveloping,
			rationale: []string{
				"Increase consistent upskilling cadence",
				"Seek visibility via cross-team contributions",
				"Healthy engagement",
				"Positive feedback pattern",
			},
		},
		{
			name: "ready with capped recognition",
			signals: Signals{
				TrainingCompletion:    1,
				RecognitionCount:      40,
				Engagement:            1,
				PositiveFeedbackRatio: 1,
			},
			score: 100,
			level: LevelReady,
			rationale: []string{
				"Strong training momentum",
				"Peer recognition trending well",
				"Healthy engagement",
				"Positive feedback pattern",
			},
		},
		{
			name:    "missing signals",
			signals: Signals{},
			score:   0,
			level:   LevelEarly,
			rationale: []string{
				"Increase consistent upskilling cadence",
				"Seek visibility via cross-team contributions",
				"Boost engagement through mentoring or guilds",
				"Request frequent feedback and track improvements",
			},
		},
		{
			name:    "thresholds are strict for ratios",
			signals: Signals{TrainingCompletion: 0.6, RecognitionCount: 3, Engagement: 0.6, PositiveFeedbackRatio: 0.6},
			score:   60,
			level:   LevelDeveloping,
			rationale: []string{
				"Increase consistent upskilling cadence",
				"Peer recognition trending well",
				"Boost engagement through mentoring or guilds",
				"Request frequent feedback and track improvements",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.signals)
			if got.Score != tt.score {
				t.Fatalf("score = %v, want %v", got.Score, tt.score)
			}
			if got.Level != tt.level {
				t.Fatalf("level = %q, want %q", got.Level, tt.level)
			}
			if !reflect.DeepEqual(got.Rationale, tt.rationale) {
				t.Fatalf("rationale = %v, want %v", got.Rationale, tt.rationale)
			}
			if len(got.DevelopmentPlan) != 3 {
				t.Fatalf("expected the three-item development plan, got %v", got.DevelopmentPlan)
			}
		})
	}
}

func TestScoreClampsOutOfRangeInputs(t *testing.T) {
	got := Score(Signals{TrainingCompletion: 3, Engagement: 2, PositiveFeedbackRatio: 2, RecognitionCount: -4})
	if got.Score != 100 {
		t.Fatalf("expected clamped score 100, got %v", got.Score)
	}

	got = Score(Signals{TrainingCompletion: -2})
	if got.Score != 0 || got.Level != LevelEarly {
		t.Fatalf("expected clamped score 0, got %+v", got)
	}
}

func TestSignalsDecodeWithDefaults(t *testing.T) {
	var s Signals
	if err := json.Unmarshal([]byte(`{"training_completion": 0.9, "recognition_count": 4}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != (Signals{TrainingCompletion: 0.9, RecognitionCount: 4}) {
		t.Fatalf("unexpected signals %+v", s)
	}
}
