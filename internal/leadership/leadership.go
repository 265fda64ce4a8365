// Package leadership scores leadership readiness from four behavioral signals.
// Every output field traces back to one input and one fixed threshold.
package leadership

import "math"

const (
	LevelReady      = "Ready"
	LevelDeveloping = "Developing"
	LevelEarly      = "Early"

	readyScore      = 75
	developingScore = 50

	// recognitionCap is the recognition count at which its weight saturates.
	recognitionCap       = 5
	recognitionThreshold = 3
	ratioThreshold       = 0.6
)

// Signals are the inputs of the score. Missing signals count as zero.
type Signals struct {
	TrainingCompletion    float64 `json:"training_completion" mapstructure:"training_completion"`
	RecognitionCount      float64 `json:"recognition_count" mapstructure:"recognition_count"`
	Engagement            float64 `json:"engagement" mapstructure:"engagement"`
	PositiveFeedbackRatio float64 `json:"positive_feedback_ratio" mapstructure:"positive_feedback_ratio"`
}

type Assessment struct {
	Score           float64    `json:"score"`
	Level           string     `json:"level"`
	Rationale       []string   `json:"rationale"`
	DevelopmentPlan []PlanItem `json:"development_plan"`
}

type PlanItem struct {
	Skill    string `json:"skill"`
	Priority string `json:"priority"`
	Timeline string `json:"timeline"`
}

// DevelopmentPlan is the fixed scaffold attached to every assessment.
func DevelopmentPlan() []PlanItem {
	return []PlanItem{
		{Skill: "Stakeholder & Partnership Management", Priority: "High", Timeline: "6-8 weeks"},
		{Skill: "Systems Thinking", Priority: "High", Timeline: "8-10 weeks"},
		{Skill: "Coaching & Feedback", Priority: "Medium", Timeline: "4-6 weeks"},
	}
}

// Score computes the assessment. It is a pure function of s.
func Score(s Signals) Assessment {
	raw := 0.35*s.TrainingCompletion +
		0.25*clamp(s.RecognitionCount/recognitionCap) +
		0.20*s.Engagement +
		0.20*s.PositiveFeedbackRatio
	score := math.Round(clamp(raw)*1000) / 10

	return Assessment{
		Score: score,
		Level: level(score),
		Rationale: []string{
			pick(s.TrainingCompletion > ratioThreshold, "Strong training momentum", "Increase consistent upskilling cadence"),
			pick(s.RecognitionCount >= recognitionThreshold, "Peer recognition trending well", "Seek visibility via cross-team contributions"),
			pick(s.Engagement > ratioThreshold, "Healthy engagement", "Boost engagement through mentoring or guilds"),
			pick(s.PositiveFeedbackRatio > ratioThreshold, "Positive feedback pattern", "Request frequent feedback and track improvements"),
		},
		DevelopmentPlan: DevelopmentPlan(),
	}
}

func level(score float64) string {
	switch {
	case score >= readyScore:
		return LevelReady
	case score >= developingScore:
		return LevelDeveloping
	default:
		return LevelEarly
	}
}

func clamp(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
