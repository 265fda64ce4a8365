package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/leadership"
	"github.com/spigell/career-compass/internal/logger"
	"github.com/spigell/career-compass/internal/plan"
	"github.com/spigell/career-compass/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200

	systemInstruction = "You are an internal career co-pilot. Be concise, supportive and specific. " +
		"Ground every statement in the provided data and never invent numbers."
)

// Summarizer implements ai.Summarizer with a Gemini generator.
type Summarizer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewSummarizer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Summarizer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Summarizer{
		generator: generator,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, p plan.CareerPlan, a leadership.Assessment) (string, error) {
	planJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal plan payload: %w", err)
	}

	leadershipJSON, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal leadership payload: %w", err)
	}

	prompt := buildPrompt(string(planJSON), string(leadershipJSON))

	s.logger.Debug("gemini generate content request",
		zap.String(logger.FieldEntity, p.EmployeeID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.logger.Debug("gemini generate content response",
		zap.String(logger.FieldEntity, p.EmployeeID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	summary := stripFences(raw)
	if summary == "" {
		return "", fmt.Errorf("gemini returned an empty summary")
	}
	return summary, nil
}

func buildPrompt(planJSON, leadershipJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Plan:\n{{PLAN_JSON}}\n\nLeadership assessment:\n{{LEADERSHIP_JSON}}\n\nSummary:"
	}
	prompt := strings.ReplaceAll(template, "{{PLAN_JSON}}", planJSON)
	prompt = strings.ReplaceAll(prompt, "{{LEADERSHIP_JSON}}", leadershipJSON)
	return prompt
}

// stripFences removes a markdown code fence wrapped around the answer.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if nl := strings.IndexByte(raw, '\n'); nl != -1 {
			raw = raw[nl+1:]
		} else {
			raw = strings.TrimLeft(raw, "`")
		}
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
