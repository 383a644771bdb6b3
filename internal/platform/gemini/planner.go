package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"text/template"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/nexuslearn/nexus-api/internal/config"
	"github.com/nexuslearn/nexus-api/internal/lessonplan"
)

// Retry tuning for transient API failures.
const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
)

// promptTemplateText is the built-in lesson plan prompt. The response must
// be pure JSON matching ResponseSchema.
const promptTemplateText = `You are a tutor planning the next study session for a grade {{.GradeLevel}} student{{if .DomainFocus}} focusing on {{.DomainFocus}}{{end}}.

Their strengths:
{{range .Strengths}}- {{.Code}} ({{.Title}}, {{.Domain}}): {{.MasteryLevel}}
{{end}}
Their weaknesses:
{{range .Weaknesses}}- {{.Code}} ({{.Title}}, {{.Domain}}): {{.MasteryLevel}}
{{end}}
Due for review:
{{range .DueReviews}}- {{.Code}} ({{.Title}}, {{.Domain}})
{{end}}
Produce a short lesson plan as JSON with this exact shape and nothing else:
{"title": "...", "summary": "...", "items": [{"node_code": "...", "activity": "...", "reason": "..."}]}

Prioritize due reviews, then weaknesses. Keep activities concrete and age-appropriate.`

// GeminiPlanner implements the lessonplan.Generator interface using
// Google's Gemini API to generate lesson plans from student snapshots.
type GeminiPlanner struct {
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// Ensure GeminiPlanner implements the Generator interface
var _ lessonplan.Generator = (*GeminiPlanner)(nil)

// NewGeminiPlanner creates a new GeminiPlanner with the provided
// dependencies. Returns an error wrapping lessonplan.ErrInvalidConfig
// when the configuration is unusable.
func NewGeminiPlanner(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiPlanner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", lessonplan.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", lessonplan.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("lessonplan").Parse(promptTemplateText)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			lessonplan.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			lessonplan.ErrInvalidConfig, err)
	}

	return &GeminiPlanner{
		logger:         logger.With(slog.String("component", "gemini_planner")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GeneratePlan implements lessonplan.Generator.GeneratePlan.
func (g *GeminiPlanner) GeneratePlan(
	ctx context.Context,
	studentID uuid.UUID,
	snapshot lessonplan.Snapshot,
) (*lessonplan.Plan, error) {
	if studentID == uuid.Nil {
		return nil, errors.New("student ID cannot be empty")
	}

	prompt, err := g.createPrompt(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	response, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(ctx, response, studentID)
}

// createPrompt generates a prompt string from the template with the
// provided snapshot.
func (g *GeminiPlanner) createPrompt(ctx context.Context, snapshot lessonplan.Snapshot) (string, error) {
	if snapshot.Empty() {
		return "", lessonplan.ErrEmptySnapshot
	}

	data := promptData{
		GradeLevel:  snapshot.GradeLevel,
		DomainFocus: snapshot.DomainFocus,
		Strengths:   snapshot.Strengths,
		Weaknesses:  snapshot.Weaknesses,
		DueReviews:  snapshot.DueReviews,
	}

	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	prompt := promptBuffer.String()
	g.logger.DebugContext(ctx, "prompt generated",
		"prompt_length", len(prompt),
		"strengths", len(snapshot.Strengths),
		"weaknesses", len(snapshot.Weaknesses),
		"due_reviews", len(snapshot.DueReviews))

	return prompt, nil
}

// callGeminiWithRetry calls the Gemini API with exponential backoff for
// transient errors. Permanent errors (content blocked, malformed
// response) are returned immediately.
func (g *GeminiPlanner) callGeminiWithRetry(ctx context.Context, prompt string) (*ResponseSchema, error) {
	maxRetries := defaultMaxRetries
	baseDelaySeconds := defaultRetryDelaySeconds
	attempt := 0
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt <= maxRetries {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		var response *ResponseSchema
		var isTransientError bool

		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		switch {
		case err != nil:
			isTransientError = true
			g.logger.ErrorContext(ctx, "Gemini API call error",
				"error", err,
				"attempt", attemptNum)
		case resp == nil:
			err = fmt.Errorf("%w: nil response", lessonplan.ErrInvalidResponse)
		case len(resp.Candidates) == 0:
			err = fmt.Errorf("%w: no content generated", lessonplan.ErrInvalidResponse)
		case resp.Candidates[0].Content == nil:
			err = fmt.Errorf("%w: empty content in response", lessonplan.ErrInvalidResponse)
		case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
			err = fmt.Errorf("%w: content blocked by safety filters", lessonplan.ErrContentBlocked)
		default:
			text := ""
			for _, part := range resp.Candidates[0].Content.Parts {
				if part != nil {
					text += part.Text
				}
			}

			var parsed ResponseSchema
			if err = json.Unmarshal([]byte(text), &parsed); err != nil {
				err = fmt.Errorf("%w: failed to parse JSON response: %v", lessonplan.ErrInvalidResponse, err)
			} else {
				response = &parsed
			}
		}

		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if errors.Is(err, lessonplan.ErrContentBlocked) || errors.Is(err, lessonplan.ErrInvalidResponse) {
			return nil, err
		}

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				lessonplan.ErrTransientFailure, maxRetries)
		}

		if !isTransientError {
			return nil, err
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", lessonplan.ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	return nil, fmt.Errorf("%w: failed after %d attempts",
		lessonplan.ErrTransientFailure, attempt)
}

// parseResponse converts a ResponseSchema into a lessonplan.Plan,
// validating every item on the way.
func (g *GeminiPlanner) parseResponse(
	ctx context.Context,
	response *ResponseSchema,
	studentID uuid.UUID,
) (*lessonplan.Plan, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", lessonplan.ErrInvalidResponse)
	}
	if len(response.Items) == 0 {
		return nil, fmt.Errorf("%w: no items in response", lessonplan.ErrInvalidResponse)
	}

	items := make([]lessonplan.PlanItem, 0, len(response.Items))
	for i, item := range response.Items {
		if item.NodeCode == "" {
			return nil, fmt.Errorf("%w: item %d missing node code", lessonplan.ErrInvalidResponse, i)
		}
		if item.Activity == "" {
			return nil, fmt.Errorf("%w: item %d missing activity", lessonplan.ErrInvalidResponse, i)
		}
		items = append(items, lessonplan.PlanItem{
			NodeCode: item.NodeCode,
			Activity: item.Activity,
			Reason:   item.Reason,
		})
	}

	plan := &lessonplan.Plan{
		StudentID:   studentID,
		Title:       response.Title,
		Summary:     response.Summary,
		Items:       items,
		GeneratedAt: time.Now().UTC(),
	}

	g.logger.InfoContext(ctx, "lesson plan parsed",
		"student_id", studentID.String(),
		"items", len(plan.Items))

	return plan, nil
}
