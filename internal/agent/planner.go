package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/rahul/rendezvous/internal/observability"
	"github.com/rahul/rendezvous/internal/schema"
	"github.com/rahul/rendezvous/pkg/config"
)

// Planner turns a user request into an ordered step plan. It asks the LLM
// first and falls back to a deterministic plan when the model is
// unavailable or returns something that does not match the schema, so
// planning as a whole never fails.
type Planner struct {
	cfg        config.PlannerConfig
	strategies []planStrategy
	log        *observability.Logger
}

// planDraft is the enriched request handed to a strategy.
type planDraft struct {
	PlanID        string
	City          string
	Lat           float64
	Lon           float64
	Budget        *float64
	PriceLevel    int
	DateTime      string
	Parsed        ParsedTime
	Preferences   string
	Dietary       []string
	Accessibility string
}

// planStrategy is one way of producing a plan from a draft. Strategies are
// tried in order; the last one in the chain must never fail.
type planStrategy interface {
	propose(ctx context.Context, d planDraft) (*schema.Plan, error)
}

// NewPlanner builds a planner. The model may be nil, in which case only the
// deterministic fallback strategy is used.
func NewPlanner(model llms.Model, cfg config.PlannerConfig, prompts *PromptManager, logger *observability.Logger) *Planner {
	var strategies []planStrategy
	if model != nil {
		strategies = append(strategies, &llmStrategy{model: model, prompts: prompts, log: logger})
	}
	strategies = append(strategies, fallbackStrategy{})

	return &Planner{cfg: cfg, strategies: strategies, log: logger}
}

// Plan creates a structured plan from the user request.
func (p *Planner) Plan(ctx context.Context, req schema.PlanRequest) *schema.Plan {
	log.Printf("[Planner] Analyzing request for %s", req.City)

	coords := p.cfg.LookupCity(req.City)
	draft := planDraft{
		PlanID:        generatePlanID(),
		City:          req.City,
		Lat:           coords.Lat,
		Lon:           coords.Lon,
		Budget:        req.BudgetPerPerson,
		PriceLevel:    p.cfg.PriceBracket(req.BudgetPerPerson),
		DateTime:      req.DateTime,
		Parsed:        parseDateTime(req.DateTime),
		Preferences:   req.Preferences,
		Dietary:       req.DietaryRestrictions,
		Accessibility: req.AccessibilityNeeds,
	}

	var plan *schema.Plan
	for _, s := range p.strategies {
		var err error
		plan, err = s.propose(ctx, draft)
		if err == nil {
			break
		}
		log.Printf("[Planner] Strategy failed, falling back: %v", err)
	}

	if p.log != nil {
		p.log.LogPlan(plan.PlanID, len(plan.Steps), plan.UserIntent)
	}
	log.Printf("[Planner] Generated plan %s with %d steps", plan.PlanID, len(plan.Steps))
	return plan
}

// ---------------------------------------------------------------------------
// LLM strategy
// ---------------------------------------------------------------------------

type llmStrategy struct {
	model   llms.Model
	prompts *PromptManager
	log     *observability.Logger
}

func (s *llmStrategy) propose(ctx context.Context, d planDraft) (*schema.Plan, error) {
	prompt := s.prompts.buildPrompt(d)

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	// Deterministic sampling: the plan schema leaves no room for creativity.
	resp, err := s.model.GenerateContent(ctx, messages, llms.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	raw := resp.Choices[0].Content
	if s.log != nil {
		s.log.LogLLM(d.PlanID, prompt, raw)
	}

	var out struct {
		UserIntent      string            `json:"user_intent"`
		Steps           []schema.PlanStep `json:"steps"`
		EstimatedBudget *float64          `json:"estimated_budget"`
		SafetyNotes     []string          `json:"safety_notes"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse llm plan: %w", err)
	}

	if len(out.Steps) == 0 {
		return nil, fmt.Errorf("llm plan has no steps")
	}
	for i, step := range out.Steps {
		if step.ID == "" {
			return nil, fmt.Errorf("llm plan step %d has no id", i)
		}
		if !step.Action.Known() {
			return nil, fmt.Errorf("llm plan step %q has unknown action %q", step.ID, step.Action)
		}
	}

	intent := out.UserIntent
	if intent == "" {
		intent = fmt.Sprintf("Plan an outing in %s", d.City)
	}
	budget := out.EstimatedBudget
	if budget == nil {
		budget = d.Budget
	}

	return &schema.Plan{
		PlanID:          d.PlanID,
		UserIntent:      intent,
		Steps:           out.Steps,
		EstimatedBudget: budget,
		SafetyNotes:     out.SafetyNotes,
	}, nil
}

// stripCodeFences removes a surrounding markdown code block, which models
// frequently wrap JSON responses in despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// ---------------------------------------------------------------------------
// Deterministic fallback
// ---------------------------------------------------------------------------

type fallbackStrategy struct{}

// propose builds the fixed four-step plan. It is the terminal recovery path
// and never returns an error.
func (fallbackStrategy) propose(_ context.Context, d planDraft) (*schema.Plan, error) {
	log.Printf("[Planner] Using fallback plan")

	query := "restaurant"
	if d.Preferences != "" {
		query = d.Preferences + " restaurant"
	}

	steps := []schema.PlanStep{
		{
			ID:     "step_1",
			Action: schema.ActionFetchWeather,
			Params: map[string]any{
				"latitude":        d.Lat,
				"longitude":       d.Lon,
				"target_datetime": nil,
			},
			Reasoning: "Check weather conditions for the outing",
		},
		{
			ID:     "step_2",
			Action: schema.ActionSearchVenues,
			Params: map[string]any{
				"query":       query,
				"latitude":    d.Lat,
				"longitude":   d.Lon,
				"radius":      3000,
				"venue_type":  "restaurant",
				"max_results": 5,
			},
			Reasoning: "Find suitable dining venues",
		},
		{
			ID:     "step_3",
			Action: schema.ActionFetchImages,
			Params: map[string]any{
				"query": "romantic restaurant dinner",
				"count": 3,
			},
			Reasoning: "Get inspirational images",
		},
		{
			ID:     "step_4",
			Action: schema.ActionComposeFinal,
			Params: map[string]any{
				"include_timeline":    true,
				"include_backup_plan": true,
			},
			Reasoning: "Compose the final outing plan",
		},
	}

	return &schema.Plan{
		PlanID:          d.PlanID,
		UserIntent:      fmt.Sprintf("Plan an outing in %s", d.City),
		Steps:           steps,
		EstimatedBudget: d.Budget,
		SafetyNotes: []string{
			"Choose a public, well-lit venue",
			"Share location with a trusted friend",
			"Arrange your own transportation",
		},
	}, nil
}
