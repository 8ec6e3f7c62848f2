package agent

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/rahul/rendezvous/internal/governance"
	"github.com/rahul/rendezvous/internal/observability"
	"github.com/rahul/rendezvous/internal/schema"
)

// Provider contracts consumed by the executor. Each is a single blocking
// call against an external data source.

type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lon float64, targetDatetime string) (*schema.Weather, error)
}

type VenueProvider interface {
	SearchVenues(ctx context.Context, query string, lat, lon float64, radius int, venueType string, maxResults int) ([]schema.Venue, error)
}

type ImageProvider interface {
	SearchImages(ctx context.Context, query string, count int) ([]schema.Image, error)
}

// stepHandler executes one plan step. Handlers never return an error: every
// failure mode is folded into the StepResult.
type stepHandler func(ctx context.Context, step schema.PlanStep) schema.StepResult

// Executor runs plan steps sequentially against the matching provider,
// dispatching through a handler registry keyed by action.
type Executor struct {
	weather  WeatherProvider
	venues   VenueProvider
	images   ImageProvider
	handlers map[schema.Action]stepHandler
	policy   governance.PolicyEngine
	log      *observability.Logger
}

func NewExecutor(weather WeatherProvider, venues VenueProvider, images ImageProvider, logger *observability.Logger) *Executor {
	e := &Executor{
		weather: weather,
		venues:  venues,
		images:  images,
		log:     logger,
	}
	e.handlers = map[schema.Action]stepHandler{
		schema.ActionFetchWeather: e.fetchWeather,
		schema.ActionSearchVenues: e.searchVenues,
		schema.ActionCheckEvents:  e.checkEvents,
		schema.ActionFetchImages:  e.fetchImages,
		schema.ActionComposeFinal: e.composeFinal,
	}
	return e
}

// SetPolicy installs a policy engine consulted before each step dispatch.
// Without one, all steps are allowed.
func (e *Executor) SetPolicy(policy governance.PolicyEngine) {
	e.policy = policy
}

// Execute runs the plan's steps in order. When retryStepIDs is non-empty,
// only steps whose id is in that set are run, still in plan order.
func (e *Executor) Execute(ctx context.Context, plan *schema.Plan, retryStepIDs []string) schema.ExecutionReport {
	log.Printf("[Executor] Executing plan %s with %d steps", plan.PlanID, len(plan.Steps))
	start := time.Now()

	steps := plan.Steps
	if len(retryStepIDs) > 0 {
		retry := make(map[string]bool, len(retryStepIDs))
		for _, id := range retryStepIDs {
			retry[id] = true
		}
		var selected []schema.PlanStep
		for _, s := range plan.Steps {
			if retry[s.ID] {
				selected = append(selected, s)
			}
		}
		steps = selected
		log.Printf("[Executor] Retrying %d steps", len(steps))
	}

	results := make([]schema.StepResult, 0, len(steps))
	for _, step := range steps {
		log.Printf("[Executor] Executing step: %s - %s", step.ID, step.Action)
		result := e.executeStep(ctx, step)
		results = append(results, result)

		if e.log != nil {
			e.log.LogStep(plan.PlanID, step.ID, string(step.Action), string(result.Status), result.ErrorMessage)
		}
		if result.Status == schema.StepSuccess {
			log.Printf("[Executor] Step %s completed successfully", step.ID)
		} else {
			log.Printf("[Executor] Step %s %s: %s", step.ID, result.Status, result.ErrorMessage)
		}
	}

	successCount := 0
	for _, r := range results {
		if r.Status == schema.StepSuccess {
			successCount++
		}
	}
	var overall schema.OverallStatus
	switch {
	case successCount == len(results):
		overall = schema.OverallSuccess
	case successCount > 0:
		overall = schema.OverallPartialSuccess
	default:
		overall = schema.OverallFailed
	}

	elapsed := math.Round(time.Since(start).Seconds()*100) / 100
	log.Printf("[Executor] Execution complete: %s in %.2fs", overall, elapsed)

	return schema.ExecutionReport{
		PlanID:               plan.PlanID,
		Results:              results,
		OverallStatus:        overall,
		ExecutionTimeSeconds: elapsed,
	}
}

// executeStep dispatches a single step. Nothing a handler or provider does
// may escape this boundary: errors and panics both become failed results.
func (e *Executor) executeStep(ctx context.Context, step schema.PlanStep) (result schema.StepResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Executor] Recovered panic in step %s: %v", step.ID, r)
			result = e.failed(step, "executor", fmt.Sprintf("step panicked: %v", r))
		}
	}()

	handler, ok := e.handlers[step.Action]
	if !ok {
		return e.failed(step, "executor", fmt.Sprintf("Unknown action: %s", step.Action))
	}

	if e.policy != nil {
		verdict, err := e.policy.Evaluate(ctx, governance.Request{
			Action:    step.Action,
			Arguments: fmt.Sprintf("%v", step.Params),
		})
		if err != nil {
			return e.failed(step, "executor", fmt.Sprintf("policy evaluation failed: %v", err))
		}
		if verdict.Effect == governance.EffectDeny {
			return e.failed(step, "executor", verdict.Reason)
		}
	}

	return handler(ctx, step)
}

func (e *Executor) fetchWeather(ctx context.Context, step schema.PlanStep) schema.StepResult {
	lat := floatParam(step.Params, "latitude", 0)
	lon := floatParam(step.Params, "longitude", 0)
	target := stringParam(step.Params, "target_datetime", "")

	weather, err := e.weather.Forecast(ctx, lat, lon, target)
	if err != nil {
		return e.failed(step, "openweather", err.Error())
	}
	if weather == nil {
		return e.failed(step, "openweather", "Failed to fetch weather data")
	}
	return e.result(step, schema.StepSuccess, toPayload(weather), "openweather", "")
}

func (e *Executor) searchVenues(ctx context.Context, step schema.PlanStep) schema.StepResult {
	query := stringParam(step.Params, "query", "restaurant")
	lat := floatParam(step.Params, "latitude", 0)
	lon := floatParam(step.Params, "longitude", 0)
	radius := intParam(step.Params, "radius", 3000)
	venueType := stringParam(step.Params, "venue_type", "restaurant")
	maxResults := intParam(step.Params, "max_results", 5)

	venues, err := e.venues.SearchVenues(ctx, query, lat, lon, radius, venueType, maxResults)
	if err != nil {
		return e.failed(step, "google_places", err.Error())
	}
	if len(venues) == 0 {
		// The call worked; the result set is merely empty.
		return e.result(step, schema.StepPartial,
			map[string]any{"venues": []schema.Venue{}},
			"google_places", "No venues found matching criteria")
	}
	return e.result(step, schema.StepSuccess,
		map[string]any{"venues": venues}, "google_places", "")
}

func (e *Executor) checkEvents(_ context.Context, step schema.PlanStep) schema.StepResult {
	// Placeholder until an events source is integrated.
	log.Printf("[Executor] Events check - using placeholder (no API integrated)")
	return e.result(step, schema.StepSuccess,
		map[string]any{"events": []schema.Event{}},
		"events_placeholder", "Events API not integrated (placeholder)")
}

func (e *Executor) fetchImages(ctx context.Context, step schema.PlanStep) schema.StepResult {
	query := stringParam(step.Params, "query", "romantic date")
	count := intParam(step.Params, "count", 3)

	images, err := e.images.SearchImages(ctx, query, count)
	if err != nil {
		return e.failed(step, "unsplash", err.Error())
	}
	if len(images) == 0 {
		return e.result(step, schema.StepPartial,
			map[string]any{"images": []schema.Image{}},
			"unsplash", "No images found")
	}
	return e.result(step, schema.StepSuccess,
		map[string]any{"images": images}, "unsplash", "")
}

func (e *Executor) composeFinal(_ context.Context, step schema.PlanStep) schema.StepResult {
	return e.result(step, schema.StepSuccess,
		map[string]any{"ready_for_composition": true}, "executor", "")
}

func (e *Executor) result(step schema.PlanStep, status schema.StepStatus, payload map[string]any, source, errMsg string) schema.StepResult {
	return schema.StepResult{
		StepID:       step.ID,
		Action:       step.Action,
		Status:       status,
		Payload:      payload,
		Source:       source,
		ErrorMessage: errMsg,
		Timestamp:    time.Now(),
	}
}

func (e *Executor) failed(step schema.PlanStep, source, errMsg string) schema.StepResult {
	return e.result(step, schema.StepFailed, map[string]any{}, source, errMsg)
}
