package agent

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/rahul/rendezvous/internal/observability"
	"github.com/rahul/rendezvous/internal/schema"
)

// maxRetries is the fixed retry budget: one full re-run of the step set when
// the verifier rejects the first attempt.
const maxRetries = 1

// Pipeline chains the three agents for a single request: plan once, execute,
// verify, and re-run execution at most once on rejection. Runs are strictly
// sequential; nothing below this boundary panics outward.
type Pipeline struct {
	planner  *Planner
	executor *Executor
	verifier *Verifier
	log      *observability.Logger
}

func NewPipeline(planner *Planner, executor *Executor, verifier *Verifier, logger *observability.Logger) *Pipeline {
	return &Pipeline{
		planner:  planner,
		executor: executor,
		verifier: verifier,
		log:      logger,
	}
}

// CreatePlan runs the full planning pipeline for one request and always
// returns a response; unexpected panics become an internal-error payload.
func (p *Pipeline) CreatePlan(ctx context.Context, req schema.PlanRequest) (resp schema.PlanResponse) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Pipeline] Unexpected error: %v", r)
			observability.SetStatus(observability.RoleIdle, "")
			resp = schema.PlanResponse{
				Success:               false,
				PlanID:                "error",
				Message:               "Internal server error",
				Errors:                []string{fmt.Sprint(r)},
				ProcessingTimeSeconds: roundSeconds(time.Since(start)),
			}
		}
	}()

	observability.SetStatus(observability.RolePlanner, req.City)
	plan := p.planner.Plan(ctx, req)

	observability.SetStatus(observability.RoleExecutor, plan.PlanID)
	report := p.executor.Execute(ctx, plan, nil)

	observability.SetStatus(observability.RoleVerifier, plan.PlanID)
	verdict := p.verifier.Verify(plan, report, req)

	for retry := 0; !verdict.Approved && retry < maxRetries; retry++ {
		log.Printf("[Pipeline] Plan not approved, attempting retry %d/%d", retry+1, maxRetries)
		if len(verdict.RetryRecommendations) > 0 {
			log.Printf("[Pipeline] Retry recommendations: %v", verdict.RetryRecommendations)
		}

		// The whole step set is re-run against the same plan; the
		// recommendations are logged for the operator, not acted on.
		observability.SetStatus(observability.RoleExecutor, plan.PlanID)
		report = p.executor.Execute(ctx, plan, nil)
		observability.SetStatus(observability.RoleVerifier, plan.PlanID)
		verdict = p.verifier.Verify(plan, report, req)
	}

	observability.SetStatus(observability.RoleIdle, "")
	elapsed := roundSeconds(time.Since(start))

	if verdict.Approved && verdict.FinalOutput != nil {
		log.Printf("[Pipeline] Outing plan created successfully in %.2fs", elapsed)
		return schema.PlanResponse{
			Success:               true,
			PlanID:                plan.PlanID,
			Message:               "Outing plan created successfully!",
			Plan:                  verdict.FinalOutput,
			ProcessingTimeSeconds: elapsed,
		}
	}

	var errorMessages []string
	for _, issue := range verdict.Issues {
		if issue.Severity == schema.SeverityCritical {
			errorMessages = append(errorMessages, issue.Message)
		}
	}
	if len(errorMessages) == 0 {
		errorMessages = []string{"Unable to find suitable venues or data"}
	}
	log.Printf("[Pipeline] Failed to create approved plan: %v", errorMessages)

	return schema.PlanResponse{
		Success:               false,
		PlanID:                plan.PlanID,
		Message:               "Could not create a suitable outing plan",
		Errors:                errorMessages,
		ProcessingTimeSeconds: elapsed,
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
