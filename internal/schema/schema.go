// Package schema holds the shared data model passed between the planner,
// executor and verifier agents. All types are plain data; ownership rules
// are simple: a Plan is read-only once created, StepResults belong to the
// Executor and are consumed read-only by the Verifier, and the FinalPlan is
// built exactly once by the Verifier.
package schema

import "time"

// Action identifies the kind of work a plan step performs.
type Action string

const (
	ActionFetchWeather Action = "fetch_weather"
	ActionSearchVenues Action = "search_venues"
	ActionCheckEvents  Action = "check_events"
	ActionFetchImages  Action = "fetch_images"
	ActionComposeFinal Action = "compose_final"
)

// Known reports whether a is one of the five supported actions.
func (a Action) Known() bool {
	switch a {
	case ActionFetchWeather, ActionSearchVenues, ActionCheckEvents, ActionFetchImages, ActionComposeFinal:
		return true
	}
	return false
}

// StepStatus is the outcome of a single executed step.
type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepPartial StepStatus = "partial"
	StepFailed  StepStatus = "failed"
)

// OverallStatus summarises a whole execution batch.
type OverallStatus string

const (
	OverallSuccess        OverallStatus = "success"
	OverallPartialSuccess OverallStatus = "partial_success"
	OverallFailed         OverallStatus = "failed"
)

// Severity ranks a validation issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue categories used by the verifier. Kept as constants so call sites
// never compare ad hoc strings.
const (
	CategoryVenues        = "venues"
	CategoryAccessibility = "accessibility"
	CategoryWeather       = "weather"
	CategoryBudget        = "budget"
)

// PlanStep is one unit of executable work. Immutable once created.
type PlanStep struct {
	ID        string         `json:"id"`
	Action    Action         `json:"action"`
	Params    map[string]any `json:"params"`
	Reasoning string         `json:"reasoning,omitempty"`
}

// Plan is the ordered step list the planner produces for one request.
type Plan struct {
	PlanID          string     `json:"plan_id"`
	UserIntent      string     `json:"user_intent"`
	Steps           []PlanStep `json:"steps"`
	EstimatedBudget *float64   `json:"estimated_budget,omitempty"`
	SafetyNotes     []string   `json:"safety_notes"`
}

// StepResult is produced by the executor for every executed step.
type StepResult struct {
	StepID       string         `json:"step_id"`
	Action       Action         `json:"action"`
	Status       StepStatus     `json:"status"`
	Payload      map[string]any `json:"payload"`
	Source       string         `json:"source"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// ExecutionReport aggregates the results of one execution batch.
type ExecutionReport struct {
	PlanID               string        `json:"plan_id"`
	Results              []StepResult  `json:"results"`
	OverallStatus        OverallStatus `json:"overall_status"`
	ExecutionTimeSeconds float64       `json:"execution_time_seconds"`
}

// Venue is a single venue returned by the venue provider.
type Venue struct {
	Name                 string   `json:"name"`
	Address              string   `json:"address"`
	Rating               *float64 `json:"rating,omitempty"`
	PriceLevel           *int     `json:"price_level,omitempty"`
	OpenNow              *bool    `json:"open_now,omitempty"`
	OpeningHours         []string `json:"opening_hours,omitempty"`
	Phone                string   `json:"phone,omitempty"`
	Website              string   `json:"website,omitempty"`
	MapsURL              string   `json:"maps_url,omitempty"`
	Photos               []string `json:"photos,omitempty"`
	CuisineType          string   `json:"cuisine_type,omitempty"`
	WheelchairAccessible *bool    `json:"wheelchair_accessible,omitempty"`
}

// Weather is a forecast snapshot for the outing location.
type Weather struct {
	Temperature     float64  `json:"temperature"`
	FeelsLike       float64  `json:"feels_like"`
	Condition       string   `json:"condition"`
	Description     string   `json:"description"`
	Humidity        int      `json:"humidity"`
	WindSpeed       float64  `json:"wind_speed"`
	RainProbability *float64 `json:"rain_probability,omitempty"`
	Suggestion      string   `json:"suggestion"`
}

// Event is a nearby event. The events source is a placeholder for now, so
// these only flow through the pipeline when injected by tests.
type Event struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	Venue       string `json:"venue"`
	TicketURL   string `json:"ticket_url,omitempty"`
	Price       string `json:"price,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Image is an inspiration photo for the plan.
type Image struct {
	URL          string `json:"url"`
	Photographer string `json:"photographer"`
	Description  string `json:"description,omitempty"`
}

// ValidationIssue is a single finding from the verifier.
type ValidationIssue struct {
	Severity     Severity `json:"severity"`
	Category     string   `json:"category"`
	Message      string   `json:"message"`
	AffectedStep string   `json:"affected_step,omitempty"`
	Suggestion   string   `json:"suggestion,omitempty"`
}

// SafetyAssessment is the verifier's safety summary.
type SafetyAssessment struct {
	PublicVenue         bool     `json:"public_venue"`
	OperatingHoursValid bool     `json:"operating_hours_valid"`
	CrowdRating         string   `json:"crowd_rating,omitempty"`
	EmergencyInfo       []string `json:"emergency_info"`
	SafetyScore         int      `json:"safety_score"`
}

// TimelineEntry is one row of the suggested outing timeline.
type TimelineEntry struct {
	Time            string `json:"time"`
	Activity        string `json:"activity"`
	Location        string `json:"location,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// FinalPlan is the complete outing plan handed back to the caller. It is
// constructed exactly once, and only when the verifier approves.
type FinalPlan struct {
	Title               string `json:"title"`
	Summary             string `json:"summary"`
	DateTime            string `json:"date_time"`
	City                string `json:"city"`
	TotalBudgetEstimate string `json:"total_budget_estimate"`

	Venues          []Venue         `json:"venues"`
	WeatherForecast *Weather        `json:"weather_forecast,omitempty"`
	NearbyEvents    []Event         `json:"nearby_events"`
	Timeline        []TimelineEntry `json:"timeline"`

	SafetyChecklist           []string `json:"safety_checklist"`
	TransportationSuggestions []string `json:"transportation_suggestions"`
	BackupPlan                string   `json:"backup_plan,omitempty"`

	VenueImages []Image `json:"venue_images"`

	CreatedAt time.Time `json:"created_at"`
}

// VerificationReport is the verifier's verdict on one execution batch.
type VerificationReport struct {
	PlanID               string             `json:"plan_id"`
	Approved             bool               `json:"approved"`
	ConfidenceScore      float64            `json:"confidence_score"`
	Issues               []ValidationIssue  `json:"issues"`
	SafetyCheck          *SafetyAssessment  `json:"safety_check,omitempty"`
	FinalOutput          *FinalPlan         `json:"final_output,omitempty"`
	RetryRecommendations []string           `json:"retry_recommendations,omitempty"`
	VerifiedAt           time.Time          `json:"verified_at"`
}

// PlanRequest is the user-facing request consumed by the planner.
type PlanRequest struct {
	City                string   `json:"city"`
	BudgetPerPerson     *float64 `json:"budget_per_person,omitempty"`
	DateTime            string   `json:"date_time"`
	Preferences         string   `json:"preferences,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	AccessibilityNeeds  string   `json:"accessibility_needs,omitempty"`
}

// PlanResponse is the outcome of one full pipeline run.
type PlanResponse struct {
	Success               bool       `json:"success"`
	PlanID                string     `json:"plan_id"`
	Message               string     `json:"message"`
	Plan                  *FinalPlan `json:"plan,omitempty"`
	Errors                []string   `json:"errors,omitempty"`
	ProcessingTimeSeconds float64    `json:"processing_time_seconds"`
}
