package agent

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rahul/rendezvous/internal/observability"
	"github.com/rahul/rendezvous/internal/schema"
)

// Verifier validates executor output against the original request, scores
// the result and, when approved, composes the final plan. Verification is a
// pure function of its inputs apart from timestamps.
type Verifier struct {
	currency string
	log      *observability.Logger
}

func NewVerifier(currency string, logger *observability.Logger) *Verifier {
	if currency == "" {
		currency = "INR"
	}
	return &Verifier{currency: currency, log: logger}
}

// Verify validates the execution report and composes the final plan when the
// result set clears the approval gate.
func (v *Verifier) Verify(plan *schema.Plan, report schema.ExecutionReport, req schema.PlanRequest) schema.VerificationReport {
	log.Printf("[Verifier] Validating results for plan %s", plan.PlanID)

	venues := v.extractVenues(report)
	weather := v.extractWeather(report)
	events := v.extractEvents(report)
	images := v.extractImages(report)

	var issues []schema.ValidationIssue
	issues = append(issues, v.validateVenues(venues, req)...)
	issues = append(issues, v.validateWeather(weather)...)
	issues = append(issues, v.validateBudget(venues, req.BudgetPerPerson)...)

	safety := v.safetyCheck(venues, req)

	criticalCount := 0
	for _, issue := range issues {
		if issue.Severity == schema.SeverityCritical {
			criticalCount++
		}
	}
	approved := criticalCount == 0 && len(venues) > 0

	confidence := v.confidence(venues, weather, issues)

	var finalPlan *schema.FinalPlan
	var retries []string
	if approved {
		log.Printf("[Verifier] Plan approved - composing final output")
		finalPlan = v.composeFinalPlan(plan, req, venues, weather, events, images)
	} else {
		log.Printf("[Verifier] Plan not approved - %d critical issues", criticalCount)
		retries = v.retryRecommendations(issues)
	}

	if v.log != nil {
		v.log.LogVerify(plan.PlanID, approved, confidence, len(issues))
	}

	return schema.VerificationReport{
		PlanID:               plan.PlanID,
		Approved:             approved,
		ConfidenceScore:      confidence,
		Issues:               issues,
		SafetyCheck:          &safety,
		FinalOutput:          finalPlan,
		RetryRecommendations: retries,
		VerifiedAt:           time.Now(),
	}
}

// ---------------------------------------------------------------------------
// Extraction — each independently fault tolerant
// ---------------------------------------------------------------------------

func (v *Verifier) extractVenues(report schema.ExecutionReport) []schema.Venue {
	var venues []schema.Venue
	for _, result := range report.Results {
		if result.Action != schema.ActionSearchVenues || result.Status != schema.StepSuccess {
			continue
		}
		for _, raw := range rawList(result.Payload["venues"]) {
			var venue schema.Venue
			if err := json.Unmarshal(raw, &venue); err != nil {
				log.Printf("[Verifier] Error parsing venue: %v", err)
				continue
			}
			venues = append(venues, venue)
		}
	}
	return venues
}

func (v *Verifier) extractWeather(report schema.ExecutionReport) *schema.Weather {
	for _, result := range report.Results {
		if result.Action != schema.ActionFetchWeather || result.Status != schema.StepSuccess {
			continue
		}
		var weather schema.Weather
		if err := decodeInto(result.Payload, &weather); err != nil {
			log.Printf("[Verifier] Error parsing weather: %v", err)
			continue
		}
		return &weather
	}
	return nil
}

func (v *Verifier) extractEvents(report schema.ExecutionReport) []schema.Event {
	var events []schema.Event
	for _, result := range report.Results {
		if result.Action != schema.ActionCheckEvents || result.Status != schema.StepSuccess {
			continue
		}
		for _, raw := range rawList(result.Payload["events"]) {
			var event schema.Event
			if err := json.Unmarshal(raw, &event); err != nil {
				log.Printf("[Verifier] Error parsing event: %v", err)
				continue
			}
			events = append(events, event)
		}
	}
	return events
}

func (v *Verifier) extractImages(report schema.ExecutionReport) []schema.Image {
	var images []schema.Image
	for _, result := range report.Results {
		if result.Action != schema.ActionFetchImages || result.Status != schema.StepSuccess {
			continue
		}
		for _, raw := range rawList(result.Payload["images"]) {
			var img schema.Image
			if err := json.Unmarshal(raw, &img); err != nil {
				log.Printf("[Verifier] Error parsing image: %v", err)
				continue
			}
			images = append(images, img)
		}
	}
	return images
}

// rawList normalises a payload list (typed slice or decoded JSON array) into
// raw messages so individual entries can fail to parse without dropping the
// rest.
func rawList(value any) []json.RawMessage {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func (v *Verifier) validateVenues(venues []schema.Venue, req schema.PlanRequest) []schema.ValidationIssue {
	var issues []schema.ValidationIssue

	if len(venues) == 0 {
		issues = append(issues, schema.ValidationIssue{
			Severity:   schema.SeverityCritical,
			Category:   schema.CategoryVenues,
			Message:    "No venues found matching criteria",
			Suggestion: "Try broadening search criteria or increasing search radius",
		})
	} else if len(venues) < 3 {
		issues = append(issues, schema.ValidationIssue{
			Severity:   schema.SeverityWarning,
			Category:   schema.CategoryVenues,
			Message:    fmt.Sprintf("Only %d venues found - limited options", len(venues)),
			Suggestion: "Consider alternative cuisines or venue types",
		})
	}

	rated := 0
	for _, venue := range venues {
		if venue.Rating != nil && *venue.Rating > 0 {
			rated++
		}
	}
	if float64(rated) < float64(len(venues))*0.5 {
		issues = append(issues, schema.ValidationIssue{
			Severity:   schema.SeverityInfo,
			Category:   schema.CategoryVenues,
			Message:    "Some venues missing rating information",
			Suggestion: "Verify venue quality through other sources",
		})
	}

	if req.AccessibilityNeeds != "" {
		accessible := 0
		for _, venue := range venues {
			if venue.WheelchairAccessible != nil && *venue.WheelchairAccessible {
				accessible++
			}
		}
		if accessible == 0 {
			issues = append(issues, schema.ValidationIssue{
				Severity:   schema.SeverityWarning,
				Category:   schema.CategoryAccessibility,
				Message:    "No confirmed wheelchair-accessible venues found",
				Suggestion: "Call venues directly to confirm accessibility",
			})
		}
	}

	return issues
}

func (v *Verifier) validateWeather(weather *schema.Weather) []schema.ValidationIssue {
	var issues []schema.ValidationIssue

	if weather == nil {
		return append(issues, schema.ValidationIssue{
			Severity:   schema.SeverityWarning,
			Category:   schema.CategoryWeather,
			Message:    "Weather data unavailable",
			Suggestion: "Check weather manually before the outing",
		})
	}

	if weather.RainProbability != nil && *weather.RainProbability > 70 {
		issues = append(issues, schema.ValidationIssue{
			Severity:   schema.SeverityWarning,
			Category:   schema.CategoryWeather,
			Message:    fmt.Sprintf("High chance of rain (%g%%)", *weather.RainProbability),
			Suggestion: "Choose indoor venues or carry umbrellas",
		})
	}

	if weather.Temperature > 35 {
		issues = append(issues, schema.ValidationIssue{
			Severity:   schema.SeverityInfo,
			Category:   schema.CategoryWeather,
			Message:    "Very hot weather expected",
			Suggestion: "Choose air-conditioned venues and stay hydrated",
		})
	} else if weather.Temperature < 10 {
		issues = append(issues, schema.ValidationIssue{
			Severity:   schema.SeverityInfo,
			Category:   schema.CategoryWeather,
			Message:    "Cold weather expected",
			Suggestion: "Dress warmly and consider indoor venues",
		})
	}

	return issues
}

func (v *Verifier) validateBudget(venues []schema.Venue, budget *float64) []schema.ValidationIssue {
	var issues []schema.ValidationIssue
	if budget == nil {
		return issues
	}

	overBudget := 0
	for _, venue := range venues {
		if venue.PriceLevel != nil && *venue.PriceLevel > 0 {
			// Rough heuristic: each price level maps to ~750 per person.
			estimated := float64(*venue.PriceLevel) * 750
			if estimated > *budget {
				overBudget++
			}
		}
	}

	if overBudget == len(venues) {
		issues = append(issues, schema.ValidationIssue{
			Severity:   schema.SeverityWarning,
			Category:   schema.CategoryBudget,
			Message:    "All suggested venues may exceed budget",
			Suggestion: "Consider lower-priced alternatives or adjust budget",
		})
	} else if overBudget > 0 {
		issues = append(issues, schema.ValidationIssue{
			Severity:   schema.SeverityInfo,
			Category:   schema.CategoryBudget,
			Message:    fmt.Sprintf("%d venues may be above budget", overBudget),
			Suggestion: "Review menu prices before booking",
		})
	}

	return issues
}

// ---------------------------------------------------------------------------
// Safety and scoring
// ---------------------------------------------------------------------------

func (v *Verifier) safetyCheck(venues []schema.Venue, req schema.PlanRequest) schema.SafetyAssessment {
	publicVenue := len(venues) > 0

	operatingHoursValid := true
	for _, venue := range venues {
		if venue.OpenNow != nil && !*venue.OpenNow {
			operatingHoursValid = false
			break
		}
	}

	emergencyInfo := []string{
		"Emergency: 112 (India)",
		fmt.Sprintf("Local police: Search '%s police station'", req.City),
		"Women's helpline: 1091",
		"Ambulance: 108",
	}

	score := 8
	if !operatingHoursValid {
		score--
	}
	if len(venues) == 0 {
		score -= 2
	}
	if score < 0 {
		score = 0
	}

	return schema.SafetyAssessment{
		PublicVenue:         publicVenue,
		OperatingHoursValid: operatingHoursValid,
		CrowdRating:         "Moderate",
		EmergencyInfo:       emergencyInfo,
		SafetyScore:         score,
	}
}

func (v *Verifier) confidence(venues []schema.Venue, weather *schema.Weather, issues []schema.ValidationIssue) float64 {
	score := 1.0

	if len(venues) == 0 {
		score -= 0.5
	} else if len(venues) < 3 {
		score -= 0.2
	}

	if weather == nil {
		score -= 0.1
	}

	for _, issue := range issues {
		switch issue.Severity {
		case schema.SeverityCritical:
			score -= 0.3
		case schema.SeverityWarning:
			score -= 0.1
		default:
			score -= 0.05
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func (v *Verifier) retryRecommendations(issues []schema.ValidationIssue) []string {
	var recommendations []string
	for _, issue := range issues {
		if issue.Severity == schema.SeverityCritical && issue.Category == schema.CategoryVenues {
			recommendations = append(recommendations,
				"Retry venue search with broader criteria",
				"Increase search radius to 5000m",
			)
		}
	}
	return recommendations
}

// ---------------------------------------------------------------------------
// Final plan composition
// ---------------------------------------------------------------------------

func (v *Verifier) composeFinalPlan(
	plan *schema.Plan,
	req schema.PlanRequest,
	venues []schema.Venue,
	weather *schema.Weather,
	events []schema.Event,
	images []schema.Image,
) *schema.FinalPlan {
	title := fmt.Sprintf("Night Out in %s", req.City)
	summary := fmt.Sprintf("%s. We've found %d great venue options for you!", plan.UserIntent, len(venues))

	parsed := parseDateTime(req.DateTime)

	budgetDisplay := "Flexible"
	if req.BudgetPerPerson != nil {
		budgetDisplay = formatBudget(*req.BudgetPerPerson*2, v.currency)
	}

	var backupPlan string
	if weather != nil && weather.RainProbability != nil && *weather.RainProbability > 50 {
		backupPlan = "If it rains heavily, consider rescheduling or choosing a fully indoor venue with covered parking."
	}

	top := venues
	if len(top) > 5 {
		top = top[:5]
	}

	return &schema.FinalPlan{
		Title:               title,
		Summary:             summary,
		DateTime:            req.DateTime,
		City:                req.City,
		TotalBudgetEstimate: budgetDisplay,
		Venues:              top,
		WeatherForecast:     weather,
		NearbyEvents:        events,
		Timeline:            generateTimeline(venues),
		SafetyChecklist:     generateSafetyChecklist(parsed.Time),
		TransportationSuggestions: []string{
			"Book a cab through Uber/Ola for convenience",
			"Share ride details with a friend",
			"Metro is a safe and affordable option for major cities",
			"Arrive 10-15 minutes early",
		},
		BackupPlan:  backupPlan,
		VenueImages: images,
		CreatedAt:   time.Now(),
	}
}

// generateTimeline lays out a five-entry evening at fixed offsets around the
// top venue. No venues means no timeline.
func generateTimeline(venues []schema.Venue) []schema.TimelineEntry {
	if len(venues) == 0 {
		return []schema.TimelineEntry{}
	}
	venueName := venues[0].Name
	minutes := func(n int) *int { return &n }

	return []schema.TimelineEntry{
		{
			Time:            "6:30 PM",
			Activity:        "Meet at venue",
			Location:        venueName,
			DurationMinutes: minutes(15),
			Notes:           "Arrive a bit early to get a good table",
		},
		{
			Time:            "6:45 PM",
			Activity:        "Order drinks/appetizers",
			Location:        venueName,
			DurationMinutes: minutes(30),
			Notes:           "Start with light conversation",
		},
		{
			Time:            "7:15 PM",
			Activity:        "Main course",
			Location:        venueName,
			DurationMinutes: minutes(60),
			Notes:           "Enjoy your meal together",
		},
		{
			Time:            "8:30 PM",
			Activity:        "Dessert/wrap up",
			Location:        venueName,
			DurationMinutes: minutes(30),
			Notes:           "Optional: Explore nearby for a walk",
		},
		{
			Time:     "9:00 PM",
			Activity: "Head home",
			Location: "Safe return journey",
			Notes:    "Share your ride details with someone",
		},
	}
}
