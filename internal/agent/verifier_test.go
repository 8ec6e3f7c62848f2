package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/rendezvous/internal/schema"
)

func testPlan() *schema.Plan {
	return &schema.Plan{
		PlanID:     "plan_test",
		UserIntent: "Plan a dinner date in Mumbai",
	}
}

func reportWith(results ...schema.StepResult) schema.ExecutionReport {
	return schema.ExecutionReport{
		PlanID:        "plan_test",
		Results:       results,
		OverallStatus: schema.OverallSuccess,
	}
}

func venueResult(venues []schema.Venue) schema.StepResult {
	return schema.StepResult{
		StepID:    "step_2",
		Action:    schema.ActionSearchVenues,
		Status:    schema.StepSuccess,
		Payload:   map[string]any{"venues": venues},
		Source:    "google_places",
		Timestamp: time.Now(),
	}
}

func weatherResult(w *schema.Weather) schema.StepResult {
	return schema.StepResult{
		StepID:    "step_1",
		Action:    schema.ActionFetchWeather,
		Status:    schema.StepSuccess,
		Payload:   toPayload(w),
		Source:    "openweather",
		Timestamp: time.Now(),
	}
}

func TestVerifierApprovesGoodResults(t *testing.T) {
	v := NewVerifier("INR", nil)

	report := reportWith(
		weatherResult(&schema.Weather{Temperature: 28, Condition: "Clear", Description: "clear sky"}),
		venueResult(sampleVenues()),
	)
	budget := 2000.0
	req := schema.PlanRequest{City: "Mumbai", DateTime: "saturday 7pm", BudgetPerPerson: &budget}

	verdict := v.Verify(testPlan(), report, req)

	assert.True(t, verdict.Approved)
	assert.Greater(t, verdict.ConfidenceScore, 0.5)
	require.NotNil(t, verdict.FinalOutput)
	assert.Empty(t, verdict.RetryRecommendations)

	final := verdict.FinalOutput
	assert.Equal(t, "Night Out in Mumbai", final.Title)
	assert.Equal(t, "Plan a dinner date in Mumbai. We've found 3 great venue options for you!", final.Summary)
	assert.Equal(t, "₹4,000", final.TotalBudgetEstimate)
	assert.Len(t, final.Venues, 3)
	assert.Len(t, final.SafetyChecklist, 5)
	require.NotEmpty(t, final.Timeline)
	assert.Equal(t, "6:30 PM", final.Timeline[0].Time)
	assert.Equal(t, "Cafe Aurora", final.Timeline[0].Location)
}

func TestVerifierRejectsWhenNoVenues(t *testing.T) {
	v := NewVerifier("INR", nil)

	report := reportWith(
		weatherResult(&schema.Weather{Temperature: 28}),
		venueResult(nil),
	)
	verdict := v.Verify(testPlan(), report, schema.PlanRequest{City: "Mumbai", DateTime: "7pm"})

	assert.False(t, verdict.Approved)
	assert.Nil(t, verdict.FinalOutput)

	var critical *schema.ValidationIssue
	for i := range verdict.Issues {
		if verdict.Issues[i].Severity == schema.SeverityCritical {
			critical = &verdict.Issues[i]
		}
	}
	require.NotNil(t, critical)
	assert.Equal(t, schema.CategoryVenues, critical.Category)
	assert.Equal(t, "No venues found matching criteria", critical.Message)

	assert.Equal(t, []string{
		"Retry venue search with broader criteria",
		"Increase search radius to 5000m",
	}, verdict.RetryRecommendations)
}

func TestVerifierFewVenuesWarning(t *testing.T) {
	v := NewVerifier("INR", nil)

	report := reportWith(venueResult(sampleVenues()[:2]))
	verdict := v.Verify(testPlan(), report, schema.PlanRequest{City: "Pune", DateTime: "8pm"})

	assert.True(t, verdict.Approved)

	found := false
	for _, issue := range verdict.Issues {
		if issue.Severity == schema.SeverityWarning && issue.Message == "Only 2 venues found - limited options" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestVerifierRainTriggersWarningAndBackup(t *testing.T) {
	v := NewVerifier("INR", nil)

	rain := 80.0
	report := reportWith(
		weatherResult(&schema.Weather{Temperature: 26, Condition: "Rain", RainProbability: &rain}),
		venueResult(sampleVenues()),
	)
	verdict := v.Verify(testPlan(), report, schema.PlanRequest{City: "Mumbai", DateTime: "7pm"})

	assert.True(t, verdict.Approved)

	found := false
	for _, issue := range verdict.Issues {
		if issue.Category == schema.CategoryWeather && issue.Message == "High chance of rain (80%)" {
			found = true
		}
	}
	assert.True(t, found)

	require.NotNil(t, verdict.FinalOutput)
	assert.NotEmpty(t, verdict.FinalOutput.BackupPlan)
}

func TestVerifierMissingWeatherWarning(t *testing.T) {
	v := NewVerifier("INR", nil)

	report := reportWith(venueResult(sampleVenues()))
	verdict := v.Verify(testPlan(), report, schema.PlanRequest{City: "Mumbai", DateTime: "7pm"})

	assert.True(t, verdict.Approved)
	found := false
	for _, issue := range verdict.Issues {
		if issue.Message == "Weather data unavailable" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Nil(t, verdict.FinalOutput.WeatherForecast)
}

func TestVerifierBudgetValidation(t *testing.T) {
	v := NewVerifier("INR", nil)

	t.Run("some venues over budget", func(t *testing.T) {
		budget := 2000.0 // level 3 estimates to 2250
		report := reportWith(
			weatherResult(&schema.Weather{Temperature: 25}),
			venueResult(sampleVenues()),
		)
		verdict := v.Verify(testPlan(), report, schema.PlanRequest{
			City: "Mumbai", DateTime: "7pm", BudgetPerPerson: &budget,
		})

		found := false
		for _, issue := range verdict.Issues {
			if issue.Category == schema.CategoryBudget && issue.Message == "1 venues may be above budget" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("all venues over budget", func(t *testing.T) {
		budget := 1000.0 // every price level estimates above this
		report := reportWith(
			weatherResult(&schema.Weather{Temperature: 25}),
			venueResult(sampleVenues()),
		)
		verdict := v.Verify(testPlan(), report, schema.PlanRequest{
			City: "Mumbai", DateTime: "7pm", BudgetPerPerson: &budget,
		})

		found := false
		for _, issue := range verdict.Issues {
			if issue.Severity == schema.SeverityWarning && issue.Message == "All suggested venues may exceed budget" {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestVerifierAccessibilityWarning(t *testing.T) {
	v := NewVerifier("INR", nil)

	venues := sampleVenues()
	no := false
	for i := range venues {
		venues[i].WheelchairAccessible = &no
	}

	report := reportWith(
		weatherResult(&schema.Weather{Temperature: 25}),
		venueResult(venues),
	)
	verdict := v.Verify(testPlan(), report, schema.PlanRequest{
		City: "Mumbai", DateTime: "7pm", AccessibilityNeeds: "wheelchair",
	})

	found := false
	for _, issue := range verdict.Issues {
		if issue.Category == schema.CategoryAccessibility {
			found = true
		}
	}
	assert.True(t, found)
}

func TestVerifierLateNightChecklist(t *testing.T) {
	v := NewVerifier("INR", nil)

	report := reportWith(
		weatherResult(&schema.Weather{Temperature: 22}),
		venueResult(sampleVenues()),
	)
	verdict := v.Verify(testPlan(), report, schema.PlanRequest{City: "Mumbai", DateTime: "saturday 11pm"})

	require.NotNil(t, verdict.FinalOutput)
	assert.Len(t, verdict.FinalOutput.SafetyChecklist, 7)
}

func TestVerifierConfidenceClamped(t *testing.T) {
	v := NewVerifier("INR", nil)

	// No venues, no weather: the deductions stack well past zero.
	verdict := v.Verify(testPlan(), reportWith(), schema.PlanRequest{City: "Mumbai", DateTime: "7pm"})

	assert.GreaterOrEqual(t, verdict.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, verdict.ConfidenceScore, 1.0)
	assert.False(t, verdict.Approved)
}

func TestVerifierIdempotent(t *testing.T) {
	v := NewVerifier("INR", nil)

	report := reportWith(
		weatherResult(&schema.Weather{Temperature: 28}),
		venueResult(sampleVenues()),
	)
	req := schema.PlanRequest{City: "Mumbai", DateTime: "7pm"}

	first := v.Verify(testPlan(), report, req)
	second := v.Verify(testPlan(), report, req)

	assert.Equal(t, first.Approved, second.Approved)
	assert.Equal(t, first.ConfidenceScore, second.ConfidenceScore)
	assert.Equal(t, first.Issues, second.Issues)
}

func TestVerifierSkipsUnparsableVenueEntries(t *testing.T) {
	v := NewVerifier("INR", nil)

	report := reportWith(schema.StepResult{
		StepID: "step_2",
		Action: schema.ActionSearchVenues,
		Status: schema.StepSuccess,
		Payload: map[string]any{"venues": []any{
			map[string]any{"name": "Good Venue", "address": "1 Main St"},
			"not an object",
		}},
	})
	verdict := v.Verify(testPlan(), report, schema.PlanRequest{City: "Mumbai", DateTime: "7pm"})

	require.NotNil(t, verdict.FinalOutput)
	require.Len(t, verdict.FinalOutput.Venues, 1)
	assert.Equal(t, "Good Venue", verdict.FinalOutput.Venues[0].Name)
}

func TestVerifierSafetyScore(t *testing.T) {
	v := NewVerifier("INR", nil)

	t.Run("baseline", func(t *testing.T) {
		verdict := v.Verify(testPlan(), reportWith(venueResult(sampleVenues())), schema.PlanRequest{City: "Mumbai", DateTime: "7pm"})
		require.NotNil(t, verdict.SafetyCheck)
		assert.Equal(t, 8, verdict.SafetyCheck.SafetyScore)
		assert.True(t, verdict.SafetyCheck.PublicVenue)
	})

	t.Run("penalties", func(t *testing.T) {
		verdict := v.Verify(testPlan(), reportWith(), schema.PlanRequest{City: "Mumbai", DateTime: "7pm"})
		require.NotNil(t, verdict.SafetyCheck)
		assert.Equal(t, 6, verdict.SafetyCheck.SafetyScore)
		assert.False(t, verdict.SafetyCheck.PublicVenue)
	})
}
