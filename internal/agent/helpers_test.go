package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		input    string
		wantDay  string
		wantTime string
	}{
		{"Saturday 7pm", "Saturday", "7pm"},
		{"friday 8:30 pm", "Friday", "8:30 pm"},
		{"2024-02-10 19:00", "", "2024-02-10 19:00"},
		{"tomorrow evening", "", ""},
		{"SUNDAY 11PM", "Sunday", "11pm"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseDateTime(tt.input)
			assert.Equal(t, tt.wantDay, got.Day)
			assert.Equal(t, tt.wantTime, got.Time)
		})
	}
}

func TestParsedHour(t *testing.T) {
	tests := []struct {
		token string
		hour  int
		ok    bool
	}{
		{"7pm", 19, true},
		{"11pm", 23, true},
		{"12pm", 12, true},
		{"12am", 0, true},
		{"9am", 9, true},
		{"8:30 pm", 20, true},
		{"19:00", 19, true},
		{"", 0, false},
		{"evening", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			hour, ok := parsedHour(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.hour, hour)
			}
		})
	}
}

func TestGenerateSafetyChecklist(t *testing.T) {
	// Regular evening keeps the base five entries.
	base := generateSafetyChecklist("7pm")
	assert.Len(t, base, 5)

	// Late night adds the return-journey entries.
	late := generateSafetyChecklist("11pm")
	assert.Len(t, late, 7)
	assert.Contains(t, late, "Book a verified cab service for return journey")

	// Early morning counts as late night too.
	early := generateSafetyChecklist("2am")
	assert.Len(t, early, 7)

	// Unparsable time stays at the base.
	assert.Len(t, generateSafetyChecklist(""), 5)
}

func TestFormatBudget(t *testing.T) {
	assert.Equal(t, "₹3,000", formatBudget(3000, "INR"))
	assert.Equal(t, "₹150", formatBudget(150, "INR"))
	assert.Equal(t, "₹1,250,000", formatBudget(1250000, "INR"))
	assert.Equal(t, "$45.50", formatBudget(45.5, "USD"))
	assert.Equal(t, "EUR 99.00", formatBudget(99, "EUR"))
}

func TestParamReaders(t *testing.T) {
	params := map[string]any{
		"f":     3.5,
		"i":     float64(7), // JSON-decoded numbers arrive as float64
		"n":     42,
		"s":     "hello",
		"empty": "",
	}

	assert.Equal(t, 3.5, floatParam(params, "f", 0))
	assert.Equal(t, float64(42), floatParam(params, "n", 0))
	assert.Equal(t, 1.5, floatParam(params, "missing", 1.5))

	assert.Equal(t, 7, intParam(params, "i", 0))
	assert.Equal(t, 42, intParam(params, "n", 0))
	assert.Equal(t, 9, intParam(params, "missing", 9))

	assert.Equal(t, "hello", stringParam(params, "s", "x"))
	assert.Equal(t, "x", stringParam(params, "empty", "x"))
	assert.Equal(t, "x", stringParam(params, "missing", "x"))
}

func TestPayloadRoundTrip(t *testing.T) {
	type sample struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	payload := toPayload(sample{Name: "test", Count: 3})
	assert.Equal(t, "test", payload["name"])

	var out sample
	assert.NoError(t, decodeInto(payload, &out))
	assert.Equal(t, sample{Name: "test", Count: 3}, out)
}
