package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsedTime is the best-effort breakdown of a free-text date/time string.
// It is advisory context for the planner prompt, never used for control flow.
type ParsedTime struct {
	Original string `json:"original"`
	Day      string `json:"day,omitempty"`
	Time     string `json:"time,omitempty"`
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Ordered most to least specific so "8:30 pm" is captured whole rather than
// as a bare "30 pm".
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+(\d{2}:\d{2})`),
	regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(am|pm)?`),
	regexp.MustCompile(`(?i)(\d{1,2})\s*(am|pm)`),
}

// parseDateTime extracts a weekday token and a clock-time token from strings
// like "Saturday 7pm" or "2024-02-10 19:00". Tokens that do not match any of
// the literal patterns are simply left empty.
func parseDateTime(dateStr string) ParsedTime {
	s := strings.ToLower(strings.TrimSpace(dateStr))
	parsed := ParsedTime{Original: s}

	for _, day := range weekdays {
		if strings.Contains(s, day) {
			parsed.Day = strings.ToUpper(day[:1]) + day[1:]
			break
		}
	}

	for _, re := range timePatterns {
		if m := re.FindString(s); m != "" {
			parsed.Time = m
			break
		}
	}

	return parsed
}

var hourToken = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

// parsedHour converts an extracted time token into a 24h hour. The second
// return value is false when no hour could be derived.
func parsedHour(timeToken string) (int, bool) {
	m := hourToken.FindStringSubmatch(strings.TrimSpace(timeToken))
	if m == nil {
		return 0, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return 0, false
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, true
}

// generatePlanID derives a plan ID from the wall clock. Two plans created in
// the same second can collide; acceptable here since planning a single
// request takes longer than that under any realistic load.
func generatePlanID() string {
	return "plan_" + time.Now().Format("20060102_150405")
}

// generateSafetyChecklist builds the fixed checklist, appending two extra
// entries for late-night outings (parsed hour >= 21 or <= 4).
func generateSafetyChecklist(timeToken string) []string {
	checklist := []string{
		"Share live location with a trusted friend or family member",
		"Choose a public, well-lit venue",
		"Arrange your own transportation",
		"Keep emergency contacts handy",
		"Trust your instincts - leave if uncomfortable",
	}

	if hour, ok := parsedHour(timeToken); ok && (hour >= 21 || hour <= 4) {
		checklist = append(checklist,
			"Inform someone about your expected return time",
			"Book a verified cab service for return journey",
		)
	}

	return checklist
}

// formatBudget renders an amount with the currency symbol and thousands
// separators, e.g. ₹3,000 or $45.50.
func formatBudget(amount float64, currency string) string {
	switch currency {
	case "INR":
		return "₹" + groupThousands(fmt.Sprintf("%.0f", amount))
	case "USD":
		return "$" + groupThousands(fmt.Sprintf("%.2f", amount))
	default:
		return currency + " " + groupThousands(fmt.Sprintf("%.2f", amount))
	}
}

func groupThousands(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}

// toPayload flattens a typed value into the generic payload map carried by a
// StepResult. Round-tripping through JSON keeps the shape identical to what
// an external consumer of the report would see.
func toPayload(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// decodeInto re-marshals a generic payload value into a typed destination.
func decodeInto(src any, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// Param readers with defaults; plan params arrive either as native Go values
// (fallback plans) or as JSON-decoded values (LLM plans), so numbers may be
// int or float64.

func floatParam(params map[string]any, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

func intParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

func stringParam(params map[string]any, key string, def string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return def
}
