package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PromptManager resolves the planner prompt template. A planner.md file in
// the prompts directory overrides the built-in template; placeholders use
// the {{name}} form in either case.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

func (pm *PromptManager) PlannerTemplate() string {
	if pm != nil && pm.Directory != "" {
		path := filepath.Join(pm.Directory, "planner.md")
		if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
			return string(data)
		}
	}
	return defaultPlannerTemplate
}

// buildPrompt fills the template with the enriched request data.
func (pm *PromptManager) buildPrompt(d planDraft) string {
	dietary := "none specified"
	if len(d.Dietary) > 0 {
		dietary = strings.Join(d.Dietary, ", ")
	}
	preferences := d.Preferences
	if preferences == "" {
		preferences = "casual, nice ambience"
	}
	accessibility := d.Accessibility
	if accessibility == "" {
		accessibility = "none"
	}
	budget := "flexible"
	estimated := "1500"
	if d.Budget != nil {
		budget = fmt.Sprintf("%g", *d.Budget)
		estimated = budget
	}

	r := strings.NewReplacer(
		"{{city}}", d.City,
		"{{latitude}}", fmt.Sprintf("%g", d.Lat),
		"{{longitude}}", fmt.Sprintf("%g", d.Lon),
		"{{budget}}", budget,
		"{{estimated_budget}}", estimated,
		"{{price_level}}", fmt.Sprintf("%d", d.PriceLevel),
		"{{date_time}}", d.DateTime,
		"{{parsed_time}}", formatParsedTime(d.Parsed),
		"{{preferences}}", preferences,
		"{{dietary}}", dietary,
		"{{accessibility}}", accessibility,
	)
	return r.Replace(pm.PlannerTemplate())
}

func formatParsedTime(p ParsedTime) string {
	parts := []string{}
	if p.Day != "" {
		parts = append(parts, "day="+p.Day)
	}
	if p.Time != "" {
		parts = append(parts, "time="+p.Time)
	}
	if len(parts) == 0 {
		return "unparsed"
	}
	return strings.Join(parts, ", ")
}

const defaultPlannerTemplate = `You are planning a social outing. Analyze the request and create a structured execution plan.

**User Request:**
- City: {{city}}
- Coordinates: {{latitude}}, {{longitude}}
- Budget per person: {{budget}}
- Price level: {{price_level}}/4
- Date/Time: {{date_time}} ({{parsed_time}})
- Preferences: {{preferences}}
- Dietary restrictions: {{dietary}}
- Accessibility needs: {{accessibility}}

**Your Task:**
Create a JSON plan with these exact keys:

1. "user_intent": A one-line summary of what the user wants
2. "steps": An array of step objects, each with:
   - "id": unique identifier (e.g., "step_1", "step_2")
   - "action": MUST be one of: "fetch_weather", "search_venues", "check_events", "fetch_images", "compose_final"
   - "params": object with action-specific parameters
   - "reasoning": why this step is needed

3. "estimated_budget": total estimated cost (float)
4. "safety_notes": array of safety considerations (strings)

**Action Parameter Requirements:**

- **fetch_weather**:
  {"latitude": {{latitude}}, "longitude": {{longitude}}, "target_datetime": null}

- **search_venues**:
  {"query": "include cuisine/preferences", "latitude": {{latitude}}, "longitude": {{longitude}}, "radius": 3000, "venue_type": "restaurant", "max_results": 5}

- **check_events** (optional):
  {"city": "{{city}}", "date": "{{date_time}}", "keywords": "relevant keywords"}

- **fetch_images**:
  {"query": "describe scene/ambience", "count": 3}

- **compose_final**:
  {"include_timeline": true, "include_backup_plan": true}

**Rules:**
- Always include: fetch_weather, search_venues, fetch_images, compose_final
- search_venues should incorporate dietary restrictions and preferences in the query
- Provide 2-3 venue search steps with different queries if budget allows
- Consider accessibility needs in venue search queries
- Safety notes should address public venues, timing, and transportation

**Return ONLY valid JSON, no additional text:**

{
  "user_intent": "...",
  "steps": [...],
  "estimated_budget": {{estimated_budget}},
  "safety_notes": [...]
}
`
