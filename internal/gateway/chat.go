package gateway

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rahul/rendezvous/internal/schema"
)

const chatUsage = "Send me a plan request like:\n" +
	"`Mumbai; saturday 7pm; 2000; rooftop dining`\n\n" +
	"Format: *city; date/time; budget per person; preferences*\n" +
	"Budget and preferences are optional."

// parseChatRequest turns a semicolon-separated chat message into a
// PlanRequest. Only city and date/time are mandatory; budget and the
// preference text are optional trailing fields.
func parseChatRequest(text string) (schema.PlanRequest, error) {
	parts := strings.Split(text, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return schema.PlanRequest{}, fmt.Errorf("need at least city and date/time")
	}

	req := schema.PlanRequest{
		City:     parts[0],
		DateTime: parts[1],
	}

	if len(parts) > 2 && parts[2] != "" {
		raw := strings.TrimPrefix(parts[2], "₹")
		if amount, err := strconv.ParseFloat(raw, 64); err == nil && amount > 0 {
			req.BudgetPerPerson = &amount
		}
	}
	if len(parts) > 3 && parts[3] != "" {
		req.Preferences = parts[3]
	}
	return req, nil
}

// renderPlan formats a pipeline response as chat Markdown.
func renderPlan(resp schema.PlanResponse) string {
	if !resp.Success || resp.Plan == nil {
		var b strings.Builder
		b.WriteString("❌ *" + resp.Message + "*\n")
		for _, e := range resp.Errors {
			b.WriteString("• " + e + "\n")
		}
		return b.String()
	}

	p := resp.Plan
	var b strings.Builder

	fmt.Fprintf(&b, "🌃 *%s*\n%s\n\n", p.Title, p.Summary)
	fmt.Fprintf(&b, "📅 %s  |  💰 %s\n", p.DateTime, p.TotalBudgetEstimate)

	if w := p.WeatherForecast; w != nil {
		fmt.Fprintf(&b, "\n🌤 *Weather:* %.0f°C, %s\n", w.Temperature, w.Description)
		if w.Suggestion != "" {
			b.WriteString("_" + w.Suggestion + "_\n")
		}
	}

	if len(p.Venues) > 0 {
		b.WriteString("\n📍 *Venues:*\n")
		for i, v := range p.Venues {
			fmt.Fprintf(&b, "%d. *%s*", i+1, v.Name)
			if v.Rating != nil {
				fmt.Fprintf(&b, " ⭐ %.1f", *v.Rating)
			}
			if v.PriceLevel != nil {
				b.WriteString("  " + strings.Repeat("₹", *v.PriceLevel))
			}
			b.WriteString("\n   " + v.Address + "\n")
		}
	}

	if len(p.Timeline) > 0 {
		b.WriteString("\n🕐 *Timeline:*\n")
		for _, t := range p.Timeline {
			fmt.Fprintf(&b, "• %s — %s\n", t.Time, t.Activity)
		}
	}

	if len(p.SafetyChecklist) > 0 {
		b.WriteString("\n🛡 *Safety checklist:*\n")
		for _, s := range p.SafetyChecklist {
			b.WriteString("• " + s + "\n")
		}
	}

	if len(p.TransportationSuggestions) > 0 {
		b.WriteString("\n🚕 *Getting around:*\n")
		for _, t := range p.TransportationSuggestions {
			b.WriteString("• " + t + "\n")
		}
	}

	if p.BackupPlan != "" {
		b.WriteString("\n☂️ *Backup plan:* " + p.BackupPlan + "\n")
	}

	return b.String()
}
