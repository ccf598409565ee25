// Package briefing composes daily briefing prompts from a day's rotation
// status and sends them to a text generator.
package briefing

import (
	"errors"
	"fmt"
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
)

var (
	// ErrNoRotation is returned for days before the schedule starts
	ErrNoRotation = errors.New("no rotation on this date")
	// ErrUnavailable is returned when no generator is configured
	ErrUnavailable = errors.New("briefing assistant unavailable")
)

// UnavailableNotice is shown in place of a briefing when ErrUnavailable is returned
const UnavailableNotice = "## AI Assistant Unavailable\n\nThe Gemini API key is not configured. Set `briefing.api_key` or `OFFSHORE_MATE_BRIEFING_API_KEY`."

const markdownRule = "Generate a concise, helpful daily briefing in Markdown format. Ensure lists are properly formatted."

// Prompt is everything a generator needs for one briefing
type Prompt struct {
	Date              time.Time
	Status            rotation.Status
	Title             string
	SystemInstruction string
	Query             string
	UseGrounding      bool // allow web search for local, timely content
}

// BuildPrompt selects the briefing for a classified day
func BuildPrompt(c rotation.Classification) (Prompt, error) {
	p := Prompt{Date: c.Date, Status: c.Status}
	date := c.Date.Format("Monday, January 2")

	switch c.Status {
	case rotation.StatusOnDuty:
		p.SystemInstruction = "You are an AI assistant for an offshore worker. " + markdownRule
		switch {
		case c.IsFirstDayOfBlock:
			p.Title = "Hitch Start Checklist"
			p.Query = fmt.Sprintf("For %s, which is an offshore day, provide a briefing. "+
				"It's the first day of the hitch, so give me a %q with at least 4 important items.", date, p.Title)
		case c.IsLastDayOfBlock:
			p.Title = "Crossover Checklist"
			p.Query = fmt.Sprintf("For %s, which is an offshore day, provide a briefing. "+
				"It's the crossover day, so create a %q with at least 4 items for a smooth handover.", date, p.Title)
		default:
			p.Title = "Daily Focus"
			p.Query = fmt.Sprintf("For %s, which is an offshore day, provide a briefing. "+
				"Provide a %q with a suggested task, a relevant safety reminder, and one motivational quote.", date, p.Title)
		}
	case rotation.StatusTransit:
		p.Title = "Travel Day Checklist"
		p.SystemInstruction = "You are an AI assistant for an offshore worker on a travel day. " + markdownRule
		p.Query = fmt.Sprintf("For %s, which is a travel day for my offshore rotation, provide a %q. "+
			"Include items like checking travel documents, confirming flight/transport details, "+
			"packing last-minute essentials, and a reminder to notify family of travel plans.", date, p.Title)
	case rotation.StatusOffDuty:
		p.Title = "Day at Home"
		p.SystemInstruction = "You are a helpful AI life-coach for an offshore worker on their leave. " +
			"Generate a concise, helpful daily briefing in Markdown format using Google Search for timely info. " +
			"Ensure lists are properly formatted."
		p.Query = fmt.Sprintf("I am an offshore worker on leave in my hometown. For today, %s, "+
			"suggest one local activity or event happening today, one productive personal task, "+
			"and one idea for relaxation.", date)
		p.UseGrounding = true
	default:
		return Prompt{}, ErrNoRotation
	}
	return p, nil
}
