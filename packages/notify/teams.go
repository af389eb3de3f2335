package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/http"
)

// TeamsNotifier sends an Adaptive Card to a Microsoft Teams webhook
type TeamsNotifier struct {
	webhookURL string
	client     *http.Client
}

type TeamsOption func(*TeamsNotifier)

func WithTeamsClient(c *http.Client) TeamsOption {
	return func(t *TeamsNotifier) {
		t.client = c
	}
}

func NewTeamsNotifier(webhookURL string, opts ...TeamsOption) *TeamsNotifier {
	t := &TeamsNotifier{
		webhookURL: webhookURL,
		client:     newClient(defaultTimeout),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *TeamsNotifier) Name() string {
	return "teams"
}

type teamsMessage struct {
	Type        string      `json:"type"`
	Attachments []teamsCard `json:"attachments"`
}

type teamsCard struct {
	ContentType string           `json:"contentType"`
	Content     teamsCardContent `json:"content"`
}

type teamsCardContent struct {
	Schema  string       `json:"$schema"`
	Type    string       `json:"type"`
	Version string       `json:"version"`
	Body    []teamsBlock `json:"body"`
}

type teamsBlock struct {
	Type      string      `json:"type"`
	Size      string      `json:"size,omitempty"`
	Weight    string      `json:"weight,omitempty"`
	Text      string      `json:"text,omitempty"`
	Color     string      `json:"color,omitempty"`
	Wrap      bool        `json:"wrap,omitempty"`
	Separator bool        `json:"separator,omitempty"`
	Facts     []teamsFact `json:"facts,omitempty"`
}

type teamsFact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

func (t *TeamsNotifier) Notify(ctx context.Context, summary *Summary) error {
	color := "good"
	mark := "✓"
	switch {
	case !summary.OK():
		color = "attention"
		mark = "✗"
	case summary.IsRecovery:
		mark = "🎉"
	}

	facts := []teamsFact{
		{Title: "Scenarios", Value: fmt.Sprintf("%d", summary.Total)},
		{Title: "Passed", Value: fmt.Sprintf("%d", summary.Passed)},
		{Title: "Failed", Value: fmt.Sprintf("%d", summary.Failed)},
		{Title: "Skipped", Value: fmt.Sprintf("%d", summary.Skipped)},
		{Title: "Duration", Value: summary.Duration.Round(time.Millisecond).String()},
	}
	if summary.BaseURL != "" {
		facts = append(facts, teamsFact{Title: "API", Value: summary.BaseURL})
	}

	body := []teamsBlock{
		{Type: "TextBlock", Size: "Large", Weight: "Bolder", Color: color, Text: mark + " " + summary.Title()},
		{Type: "FactSet", Separator: true, Facts: facts},
	}
	for _, f := range summary.FailedScenarios {
		body = append(body, teamsBlock{
			Type:      "TextBlock",
			Wrap:      true,
			Separator: true,
			Text:      fmt.Sprintf("**%s** %s\n\n%s", f.ID, f.Name, bulletList(f.Failures)),
		})
	}
	for _, th := range summary.ThresholdFailures {
		body = append(body, teamsBlock{Type: "TextBlock", Wrap: true, Color: "attention", Text: "Threshold: " + th})
	}
	body = append(body, teamsBlock{Type: "TextBlock", Size: "Small", Text: footer})

	msg := teamsMessage{
		Type: "message",
		Attachments: []teamsCard{{
			ContentType: "application/vnd.microsoft.card.adaptive",
			Content: teamsCardContent{
				Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
				Type:    "AdaptiveCard",
				Version: "1.4",
				Body:    body,
			},
		}},
	}

	return postJSON(ctx, t.client, t.webhookURL, msg)
}

func bulletList(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return "- " + strings.Join(lines, "\n- ")
}
