package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/http"
)

// SlackNotifier sends notifications to Slack via an incoming webhook
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	iconEmoji  string
	client     *http.Client
	now        func() time.Time
}

type SlackOption func(*SlackNotifier)

func WithSlackChannel(channel string) SlackOption {
	return func(s *SlackNotifier) {
		s.channel = channel
	}
}

func WithSlackUsername(username string) SlackOption {
	return func(s *SlackNotifier) {
		s.username = username
	}
}

func WithSlackIconEmoji(emoji string) SlackOption {
	return func(s *SlackNotifier) {
		s.iconEmoji = emoji
	}
}

func WithSlackClient(c *http.Client) SlackOption {
	return func(s *SlackNotifier) {
		s.client = c
	}
}

func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	s := &SlackNotifier{
		webhookURL: webhookURL,
		username:   "contractcheck",
		iconEmoji:  ":test_tube:",
		client:     newClient(defaultTimeout),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer,omitempty"`
	TS     int64        `json:"ts,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func (s *SlackNotifier) Notify(ctx context.Context, summary *Summary) error {
	color := "good"
	emoji := ":white_check_mark:"
	switch {
	case !summary.OK():
		color = "danger"
		emoji = ":x:"
	case summary.IsRecovery:
		emoji = ":tada:"
	}

	fields := []slackField{
		{Title: "Scenarios", Value: fmt.Sprintf("%d", summary.Total), Short: true},
		{Title: "Passed", Value: fmt.Sprintf("%d", summary.Passed), Short: true},
		{Title: "Failed", Value: fmt.Sprintf("%d", summary.Failed), Short: true},
		{Title: "Skipped", Value: fmt.Sprintf("%d", summary.Skipped), Short: true},
		{Title: "Duration", Value: summary.Duration.Round(time.Millisecond).String(), Short: true},
	}
	if summary.BaseURL != "" {
		fields = append(fields, slackField{Title: "API", Value: summary.BaseURL, Short: true})
	}

	msg := slackMessage{
		Channel:   s.channel,
		Username:  s.username,
		IconEmoji: s.iconEmoji,
		Attachments: []slackAttachment{{
			Color:  color,
			Title:  emoji + " " + summary.Title(),
			Text:   slackDetails(summary),
			Fields: fields,
			Footer: footer,
			TS:     s.now().Unix(),
		}},
	}

	return postJSON(ctx, s.client, s.webhookURL, msg)
}

func slackDetails(summary *Summary) string {
	var b strings.Builder
	if len(summary.FailedScenarios) > 0 {
		b.WriteString("*Failed scenarios:*\n")
		for _, f := range summary.FailedScenarios {
			fmt.Fprintf(&b, "• `%s` %s\n", f.ID, f.Name)
			for _, line := range f.Failures {
				fmt.Fprintf(&b, "  - %s\n", line)
			}
		}
	}
	if summary.SetupFailures > 0 {
		fmt.Fprintf(&b, "*Setup:* %d create response(s) broke the schema\n", summary.SetupFailures)
	}
	for _, t := range summary.ThresholdFailures {
		fmt.Fprintf(&b, "*Threshold:* %s\n", t)
	}
	return b.String()
}
