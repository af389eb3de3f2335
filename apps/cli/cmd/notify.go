package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/contractcheck/packages/notify"
	"github.com/abdul-hamid-achik/contractcheck/packages/suite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	notifyFlag       string
	notifyOnFlag     string
	slackWebhookFlag string
	slackChannelFlag string
	teamsWebhookFlag string
)

func init() {
	runCmd.Flags().StringVar(&notifyFlag, "notify", getEnvString("CONTRACTCHECK_NOTIFY", ""), "Notify services after the run: slack, teams (comma-separated) (env: CONTRACTCHECK_NOTIFY)")
	runCmd.Flags().StringVar(&notifyOnFlag, "notify-on", getEnvString("CONTRACTCHECK_NOTIFY_ON", "failure"), "When to notify: always, failure, success, recovery (env: CONTRACTCHECK_NOTIFY_ON)")
	runCmd.Flags().StringVar(&slackWebhookFlag, "slack-webhook", getEnvString("SLACK_WEBHOOK_URL", ""), "Slack incoming webhook URL (env: SLACK_WEBHOOK_URL)")
	runCmd.Flags().StringVar(&slackChannelFlag, "slack-channel", getEnvString("SLACK_CHANNEL", ""), "Slack channel override (env: SLACK_CHANNEL)")
	runCmd.Flags().StringVar(&teamsWebhookFlag, "teams-webhook", getEnvString("TEAMS_WEBHOOK_URL", ""), "Microsoft Teams webhook URL (env: TEAMS_WEBHOOK_URL)")

	_ = runCmd.RegisterFlagCompletionFunc("notify-on", cobra.FixedCompletions(
		[]string{"always", "failure", "success", "recovery"}, cobra.ShellCompDirectiveNoFileComp))
}

// newNotifyManager builds the manager for --notify, or nil when no
// service was requested.
func newNotifyManager(services, on, slackWebhook, slackChannel, teamsWebhook string) (*notify.Manager, error) {
	if strings.TrimSpace(services) == "" {
		return nil, nil
	}
	notifyOn, err := notify.ParseNotifyOn(on)
	if err != nil {
		return nil, usageError(err)
	}

	m := notify.NewManager(notifyOn)
	for _, name := range strings.Split(services, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case "slack":
			if slackWebhook == "" {
				return nil, usageError(fmt.Errorf("--notify slack needs --slack-webhook or SLACK_WEBHOOK_URL"))
			}
			var opts []notify.SlackOption
			if slackChannel != "" {
				opts = append(opts, notify.WithSlackChannel(slackChannel))
			}
			m.AddNotifier(notify.NewSlackNotifier(slackWebhook, opts...))
		case "teams":
			if teamsWebhook == "" {
				return nil, usageError(fmt.Errorf("--notify teams needs --teams-webhook or TEAMS_WEBHOOK_URL"))
			}
			m.AddNotifier(notify.NewTeamsNotifier(teamsWebhook))
		default:
			return nil, usageError(fmt.Errorf("unknown notify service %q (valid: slack, teams)", name))
		}
	}
	return m, nil
}

// sendNotifications never fails the run; delivery errors are logged.
func sendNotifications(ctx context.Context, m *notify.Manager, result *suite.RunResult, logger *logrus.Logger) {
	if m == nil || result == nil {
		return
	}
	if err := m.Notify(ctx, notify.Summarize(result)); err != nil {
		logger.WithError(err).Warn("notification failed")
	}
}
