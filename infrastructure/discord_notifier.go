package infrastructure

import (
	"context"
	"fmt"

	"rewarder/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts a notice to a Discord webhook for every executed reward
type DiscordNotifier struct {
	executor  webhookExecutor
	webhookID string
	token     string
}

// NewDiscordNotifier creates a notifier using a token-less discordgo session
func NewDiscordNotifier(webhookID, token string) (*DiscordNotifier, error) {
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return newDiscordNotifier(session, webhookID, token), nil
}

func newDiscordNotifier(executor webhookExecutor, webhookID, token string) *DiscordNotifier {
	return &DiscordNotifier{
		executor:  executor,
		webhookID: webhookID,
		token:     token,
	}
}

// Register subscribes the notifier to executed rewards on bus
func (n *DiscordNotifier) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeRewardExecuted, func(ctx context.Context, event events.Event) {
		executed, ok := event.(events.RewardExecutedEvent)
		if !ok {
			return
		}
		if err := n.Notify(ctx, executed); err != nil {
			log.WithFields(log.Fields{
				"reward_id": executed.RewardID,
				"user_id":   executed.UserID,
			}).WithError(err).Warn("Failed to send Discord reward notice")
		}
	})
}

// Notify sends a single reward notice
func (n *DiscordNotifier) Notify(ctx context.Context, event events.RewardExecutedEvent) error {
	params := &discordgo.WebhookParams{
		Content: formatRewardNotice(event),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}

	if _, err := n.executor.WebhookExecute(n.webhookID, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}
	return nil
}

func formatRewardNotice(event events.RewardExecutedEvent) string {
	name := event.Username
	if name == "" {
		name = fmt.Sprintf("user %d", event.UserID)
	}
	return fmt.Sprintf("💰 **%s** received %d coins (balance: %d)", name, event.Amount, event.NewBalance)
}
