// Package discord adapts the Discord gateway to the command dispatcher and
// implements the private channel used for disclosure. The layer is kept
// thin: everything with behavior worth testing lives behind it.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/ddanshin/guildvault/internal/logging"
	"github.com/ddanshin/guildvault/internal/server/bot"
	"github.com/ddanshin/guildvault/internal/server/services"
)

const memberPageSize = 1000

// Gateway owns the Discord session. It forwards guild messages to the
// dispatcher and sends disclosure DMs on behalf of the access service.
type Gateway struct {
	session    *discordgo.Session
	dispatcher *bot.Dispatcher
	logger     logging.Logger
}

func NewGateway(token string, logger logging.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session init: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	return &Gateway{
		session: session,
		logger:  logger.With("module", "discord_gateway"),
	}, nil
}

// Run connects to Discord, serves inbound commands through d until ctx is
// cancelled, and then closes the connection.
func (g *Gateway) Run(ctx context.Context, d *bot.Dispatcher) error {
	g.dispatcher = d
	g.session.AddHandler(g.onMessageCreate)

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("discord gateway open: %w", err)
	}

	g.logger.Info(ctx, "Discord gateway connected")

	<-ctx.Done()

	g.logger.Info(ctx, "Stopping Discord gateway...")
	return g.session.Close()
}

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	ctx := context.Background()
	reply, ok := g.dispatcher.Dispatch(ctx, m.Author.ID, m.Content)
	if !ok || reply == "" {
		return
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		g.logger.Error(ctx, "reply send failed", "channel_id", m.ChannelID, "error", err.Error())
	}
}

// SendDirect implements services.DirectMessenger: it resolves the username
// to a member of a joined guild and DMs them. The message content is never
// logged.
func (g *Gateway) SendDirect(ctx context.Context, username, message string) error {
	userID, err := g.findMemberID(username)
	if err != nil {
		return err
	}

	channel, err := g.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("dm channel create: %w", err)
	}

	if _, err := g.session.ChannelMessageSend(channel.ID, message); err != nil {
		return fmt.Errorf("dm send: %w", err)
	}

	g.logger.Info(ctx, "direct message delivered", "recipient", username)
	return nil
}

func (g *Gateway) findMemberID(username string) (string, error) {
	for _, guild := range g.session.State.Guilds {
		after := ""
		for {
			members, err := g.session.GuildMembers(guild.ID, after, memberPageSize)
			if err != nil {
				return "", fmt.Errorf("guild member list: %w", err)
			}
			for _, member := range members {
				if member.User != nil && member.User.Username == username {
					return member.User.ID, nil
				}
			}
			if len(members) < memberPageSize {
				break
			}
			after = members[len(members)-1].User.ID
		}
	}
	return "", services.ErrRecipientUnreachable
}
