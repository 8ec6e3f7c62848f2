package gateway

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

type DiscordGateway struct {
	Session *discordgo.Session
	Planner PlanService
}

func NewDiscordGateway(token string, planner PlanService) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	dg := &DiscordGateway{
		Session: session,
		Planner: planner,
	}
	session.AddHandler(dg.onMessage)
	return dg, nil
}

func (dg *DiscordGateway) Start() error {
	if err := dg.Session.Open(); err != nil {
		return err
	}
	log.Printf("Discord gateway connected as %s", dg.Session.State.User.Username)
	return nil
}

func (dg *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}

	log.Printf("[%s] %s", m.Author.Username, m.Content)

	req, err := parseChatRequest(m.Content)
	if err != nil {
		dg.reply(m.ChannelID, chatUsage)
		return
	}

	dg.reply(m.ChannelID, fmt.Sprintf("Planning your outing in **%s**... give me a moment 🗺", req.City))

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	resp := dg.Planner.CreatePlan(ctx, req)
	cancel()

	dg.reply(m.ChannelID, renderPlan(resp))
}

func (dg *DiscordGateway) reply(channelID, text string) {
	// Discord caps messages at 2000 characters
	if len(text) > 2000 {
		text = text[:1990] + "\n..."
	}
	if _, err := dg.Session.ChannelMessageSend(channelID, text); err != nil {
		log.Printf("Error sending discord message: %v", err)
	}
}

func (dg *DiscordGateway) Send(chatID string, text string) error {
	_, err := dg.Session.ChannelMessageSend(chatID, text)
	return err
}

func (dg *DiscordGateway) Stop() error {
	return dg.Session.Close()
}
