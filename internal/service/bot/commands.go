package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"sift-api/internal/domain"
)

const (
	defaultListCount = 5
	maxListCount     = 10
)

var (
	minListCount = float64(1)

	// Command definitions
	commands = []*discordgo.ApplicationCommand{
		{
			Name:        "sift",
			Description: "Save a link to your library",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "url",
					Description: "Link to sift",
					Required:    true,
				},
			},
		},
		{
			Name:        "recent",
			Description: "Show the newest pages in your library",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many pages to show",
					MinValue:    &minListCount,
					MaxValue:    maxListCount,
				},
			},
		},
		{
			Name:        "search",
			Description: "Search titles and summaries",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Text to look for",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Maximum results",
					MinValue:    &minListCount,
					MaxValue:    maxListCount,
				},
			},
		},
		{
			Name:        "stats",
			Description: "Show page counts per category",
			Type:        discordgo.ChatApplicationCommand,
		},
	}
)

// registerCommands registers slash commands with Discord
func (s *BotService) registerCommands() error {
	s.logger.Info("Registering slash commands...")

	// Register commands globally (takes up to 1 hour to propagate)
	_, err := s.session.ApplicationCommandBulkOverwrite(s.session.State.User.ID, "", commands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	s.logger.Info("Slash commands registered successfully")
	return nil
}

// onInteractionCreate handles slash command interactions
func (s *BotService) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}

	command := interaction.ApplicationCommandData()
	options := optionMap(command.Options)
	s.logger.Debug("Received slash command",
		"command", command.Name,
		"guild_id", interaction.GuildID,
	)

	// Sifting outlives the 3 second interaction deadline, so acknowledge first
	if command.Name == "sift" {
		s.respondDeferred(session, interaction, options)
		return
	}

	var data *discordgo.InteractionResponseData
	switch command.Name {
	case "recent":
		data = s.handleRecentCommand(s.ctx, options)
	case "search":
		data = s.handleSearchCommand(s.ctx, options)
	case "stats":
		data = s.handleStatsCommand(s.ctx)
	default:
		data = &discordgo.InteractionResponseData{Content: "Unknown command"}
	}

	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
	if err := session.InteractionRespond(interaction.Interaction, response); err != nil {
		s.logger.Error("Failed to respond to interaction", "error", err)
	}
}

func (s *BotService) respondDeferred(session *discordgo.Session, interaction *discordgo.InteractionCreate, options map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		s.logger.Error("Failed to acknowledge sift command", "error", err)
		return
	}

	data := s.handleSiftCommand(options)
	edit := &discordgo.WebhookEdit{Content: &data.Content, Embeds: &data.Embeds}
	if _, err := session.InteractionResponseEdit(interaction.Interaction, edit); err != nil {
		s.logger.Error("Failed to send sift result", "error", err)
	}
}

// handleSiftCommand handles the /sift command
func (s *BotService) handleSiftCommand(options map[string]*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponseData {
	url := stringOption(options, "url")
	links := s.linksToSift(url)
	if len(links) == 0 {
		return &discordgo.InteractionResponseData{Content: "❌ Please provide an http(s) link"}
	}

	result, err := s.siftURL(links[0])
	if err != nil {
		s.logger.Error("Failed to sift link from command", "error", err, "url", links[0].URL)
		return &discordgo.InteractionResponseData{Content: "❌ Could not save that link: " + err.Error()}
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{pageEmbed(result.Page, result.Mode)},
	}
}

// handleRecentCommand handles the /recent command
func (s *BotService) handleRecentCommand(ctx context.Context, options map[string]*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponseData {
	count := intOption(options, "count", defaultListCount)

	pages, err := s.pageRepo.List(ctx, domain.PageFilter{Limit: count})
	if err != nil {
		s.logger.Error("Failed to list recent pages", "error", err)
		return &discordgo.InteractionResponseData{Content: "❌ Could not load your library"}
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{listEmbed("📚 Recent Pages", "", pages)},
	}
}

// handleSearchCommand handles the /search command
func (s *BotService) handleSearchCommand(ctx context.Context, options map[string]*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponseData {
	query := stringOption(options, "query")
	if query == "" {
		return &discordgo.InteractionResponseData{Content: "❌ Please provide a search query"}
	}
	limit := intOption(options, "limit", defaultListCount)

	pages, err := s.pageRepo.List(ctx, domain.PageFilter{Query: query, Limit: limit})
	if err != nil {
		s.logger.Error("Failed to search pages", "error", err, "query", query)
		return &discordgo.InteractionResponseData{Content: "❌ Search failed"}
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			listEmbed("🔍 Search Results", fmt.Sprintf("Searching for: **%s**", query), pages),
		},
	}
}

// handleStatsCommand handles the /stats command
func (s *BotService) handleStatsCommand(ctx context.Context) *discordgo.InteractionResponseData {
	counts, err := s.pageRepo.CountByCategory(ctx)
	if err != nil {
		s.logger.Error("Failed to count pages", "error", err)
		return &discordgo.InteractionResponseData{Content: "❌ Could not load stats"}
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{statsEmbed(counts)},
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(options map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := options[name]; ok {
		if v, ok := opt.Value.(string); ok {
			return v
		}
	}
	return ""
}

// intOption reads an integer option; Discord delivers numbers as float64
func intOption(options map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, def int) int {
	opt, ok := options[name]
	if !ok {
		return def
	}
	v, ok := opt.Value.(float64)
	if !ok || v < 1 {
		return def
	}
	return min(int(v), maxListCount)
}
