package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"sift-api/internal/config"
	"sift-api/internal/domain"
	"sift-api/internal/pkg/urldetector"
	"sift-api/internal/service/sift"
)

// Sifter runs the ingestion pipeline
type Sifter interface {
	Sift(ctx context.Context, req sift.Request) (*sift.Result, error)
}

// BotService sifts links shared in Discord and answers library commands
type BotService struct {
	config      *config.Config
	logger      *slog.Logger
	session     *discordgo.Session
	pageRepo    domain.PageRepository
	pipeline    Sifter
	urlDetector *urldetector.Detector

	// ctx is cancelled on Stop so in-flight sifts can wind down
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new bot service
func New(
	config *config.Config,
	logger *slog.Logger,
	pageRepo domain.PageRepository,
	pipeline Sifter,
) (*BotService, error) {
	ctx, cancel := context.WithCancel(context.Background())

	botService := &BotService{
		config:      config,
		logger:      logger.With("component", "bot"),
		pageRepo:    pageRepo,
		pipeline:    pipeline,
		urlDetector: urldetector.New(),
		ctx:         ctx,
		cancel:      cancel,
	}

	// Create Discord session
	session, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		cancel()
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	botService.session = session

	// Register handlers
	botService.registerHandlers()

	return botService, nil
}

func (s *BotService) Start() error {
	s.logger.Info("Starting Discord bot...")

	// Open connection to Discord
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	s.logger.Info("Discord bot connected successfully")

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("Bot is running. Press Ctrl+C to stop.")
	<-stop

	s.logger.Info("Shutting down Discord bot...")
	return s.Stop()
}

func (s *BotService) Stop() error {
	s.cancel()

	if s.session != nil {
		s.logger.Info("Closing Discord connection...")
		if err := s.session.Close(); err != nil {
			s.logger.Error("Error closing Discord connection", "error", err)
			return err
		}
	}

	s.logger.Info("Discord bot stopped")
	return nil
}

func (s *BotService) registerHandlers() {
	s.session.AddHandler(s.onReady)
	s.session.AddHandler(s.onMessageCreate)
	s.session.AddHandler(s.onInteractionCreate)
}

// onReady is called when the bot successfully connects to Discord
func (s *BotService) onReady(session *discordgo.Session, ready *discordgo.Ready) {
	s.logger.Info("Bot is ready",
		"username", ready.User.Username,
		"guilds", len(ready.Guilds),
		"channel_id", s.config.DiscordChannelID,
	)

	// Register commands now that bot is connected
	if err := s.registerCommands(); err != nil {
		s.logger.Error("Failed to register slash commands", "error", err)
	}

	if err := session.UpdateGameStatus(0, "Sifting links"); err != nil {
		s.logger.Error("Failed to set bot status", "error", err)
	}
}
