package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"sift-api/internal/pkg/urldetector"
	"sift-api/internal/service/sift"
)

// Reactions left on a shared message
const (
	reactionWorking = "⏳"
	reactionDone    = "✅"
	reactionFailed  = "⚠️"
)

// maxLinksPerMessage bounds how many links one message can trigger
const maxLinksPerMessage = 5

// shouldSift reports whether a message is in scope: not from a bot, and in
// the configured channel when one is set
func (s *BotService) shouldSift(message *discordgo.MessageCreate) bool {
	if message.Author == nil || message.Author.Bot {
		return false
	}
	return s.config.DiscordChannelID == "" || message.ChannelID == s.config.DiscordChannelID
}

// linksToSift returns the links in content, capped at maxLinksPerMessage
func (s *BotService) linksToSift(content string) []urldetector.URLInfo {
	urls := s.urlDetector.DetectURLs(content)
	if len(urls) > maxLinksPerMessage {
		urls = urls[:maxLinksPerMessage]
	}
	return urls
}

// onMessageCreate sifts every link in a message and replies with one embed
// per saved page
func (s *BotService) onMessageCreate(session *discordgo.Session, message *discordgo.MessageCreate) {
	if !s.shouldSift(message) {
		return
	}

	urls := s.linksToSift(message.Content)
	if len(urls) == 0 {
		return
	}

	s.logger.Info("Detected links in message",
		"message_id", message.ID,
		"channel_id", message.ChannelID,
		"count", len(urls),
	)
	s.react(session, message, reactionWorking)

	saved := 0
	for _, urlInfo := range urls {
		result, err := s.siftURL(urlInfo)
		if err != nil {
			s.logger.Error("Failed to sift link",
				"error", err,
				"url", urlInfo.URL,
				"message_id", message.ID,
			)
			continue
		}
		saved++

		reply := &discordgo.MessageSend{
			Embeds:    []*discordgo.MessageEmbed{pageEmbed(result.Page, result.Mode)},
			Reference: message.Reference(),
		}
		if _, err := session.ChannelMessageSendComplex(message.ChannelID, reply); err != nil {
			s.logger.Warn("Failed to reply with page", "error", err, "message_id", message.ID)
		}
	}

	if err := session.MessageReactionRemove(message.ChannelID, message.ID, reactionWorking, "@me"); err != nil {
		s.logger.Debug("Failed to clear working reaction", "error", err)
	}
	if saved == len(urls) {
		s.react(session, message, reactionDone)
	} else {
		s.react(session, message, reactionFailed)
	}
}

// siftURL runs the pipeline with the platform the detector inferred
func (s *BotService) siftURL(urlInfo urldetector.URLInfo) (*sift.Result, error) {
	ctx, cancel := context.WithTimeout(s.ctx, siftTimeout(s.config.ScrapeTimeout+s.config.SummaryTimeout))
	defer cancel()

	return s.pipeline.Sift(ctx, sift.Request{URL: urlInfo.URL, Platform: urlInfo.Platform})
}

func (s *BotService) react(session *discordgo.Session, message *discordgo.MessageCreate, emoji string) {
	if err := session.MessageReactionAdd(message.ChannelID, message.ID, emoji); err != nil {
		s.logger.Warn("Failed to add emoji reaction",
			"error", err,
			"message_id", message.ID,
		)
	}
}

// siftTimeout leaves headroom over the slowest stages
func siftTimeout(stages time.Duration) time.Duration {
	return stages + time.Minute
}
