package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"sift-api/internal/domain"
	"sift-api/internal/service/sift"
)

const (
	maxEmbedDescription = 4096
	maxEmbedFieldValue  = 1024
	colorDefault        = 0x5865f2
)

var categoryColors = map[string]int{
	domain.CategoryCooking: 0xe67e22,
	domain.CategoryTech:    0x3498db,
	domain.CategoryDesign:  0x9b59b6,
	domain.CategoryHealth:  0x2ecc71,
	domain.CategoryFashion: 0xe91e63,
	domain.CategoryNews:    0xf1c40f,
	domain.CategoryRandom:  0x95a5a6,
}

// pageEmbed renders one saved page
func pageEmbed(page *domain.Page, mode sift.Mode) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       page.Title,
		URL:         page.URL,
		Description: truncate(page.Summary, maxEmbedDescription),
		Color:       categoryColor(page.Metadata.Category),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Category", Value: orDash(page.Metadata.Category), Inline: true},
			{Name: "Tags", Value: orDash(strings.Join(page.Tags, ", ")), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Saved as %s", modeLabel(mode)),
		},
		Timestamp: page.CreatedAt.Format(time.RFC3339),
	}
	if img := page.Metadata.ImageURL; img != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: *img}
	}
	return embed
}

// listEmbed renders pages as one field each
func listEmbed(title, description string, pages []*domain.Page) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorDefault,
	}
	if len(pages) == 0 {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Nothing here", Value: "No pages found."}}
		return embed
	}

	for _, page := range pages {
		value := fmt.Sprintf("%s\n%s", page.URL, truncate(page.Summary, 200))
		if page.IsPinned {
			value = "📌 " + value
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s · %s", page.Title, orDash(page.Metadata.Category)),
			Value: truncate(value, maxEmbedFieldValue),
		})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d pages", len(pages))}
	return embed
}

// statsEmbed renders counts in category order, skipping empty ones
func statsEmbed(counts map[string]int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📊 Library Statistics",
		Color: colorDefault,
	}

	total := 0
	for _, c := range domain.Categories {
		n := counts[c]
		total += n
		if n == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   c,
			Value:  fmt.Sprintf("%d", n),
			Inline: true,
		})
	}
	embed.Description = fmt.Sprintf("**%d** pages in your library", total)
	return embed
}

func modeLabel(mode sift.Mode) string {
	switch mode {
	case sift.ModeSummarized:
		return "AI summary"
	case sift.ModeDefaults:
		return "page without summary"
	default:
		return "bookmark"
	}
}

func categoryColor(category string) int {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return colorDefault
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
