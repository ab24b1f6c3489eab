// Package gpt wraps the OpenAI chat completion API for collaboration
// classification and comment sentiment analysis, with content-hash
// response caching and retry.
package gpt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/pkg/hash"
)

// maxDescriptionLen bounds the description sent to the model. The cut
// happens before hashing, so the cache key and the prompt always agree.
const maxDescriptionLen = 2000

const collabSystemPrompt = `You are an expert analyst for PUBG MOBILE content classification.
Your task is to determine if a YouTube video is a collaboration content and identify the collaboration partner.

Classification Guidelines:
1. A "collab" is content featuring partnership with external brands, IPs, artists, games, anime, movies, etc.
2. Regular game updates, tournaments, esports, or community content are NOT collabs.
3. Extract the exact partner name from the title/description when possible.
4. Normalize partner names (e.g., "BLACKPINK" not "black pink").

Categories:
- IP: Intellectual Property collaborations (franchises, characters)
- Brand: Commercial brand partnerships (cars, fashion, tech)
- Artist: Musicians, bands, content creators
- Game: Cross-game collaborations
- Anime: Anime/manga collaborations
- Movie: Movie/TV show tie-ins
- Other: Uncategorized partnerships

Region codes:
- Global: Worldwide release
- KR: Korea-focused
- JP: Japan-focused
- NA: North America
- EU: Europe
- SEA: Southeast Asia
- LATAM: Latin America
- MENA: Middle East/North Africa
- Other/Unknown: Cannot determine

You must respond ONLY with valid JSON in this exact format:
{
  "is_collab": true/false,
  "partner_name": "string or null",
  "category": "IP/Brand/Artist/Game/Anime/Movie/Other",
  "region": "Global/KR/JP/NA/EU/SEA/LATAM/MENA/Other/Unknown",
  "one_line_summary": "Brief description of the collaboration",
  "confidence": 0.0-1.0
}`

const collabUserTemplate = `Analyze this PUBG MOBILE YouTube video and classify if it's a collaboration:

Title: %s

Description:
%s

Respond with JSON only.`

// chatCompleter is the slice of the OpenAI client the package uses.
// *openai.Client satisfies it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Classifier calls the chat completion API for videos the rule engine
// could not resolve. Responses are cached by content hash: two videos
// with identical title and truncated description cost one API call.
type Classifier struct {
	client      chatCompleter
	cache       ResponseCache
	model       string
	maxTokens   int
	temperature float32
	retry       RetryPolicy
}

// NewClassifier builds a Classifier from config. cache may not be nil;
// pass NewMemoryCache() when no backend is configured.
func NewClassifier(cfg config.OpenAIConfig, cache ResponseCache) *Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Classifier{
		client:      openai.NewClientWithConfig(clientCfg),
		cache:       cache,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		retry:       DefaultRetryPolicy(),
	}
}

// collabResponse is the wire shape of the model's JSON answer.
type collabResponse struct {
	IsCollab       bool    `json:"is_collab"`
	PartnerName    *string `json:"partner_name"`
	Category       string  `json:"category"`
	Region         string  `json:"region"`
	OneLineSummary string  `json:"one_line_summary"`
	Confidence     float64 `json:"confidence"`
}

// ClassifyCollab classifies one video. The cache is consulted first;
// on a miss the API call is retried per the retry policy. A malformed
// response counts as a failed attempt and is retried like a transport
// error; only well-formed answers are cached.
func (c *Classifier) ClassifyCollab(ctx context.Context, title, description string) (model.Classification, error) {
	truncated := truncate(description, maxDescriptionLen)
	key := hash.ContentKey(title, truncated)

	if cached, err := c.cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Msg("gpt cache read failed")
	} else if cached != nil {
		if result, ok := parseCollabResponse(cached); ok {
			metrics.IncGPTCacheHit()
			return result, nil
		}
		// Corrupt cache entry, fall through to a fresh call.
	}
	metrics.IncGPTCacheMiss()

	userPrompt := fmt.Sprintf(collabUserTemplate, title, truncated)

	var (
		content string
		result  model.Classification
	)
	err := c.retry.Do(ctx, func() error {
		metrics.IncGPTCall()
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: collabSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion response")
		}
		content = resp.Choices[0].Message.Content

		parsed, ok := parseCollabResponse([]byte(content))
		if !ok {
			log.Warn().Str("content", content).Msg("malformed classification response")
			return fmt.Errorf("malformed classification response")
		}
		result = parsed
		return nil
	})
	if err != nil {
		return model.Classification{}, fmt.Errorf("chat completion: %w", err)
	}

	if err := c.cache.Set(ctx, key, title+"\n"+truncated, []byte(content)); err != nil {
		log.Warn().Err(err).Msg("gpt cache write failed")
	}

	return result, nil
}

func parseCollabResponse(data []byte) (model.Classification, bool) {
	var r collabResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Classification{}, false
	}

	// A positive answer with no confidence is self-contradictory.
	if r.IsCollab && r.Confidence <= 0 {
		return model.Classification{}, false
	}

	// The model occasionally invents labels outside the enumerations.
	if !model.ValidCategory(r.Category) {
		r.Category = model.CategoryOther
	}
	if !model.ValidRegion(r.Region) {
		r.Region = model.RegionUnknown
	}

	var partner *string
	if r.PartnerName != nil && *r.PartnerName != "" {
		partner = r.PartnerName
	}

	return model.Classification{
		IsCollab:    r.IsCollab,
		PartnerName: partner,
		Category:    r.Category,
		Region:      r.Region,
		Summary:     r.OneLineSummary,
		Confidence:  r.Confidence,
	}, true
}

// truncate cuts s to at most n runes without splitting a character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
