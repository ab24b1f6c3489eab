package gpt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
)

const (
	// maxSentimentComments bounds how many comments go into one prompt.
	maxSentimentComments = 50
	// maxCommentLen bounds each comment's contribution.
	maxCommentLen = 200
)

const sentimentSystemPrompt = `You are an expert sentiment analyst for social media comments.
Analyze the provided YouTube comments and summarize the overall sentiment.

Respond with JSON only:
{
  "overall_sentiment": "positive/negative/neutral/mixed",
  "positive_ratio": 0.0-1.0,
  "negative_ratio": 0.0-1.0,
  "key_topics": ["topic1", "topic2", ...],
  "summary": "2-3 sentence summary of audience reaction"
}`

// SentimentSummary is the audience-reaction digest for one video.
type SentimentSummary struct {
	OverallSentiment string   `json:"overall_sentiment"`
	PositiveRatio    float64  `json:"positive_ratio"`
	NegativeRatio    float64  `json:"negative_ratio"`
	KeyTopics        []string `json:"key_topics"`
	Summary          string   `json:"summary"`
}

// AnalyzeSentiment summarizes audience sentiment from a comment
// sample. At most maxSentimentComments comments are sent, each cut to
// maxCommentLen runes. An unparseable model response yields an
// "unknown" summary rather than an error.
func (c *Classifier) AnalyzeSentiment(ctx context.Context, videoTitle string, comments []string) (SentimentSummary, error) {
	sample := comments
	if len(sample) > maxSentimentComments {
		sample = sample[:maxSentimentComments]
	}

	var sb strings.Builder
	for _, comment := range sample {
		sb.WriteString("- ")
		sb.WriteString(truncate(comment, maxCommentLen))
		sb.WriteString("\n")
	}

	userPrompt := fmt.Sprintf("Video: %s\n\nComments to analyze:\n%s\nAnalyze the sentiment and key themes.",
		videoTitle, sb.String())

	var content string
	err := c.retry.Do(ctx, func() error {
		metrics.IncGPTCall()
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: sentimentSystemPrompt},
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
		return nil
	})
	if err != nil {
		return SentimentSummary{}, fmt.Errorf("chat completion: %w", err)
	}

	var summary SentimentSummary
	if err := json.Unmarshal([]byte(content), &summary); err != nil {
		return SentimentSummary{
			OverallSentiment: "unknown",
			Summary:          "Unable to analyze comments",
		}, nil
	}
	return summary, nil
}
