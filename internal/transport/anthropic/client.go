// Package anthropic implements the text and vision capability primitives
// against the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/domain"
)

// Config holds the model provider settings.
type Config struct {
	APIKey    string
	BaseURL   string // optional, useful for testing against a mock server
	Model     string
	MaxTokens int64
	Logger    *zap.Logger
}

// Client exposes the two capability primitives the extraction pipeline
// depends on: describe an image, summarize a file reference.
type Client struct {
	client    anthropicsdk.Client
	model     anthropicsdk.Model
	maxTokens int64
	logger    *zap.Logger
}

// New creates a capability client. Returns an error if the API key is missing.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: missing api key")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	return &Client{
		client:    anthropicsdk.NewClient(opts...),
		model:     anthropicsdk.Model(cfg.Model),
		maxTokens: maxTokens,
		logger:    cfg.Logger,
	}, nil
}

// describeInstruction is the fixed prompt for image description; the output
// feeds the embedding pipeline, so it asks for search-relevant detail.
const describeInstruction = "Please provide a detailed description of this image, focusing on key visual " +
	"elements, objects, people, text, and any notable features that would be relevant for search purposes."

// DescribeImage sends a base64-encoded image to the vision capability and
// returns its textual description.
func (c *Client) DescribeImage(ctx context.Context, imageBase64, mediaType string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(
				anthropicsdk.NewImageBlockBase64(mediaType, imageBase64),
				anthropicsdk.NewTextBlock(describeInstruction),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}
	return firstText(msg)
}

// SummarizeReference asks the text capability for a description of a file
// from its reference and declared kind. The model never sees the file's
// bytes, so this is an inferred description, not content extraction.
func (c *Client) SummarizeReference(ctx context.Context, ref, kind string) (string, error) {
	prompt := fmt.Sprintf(
		"You are an assistant that summarizes or describes file content. The file is a %s located at %s. "+
			"Since I cannot provide the file's binary content, generate a brief textual description or summary "+
			"of what this file might contain based on its type and path. Return only the summarized text.",
		kind, ref,
	)

	msg, err := c.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize %s reference: %w", kind, err)
	}
	return firstText(msg)
}

// firstText extracts the first text block from a message response.
func firstText(msg *anthropicsdk.Message) (string, error) {
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: model response holds no text", domain.ErrExtractionEmpty)
}
