package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-relay/internal/common"
	"github.com/Veraticus/spice-relay/internal/model"
)

const classificationSystemPrompt = "You strictly classify purchase descriptions into high-level budget categories."

// CategoryClassifier sorts purchase descriptions into the closed category set.
type CategoryClassifier struct {
	client Client
	logger *slog.Logger
	model  string
}

// NewCategoryClassifier creates a classifier. An empty model uses the client default.
func NewCategoryClassifier(client Client, model string, logger *slog.Logger) *CategoryClassifier {
	return &CategoryClassifier{
		client: client,
		logger: logger,
		model:  model,
	}
}

// Classify returns the category for description. The result is always a
// member of the closed set; labels the model invents become Other. A failed
// model call is returned as an error rather than guessed.
func (c *CategoryClassifier) Classify(ctx context.Context, description string) (model.Category, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.CategoryOther, nil
	}

	content, err := c.client.Complete(ctx, Request{
		Model: c.model,
		Messages: []Message{
			{Role: RoleSystem, Content: classificationSystemPrompt},
			{Role: RoleUser, Content: buildClassificationPrompt(description)},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrClassificationFailed, err)
	}

	category := model.ParseCategory(content)
	if category == model.CategoryOther && strings.TrimSpace(content) != string(model.CategoryOther) {
		c.logger.Warn("model returned a label outside the category set",
			"label", strings.TrimSpace(content),
			"fallback", category)
	}

	c.logger.Info("purchase classified",
		"description", description,
		"category", category)

	return category, nil
}

func buildClassificationPrompt(description string) string {
	return fmt.Sprintf(`You are a personal finance assistant. Categorize the following purchase into **one** of the predefined high-level categories:

Categories: %s

Description: %q

Category (must match one of the above exactly):`,
		strings.Join(model.CategoryNames(), ", "),
		description)
}
