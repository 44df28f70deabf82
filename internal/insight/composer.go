// Package insight turns a statistics document into narrative text. The
// external text-generation collaborator is preferred; any failure from it
// (auth, quota, rate limit, timeout, network) falls back to a deterministic
// narrative built from the same document.
package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/cartloom/cartloom/internal/ai"
	"github.com/cartloom/cartloom/internal/analytics"
	"github.com/cartloom/cartloom/internal/utils"
)

// DefaultTimeout bounds the collaborator call so a hung request cannot
// stall the pipeline.
const DefaultTimeout = 45 * time.Second

const systemPrompt = "You are a data analyst providing insights on datasets."

const instructions = `Please provide:
1. Key trends and patterns
2. Notable correlations
3. Potential business implications
4. Time-based patterns and insights
5. Product association findings
6. Customer segmentation insights
7. Sales forecasting interpretation
8. Any anomalies detected

Keep the response concise and focused on actionable insights.`

// Composer obtains a narrative for a statistics document.
type Composer struct {
	// Runtime is the text-generation collaborator; nil forces the
	// deterministic fallback.
	Runtime ai.Runtime
	Model   string
	// Timeout bounds each collaborator call; zero means DefaultTimeout.
	Timeout time.Duration
	// Logf receives diagnostics about fallback decisions; nil discards.
	Logf func(format string, args ...any)
}

// Insights returns narrative text for doc. It never fails: every
// collaborator error path resolves to the fallback narrative.
func (c *Composer) Insights(ctx context.Context, doc *analytics.Document) string {
	logf := c.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if c.Runtime == nil {
		logf("no collaborator configured, using fallback narrative")
		return FallbackNarrative(doc)
	}

	prompt, err := buildPrompt(doc)
	if err != nil {
		logf("prompt build failed: %v", err)
		return FallbackNarrative(doc)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.Runtime.Generate(ctx, ai.GenerateRequest{
		Model: c.Model,
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		logf("collaborator failed (%v), using fallback narrative", err)
		return FallbackNarrative(doc)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		logf("collaborator returned no content, using fallback narrative")
		return FallbackNarrative(doc)
	}
	return resp.Choices[0].Message.Content
}

// promptTokenBudget caps the serialized statistics so the prompt stays
// within common model context limits.
const promptTokenBudget = 12000

func buildPrompt(doc *analytics.Document) (string, error) {
	stats, err := utils.PrettyJSON(doc)
	if err != nil {
		return "", fmt.Errorf("serialize statistics: %w", err)
	}
	body := utils.TruncateToTokenLimit(string(stats), promptTokenBudget)
	return fmt.Sprintf("Analyze this dataset and provide key insights. Here are the statistics:\n%s\n\n%s", body, instructions), nil
}
