package main

import (
	"context"

	"github.com/rcbilson/newsnotes/llm"
)

type LlmParams struct {
	llm.Params
	System string
}

var Nova_lite = LlmParams{
	Params: llm.Params{
		Region:    "us-east-1",
		ModelID:   "us.amazon.nova-lite-v1:0",
		MaxTokens: 4096,
	},
}

// generateFunc sends one prompt to the model and returns its text. Token
// counts are added to stats when it is not nil.
type generateFunc func(ctx context.Context, prompt string, stats *llm.Usage) (string, error)

func newGenerator(llmClient llm.Llm, params LlmParams) generateFunc {
	return func(ctx context.Context, prompt string, stats *llm.Usage) (string, error) {
		cb := llmClient.NewConversationBuilder()
		if params.System != "" {
			cb.AddSystem(params.System)
		}
		cb.AddMessage(llm.RoleUser).AddText(prompt)
		return llmClient.Converse(ctx, cb, stats)
	}
}
