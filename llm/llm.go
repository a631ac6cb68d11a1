// Package llm is a thin wrapper around the Bedrock Converse API.
package llm

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type Params struct {
	Region    string
	ModelID   string
	MaxTokens int32
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add accumulates u into the receiver.
func (usage *Usage) Add(u Usage) {
	usage.InputTokens += u.InputTokens
	usage.OutputTokens += u.OutputTokens
}

type Llm interface {
	NewConversationBuilder() *ConversationBuilder
	Converse(ctx context.Context, cb *ConversationBuilder, stats *Usage) (string, error)
}

// converser is the part of the bedrock client we use.
type converser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Context struct {
	Params
	client converser
}

// New loads AWS credentials from the environment and returns a client bound
// to params.ModelID.
func New(ctx context.Context, params Params) (*Context, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(params.Region))
	if err != nil {
		return nil, err
	}
	return &Context{
		Params: params,
		client: bedrockruntime.NewFromConfig(cfg),
	}, nil
}
