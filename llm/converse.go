package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type ConversationRole string

const (
	RoleUser      = ConversationRole(types.ConversationRoleUser)
	RoleAssistant = ConversationRole(types.ConversationRoleAssistant)
)

type StopReason string

const (
	StopReasonEndTurn             = StopReason(types.StopReasonEndTurn)
	StopReasonMaxTokens           = StopReason(types.StopReasonMaxTokens)
	StopReasonStopSequence        = StopReason(types.StopReasonStopSequence)
	StopReasonGuardrailIntervened = StopReason(types.StopReasonGuardrailIntervened)
	StopReasonContentFiltered     = StopReason(types.StopReasonContentFiltered)
)

var ErrNoOutput = errors.New("model returned no text")

type Response struct {
	StopReason StopReason
	Usage      Usage
	Output     string
}

type ConversationBuilder struct {
	input bedrockruntime.ConverseInput
	err   error
}

func newConversationBuilder(params Params) *ConversationBuilder {
	cb := &ConversationBuilder{
		input: bedrockruntime.ConverseInput{
			Messages: []types.Message{},
			ModelId:  &params.ModelID,
		},
	}
	if params.MaxTokens > 0 {
		maxTokens := params.MaxTokens
		cb.input.InferenceConfig = &types.InferenceConfiguration{MaxTokens: &maxTokens}
	}
	return cb
}

func (cb *ConversationBuilder) AddSystem(prompt string) *ConversationBuilder {
	cb.input.System = append(cb.input.System, &types.SystemContentBlockMemberText{Value: prompt})
	return cb
}

func (cb *ConversationBuilder) AddMessage(role ConversationRole) *ConversationBuilder {
	cb.input.Messages = append(cb.input.Messages, types.Message{
		Role:    types.ConversationRole(role),
		Content: []types.ContentBlock{},
	})
	return cb
}

func (cb *ConversationBuilder) AddText(content string) *ConversationBuilder {
	if len(cb.input.Messages) == 0 {
		cb.err = errors.New("text added before any message")
		return cb
	}
	if content == "" {
		// bedrock rejects empty text blocks
		return cb
	}
	contentBlock := &cb.input.Messages[len(cb.input.Messages)-1].Content
	*contentBlock = append(*contentBlock, &types.ContentBlockMemberText{Value: content})
	return cb
}

func (llm *Context) NewConversationBuilder() *ConversationBuilder {
	return newConversationBuilder(llm.Params)
}

func (llm *Context) Converse(ctx context.Context, cb *ConversationBuilder, stats *Usage) (string, error) {
	response, err := llm.ConverseResponse(ctx, cb)
	if err != nil {
		return "", err
	}

	if stats != nil {
		stats.Add(response.Usage)
	}

	if strings.TrimSpace(response.Output) == "" {
		return "", ErrNoOutput
	}
	return response.Output, nil
}

func (llm *Context) ConverseResponse(ctx context.Context, cb *ConversationBuilder) (Response, error) {
	var response Response

	if cb.err != nil {
		return response, cb.err
	}

	output, err := llm.client.Converse(ctx, &cb.input)
	if err != nil {
		return response, fmt.Errorf("converse: %w", err)
	}

	if output.Usage != nil {
		if output.Usage.InputTokens != nil {
			response.Usage.InputTokens = int(*output.Usage.InputTokens)
		}
		if output.Usage.OutputTokens != nil {
			response.Usage.OutputTokens = int(*output.Usage.OutputTokens)
		}
	}

	response.StopReason = StopReason(output.StopReason)

	switch v := output.Output.(type) {
	case *types.ConverseOutputMemberMessage:
		var sb strings.Builder
		for _, block := range v.Value.Content {
			if text, ok := block.(*types.ContentBlockMemberText); ok {
				sb.WriteString(text.Value)
			}
		}
		response.Output = sb.String()
		return response, nil

	case *types.UnknownUnionMember:
		return response, fmt.Errorf("unknown tag: %v", v.Tag)

	default:
		return response, errors.New("union is nil or unknown type")

	}
}
