package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"gotest.tools/assert"
)

type fakeClient struct {
	input  *bedrockruntime.ConverseInput
	output *bedrockruntime.ConverseOutput
	err    error
}

func (f *fakeClient) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.output, f.err
}

func textOutput(texts ...string) *bedrockruntime.ConverseOutput {
	var content []types.ContentBlock
	for _, t := range texts {
		content = append(content, &types.ContentBlockMemberText{Value: t})
	}
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role:    types.ConversationRoleAssistant,
			Content: content,
		}},
		StopReason: types.StopReasonEndTurn,
		Usage: &types.TokenUsage{
			InputTokens:  aws.Int32(12),
			OutputTokens: aws.Int32(34),
		},
	}
}

func testContext(client converser) *Context {
	return &Context{
		Params: Params{Region: "us-east-1", ModelID: "test-model", MaxTokens: 512},
		client: client,
	}
}

func TestConverse(t *testing.T) {
	client := &fakeClient{output: textOutput("## Question 1\n", "What?")}
	llm := testContext(client)

	cb := llm.NewConversationBuilder().
		AddSystem("You write quizzes.").
		AddMessage(RoleUser).
		AddText("Make a quiz")

	var stats Usage
	out, err := llm.Converse(context.Background(), cb, &stats)
	assert.NilError(t, err)
	assert.Equal(t, "## Question 1\nWhat?", out)
	assert.Equal(t, 12, stats.InputTokens)
	assert.Equal(t, 34, stats.OutputTokens)

	// usage accumulates across calls
	_, err = llm.Converse(context.Background(), cb, &stats)
	assert.NilError(t, err)
	assert.Equal(t, 24, stats.InputTokens)

	assert.Equal(t, "test-model", *client.input.ModelId)
	assert.Equal(t, int32(512), *client.input.InferenceConfig.MaxTokens)
	assert.Equal(t, 1, len(client.input.System))
	assert.Equal(t, 1, len(client.input.Messages))
	assert.Equal(t, types.ConversationRoleUser, client.input.Messages[0].Role)
}

func TestConverseEmptyOutput(t *testing.T) {
	llm := testContext(&fakeClient{output: textOutput("  \n")})
	cb := llm.NewConversationBuilder().AddMessage(RoleUser).AddText("hello")

	_, err := llm.Converse(context.Background(), cb, nil)
	assert.Assert(t, errors.Is(err, ErrNoOutput))
}

func TestConverseClientError(t *testing.T) {
	llm := testContext(&fakeClient{err: errors.New("throttled")})
	cb := llm.NewConversationBuilder().AddMessage(RoleUser).AddText("hello")

	_, err := llm.Converse(context.Background(), cb, nil)
	assert.Error(t, err, "converse: throttled")
}

func TestBuilderErrors(t *testing.T) {
	client := &fakeClient{output: textOutput("unused")}
	llm := testContext(client)

	cb := llm.NewConversationBuilder().AddText("orphan")
	_, err := llm.Converse(context.Background(), cb, nil)
	assert.ErrorContains(t, err, "before any message")
	assert.Assert(t, client.input == nil)
}

func TestBuilderSkipsEmptyText(t *testing.T) {
	client := &fakeClient{output: textOutput("ok")}
	llm := testContext(client)

	cb := llm.NewConversationBuilder().AddMessage(RoleUser).AddText("").AddText("prompt")
	_, err := llm.Converse(context.Background(), cb, nil)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(client.input.Messages[0].Content))
}
