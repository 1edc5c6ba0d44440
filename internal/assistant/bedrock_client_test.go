package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type mockConverseAPI struct {
	input  *bedrockruntime.ConverseInput
	output *bedrockruntime.ConverseOutput
	err    error
}

func (m *mockConverseAPI) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = params
	return m.output, m.err
}

func converseTextOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: text},
				},
			},
		},
		StopReason: brtypes.StopReasonEndTurn,
		Usage: &brtypes.TokenUsage{
			InputTokens:  aws.Int32(12),
			OutputTokens: aws.Int32(30),
			TotalTokens:  aws.Int32(42),
		},
	}
}

func TestBedrockCompleteMapsRequestAndResponse(t *testing.T) {
	api := &mockConverseAPI{output: converseTextOutput("  Hola desde Bedrock  ")}
	client := NewBedrockLLMClient(api)

	resp, err := client.Complete(context.Background(), LLMRequest{
		Model:       "anthropic.claude-3-haiku",
		System:      []string{"persona", ""},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: "hola"}, {Role: ChatRoleAssistant, Content: "¡hola!"}},
		MaxTokens:   250,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "Hola desde Bedrock" {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.StopReason != string(brtypes.StopReasonEndTurn) {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
	if resp.Usage.TotalTokens != 42 {
		t.Errorf("usage = %+v", resp.Usage)
	}

	in := api.input
	if aws.ToString(in.ModelId) != "anthropic.claude-3-haiku" {
		t.Errorf("model id = %q", aws.ToString(in.ModelId))
	}
	if len(in.System) != 1 {
		t.Errorf("system blocks = %d, empty blocks must be dropped", len(in.System))
	}
	if len(in.Messages) != 2 {
		t.Fatalf("messages = %d", len(in.Messages))
	}
	if in.Messages[0].Role != brtypes.ConversationRoleUser || in.Messages[1].Role != brtypes.ConversationRoleAssistant {
		t.Errorf("roles = %v, %v", in.Messages[0].Role, in.Messages[1].Role)
	}
	if in.InferenceConfig == nil || aws.ToInt32(in.InferenceConfig.MaxTokens) != 250 {
		t.Errorf("inference config = %+v", in.InferenceConfig)
	}
}

func TestBedrockCompleteSystemRoleMessagesBecomeBlocks(t *testing.T) {
	api := &mockConverseAPI{output: converseTextOutput("ok")}
	client := NewBedrockLLMClient(api)

	_, err := client.Complete(context.Background(), LLMRequest{
		Model: "model-id",
		Messages: []ChatMessage{
			{Role: ChatRoleSystem, Content: "reglas"},
			{Role: ChatRoleUser, Content: "hola"},
		},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(api.input.System) != 1 || len(api.input.Messages) != 1 {
		t.Errorf("system = %d messages = %d, want system-role messages lifted", len(api.input.System), len(api.input.Messages))
	}
}

func TestBedrockCompleteRequiresModel(t *testing.T) {
	client := NewBedrockLLMClient(&mockConverseAPI{})
	if _, err := client.Complete(context.Background(), LLMRequest{}); err == nil {
		t.Error("expected error for missing model id")
	}
}

func TestBedrockCompleteRejectsUnknownRole(t *testing.T) {
	client := NewBedrockLLMClient(&mockConverseAPI{})
	_, err := client.Complete(context.Background(), LLMRequest{
		Model:    "model-id",
		Messages: []ChatMessage{{Role: "tool", Content: "x"}},
	})
	if err == nil {
		t.Error("expected error for unsupported role")
	}
}

func TestBedrockCompletePropagatesAPIError(t *testing.T) {
	apiErr := errors.New("throttled")
	client := NewBedrockLLMClient(&mockConverseAPI{err: apiErr})
	_, err := client.Complete(context.Background(), LLMRequest{
		Model:    "model-id",
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hola"}},
	})
	if !errors.Is(err, apiErr) {
		t.Errorf("err = %v, want the api error", err)
	}
}

func TestBedrockCompleteEmptyOutput(t *testing.T) {
	client := NewBedrockLLMClient(&mockConverseAPI{output: &bedrockruntime.ConverseOutput{}})
	_, err := client.Complete(context.Background(), LLMRequest{
		Model:    "model-id",
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hola"}},
	})
	if err == nil {
		t.Error("expected error for missing output")
	}
}
