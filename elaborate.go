package quizify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ElaborationRequest carries a submitted question to the explanation elaborator.
type ElaborationRequest struct {
	Subject            string
	Question           string
	Options            []string
	CorrectAnswer      int
	CurrentExplanation string
}

// Elaborator expands a question's explanation into a richer one. The result
// only ever replaces the displayed explanation, never the stored Mcq.
type Elaborator interface {
	Elaborate(ctx context.Context, req ElaborationRequest) (string, error)
}

// OpenAIElaborator elaborates explanations through the OpenAI chat API.
type OpenAIElaborator struct {
	client *openai.Client
	model  string
}

// NewOpenAIElaborator creates an explanation elaborator with an OpenAI client.
func NewOpenAIElaborator(apiKey, model string) *OpenAIElaborator {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIElaborator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Elaborate returns a richer explanation for an already-answered question.
func (e *OpenAIElaborator) Elaborate(ctx context.Context, req ElaborationRequest) (string, error) {
	prompt := e.buildPrompt(req)

	resp, err := e.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: e.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert tutor. Expand quiz answer explanations with deeper reasoning and context while staying accurate and concise.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        "elaborate_explanation",
						Description: "Submit the elaborated explanation",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"elaborated_explanation": map[string]interface{}{
									"type":        "string",
									"description": "The richer explanation text",
								},
							},
							"required": []string{"elaborated_explanation"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "elaborate_explanation",
				},
			},
		},
	)

	if err != nil {
		return "", fmt.Errorf("failed to elaborate explanation: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return "", fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "elaborate_explanation" {
		return "", fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var toolArgs struct {
		ElaboratedExplanation string `json:"elaborated_explanation"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return "", fmt.Errorf("failed to parse tool arguments: %w", err)
	}

	elaborated := strings.TrimSpace(toolArgs.ElaboratedExplanation)
	if elaborated == "" {
		return "", fmt.Errorf("empty elaborated explanation")
	}
	return elaborated, nil
}

func (e *OpenAIElaborator) buildPrompt(req ElaborationRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Subject: %s\n\n", req.Subject))
	sb.WriteString(fmt.Sprintf("Question: %s\n\n", req.Question))

	sb.WriteString("Options:\n")
	for i, option := range req.Options {
		marker := " "
		if i == req.CorrectAnswer {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s%d. %s\n", marker, i+1, option))
	}

	sb.WriteString(fmt.Sprintf("\nCurrent explanation: %s\n\n", req.CurrentExplanation))

	sb.WriteString("Rewrite the explanation so it teaches the underlying concept:\n")
	sb.WriteString("- Explain WHY the correct answer is right, not just what it is\n")
	sb.WriteString("- Say briefly why each wrong option is wrong\n")
	sb.WriteString("- Keep it under 200 words\n")
	sb.WriteString("- Use the elaborate_explanation tool to return the text\n")

	return sb.String()
}
