package quizify

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// SubsetSelector picks the indices of the best questions from a pool.
// The index-based protocol keeps the external call's output small even when
// the pool numbers in the hundreds.
type SubsetSelector interface {
	SelectSubset(ctx context.Context, pool []Mcq, desiredCount int) ([]int, error)
}

// Curator selects a bounded, high-quality subset from a question pool,
// falling back to random sampling when the external selector is unusable.
type Curator struct {
	selector SubsetSelector
}

// NewCurator creates a curator backed by the given selector.
func NewCurator(selector SubsetSelector) *Curator {
	return &Curator{selector: selector}
}

// Curate returns at most desiredCount questions from the pool.
//
// Pools no larger than desiredCount are returned unchanged without calling
// the selector: "select K of fewer than K" is degenerate and the call costs
// money. Otherwise the selector's indices are bounds-checked, out-of-range
// and repeated indices are dropped, and the result is truncated to
// desiredCount. A missing, malformed, or empty selection falls back to a
// uniform random shuffle; the result is sliced, never padded.
func (c *Curator) Curate(ctx context.Context, pool []Mcq, desiredCount int) ([]Mcq, error) {
	if desiredCount <= 0 {
		return nil, fmt.Errorf("desired count must be positive, got %d", desiredCount)
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if len(pool) <= desiredCount {
		out := make([]Mcq, len(pool))
		copy(out, pool)
		return out, nil
	}

	indices, err := c.selector.SelectSubset(ctx, pool, desiredCount)
	if err != nil {
		VerboseLog("Curator selection failed, falling back to random sampling: %v", err)
		return randomSubset(pool, desiredCount), nil
	}

	seen := make(map[int]bool, len(indices))
	selected := make([]Mcq, 0, desiredCount)
	for _, idx := range indices {
		if idx < 0 || idx >= len(pool) {
			VerboseLog("Curator returned out-of-range index %d for pool of %d, discarding", idx, len(pool))
			continue
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		selected = append(selected, pool[idx])
		if len(selected) == desiredCount {
			break
		}
	}

	if len(selected) == 0 {
		VerboseLog("Curator selection empty after validation, falling back to random sampling")
		return randomSubset(pool, desiredCount), nil
	}
	return selected, nil
}

func randomSubset(pool []Mcq, desiredCount int) []Mcq {
	shuffled := make([]Mcq, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if desiredCount > len(shuffled) {
		desiredCount = len(shuffled)
	}
	return shuffled[:desiredCount]
}

// OpenAISelector asks the OpenAI chat API to pick the best question indices.
type OpenAISelector struct {
	client *openai.Client
	model  string
}

// NewOpenAISelector creates a subset selector with an OpenAI client.
func NewOpenAISelector(apiKey, model string) *OpenAISelector {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAISelector{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// SelectSubset returns the chosen pool indices. The caller validates bounds;
// this only parses the tool-call arguments.
func (s *OpenAISelector) SelectSubset(ctx context.Context, pool []Mcq, desiredCount int) ([]int, error) {
	prompt := s.buildPrompt(pool, desiredCount)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert quiz curator. Select the best questions from a pool by quality, conceptual depth, and topical diversity.",
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
						Name:        "select_questions",
						Description: "Submit the indices of the selected questions",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"selected_indices": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "integer",
									},
									"description": fmt.Sprintf("Exactly %d 0-based indices into the question pool", desiredCount),
								},
							},
							"required": []string{"selected_indices"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "select_questions",
				},
			},
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to select questions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "select_questions" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var toolArgs struct {
		SelectedIndices []int `json:"selected_indices"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	if len(toolArgs.SelectedIndices) == 0 {
		return nil, ErrMalformedSelection
	}

	return toolArgs.SelectedIndices, nil
}

func (s *OpenAISelector) buildPrompt(pool []Mcq, desiredCount int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("From the following pool of %d quiz questions, select the %d best ones.\n\n", len(pool), desiredCount))

	for i, mcq := range pool {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i, mcq.Question))
		for j, option := range mcq.Options {
			marker := " "
			if j == mcq.CorrectAnswer {
				marker = "*"
			}
			sb.WriteString(fmt.Sprintf("%s%d. %s\n", marker, j+1, option))
		}
		sb.WriteString(fmt.Sprintf("Explanation: %s\n\n", mcq.Explanation))
	}

	sb.WriteString("Selection criteria:\n")
	sb.WriteString("- Maximize topic coverage and diversity across the selection\n")
	sb.WriteString("- Prefer clear, unambiguous question wording\n")
	sb.WriteString("- Distractors must be related but wrong, never absurd\n")
	sb.WriteString("- Prefer high-quality explanations\n")
	sb.WriteString("- Prefer conceptual depth over rote recall\n")
	sb.WriteString("- Vary question style across the selection\n")
	sb.WriteString("- Avoid selecting near-duplicate questions\n\n")

	sb.WriteString(fmt.Sprintf("Return exactly %d indices using the select_questions tool.\n", desiredCount))

	return sb.String()
}
