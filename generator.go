package quizify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// PageBatchSize is the number of questions the generator must return per page.
const PageBatchSize = 5

// PageRequest carries one page's text plus document context to the generator.
type PageRequest struct {
	PageText   string
	Subject    string
	PageNumber int
	TotalPages int
}

// PageBatch is a validated per-page generation result.
type PageBatch struct {
	Mcqs      []Mcq
	PageNotes string
}

// PageGenerator produces a fixed-size batch of questions for one page.
// Implementations must validate their output; the orchestrator treats any
// error as a per-page failure, not a fatal one.
type PageGenerator interface {
	GeneratePage(ctx context.Context, req PageRequest) (PageBatch, error)
}

// OpenAIGenerator generates page questions through the OpenAI chat API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger *IngestLogger
}

// NewOpenAIGenerator creates a page question generator with an OpenAI client.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// SetLogger attaches a per-ingestion transcript logger.
func (g *OpenAIGenerator) SetLogger(logger *IngestLogger) {
	g.logger = logger
}

// GeneratePage asks the model for exactly PageBatchSize complete questions
// about one page of the document. The tool-call arguments are validated
// immediately; a short or malformed batch is an error.
func (g *OpenAIGenerator) GeneratePage(ctx context.Context, req PageRequest) (PageBatch, error) {
	prompt := g.buildPrompt(req)

	if g.logger != nil {
		g.logger.LogLLMRequest("PageGenerator", prompt)
	}

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert exam author. Generate high-quality multiple choice questions with exactly 4 options each, based strictly on the supplied page text.",
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
						Name:        "submit_page_questions",
						Description: "Submit the generated questions and optional study notes for this page",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"mcqs": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"question": map[string]interface{}{
												"type":        "string",
												"description": "The question text",
											},
											"options": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "string",
												},
												"description": "Array of 4 multiple choice options",
											},
											"correct_answer": map[string]interface{}{
												"type":        "integer",
												"description": "0-based index of the correct option",
											},
											"explanation": map[string]interface{}{
												"type":        "string",
												"description": "Brief explanation of why the answer is correct",
											},
										},
										"required": []string{"question", "options", "correct_answer", "explanation"},
									},
								},
								"page_notes": map[string]interface{}{
									"type":        "string",
									"description": "Optional concise study notes for this page",
								},
							},
							"required": []string{"mcqs"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "submit_page_questions",
				},
			},
		},
	)

	if err != nil {
		return PageBatch{}, fmt.Errorf("failed to generate questions for page %d: %w", req.PageNumber, err)
	}

	if g.logger != nil {
		responseText := ""
		if len(resp.Choices) > 0 && len(resp.Choices[0].Message.ToolCalls) > 0 {
			responseText = resp.Choices[0].Message.ToolCalls[0].Function.Arguments
		}
		g.logger.LogLLMResponse("PageGenerator", responseText)
	}

	if len(resp.Choices) == 0 {
		return PageBatch{}, fmt.Errorf("page %d: no response from model", req.PageNumber)
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return PageBatch{}, fmt.Errorf("page %d: no tool calls in response", req.PageNumber)
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_page_questions" {
		return PageBatch{}, fmt.Errorf("page %d: unexpected tool call: %s", req.PageNumber, toolCall.Function.Name)
	}

	var toolArgs struct {
		Mcqs []struct {
			Question      string   `json:"question"`
			Options       []string `json:"options"`
			CorrectAnswer int      `json:"correct_answer"`
			Explanation   string   `json:"explanation"`
		} `json:"mcqs"`
		PageNotes string `json:"page_notes"`
	}

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &toolArgs); err != nil {
		return PageBatch{}, fmt.Errorf("page %d: failed to parse tool arguments: %w", req.PageNumber, err)
	}

	if len(toolArgs.Mcqs) != PageBatchSize {
		return PageBatch{}, fmt.Errorf("page %d: expected %d questions, got %d", req.PageNumber, PageBatchSize, len(toolArgs.Mcqs))
	}

	batch := PageBatch{
		Mcqs:      make([]Mcq, 0, len(toolArgs.Mcqs)),
		PageNotes: strings.TrimSpace(toolArgs.PageNotes),
	}
	for _, q := range toolArgs.Mcqs {
		mcq := Mcq{
			ID:            uuid.New().String(),
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if err := mcq.Validate(); err != nil {
			return PageBatch{}, fmt.Errorf("page %d: incomplete question in batch: %w", req.PageNumber, err)
		}
		batch.Mcqs = append(batch.Mcqs, mcq)
	}

	return batch, nil
}

func (g *OpenAIGenerator) buildPrompt(req PageRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate exactly %d multiple choice questions from page %d of %d of a document about: %s\n\n",
		PageBatchSize, req.PageNumber, req.TotalPages, req.Subject))

	sb.WriteString("Page text:\n")
	sb.WriteString(req.PageText)
	sb.WriteString("\n\n")

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question must have exactly 4 multiple choice options\n")
	sb.WriteString("- Base every question only on the page text above\n")
	sb.WriteString("- The correct answer should be non-obvious but clearly correct\n")
	sb.WriteString("- Incorrect options should be plausible but clearly wrong\n")
	sb.WriteString("- Questions should test understanding, not just memorization\n")
	sb.WriteString("- Avoid questions where the answer is given away in the question text\n")
	sb.WriteString("- Provide a brief explanation for why the correct answer is right\n")
	sb.WriteString("- Optionally provide concise study notes for the page in page_notes\n")
	sb.WriteString("- Use the submit_page_questions tool to return your questions\n")

	return sb.String()
}
