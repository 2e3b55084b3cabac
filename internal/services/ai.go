package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/teamtasks-api/internal/clock"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/utils"
)

// TaskGenerator turns free text into task suggestions.
type TaskGenerator interface {
	GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error)
}

type AIService struct {
	client *openai.Client
	model  string
	clock  clock.Clock
}

type GeneratedTask struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	DueDate     *time.Time            `json:"due_date"`
	Priority    *models.PriorityLevel `json:"priority"`
}

func NewAIService(apiKey string, c clock.Clock) *AIService {
	if c == nil {
		c = clock.System{}
	}
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
		clock:  c,
	}
}

// GenerateTasksFromText analyzes text and extracts tasks using OpenAI GPT
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := s.clock.Now().Format(time.RFC3339)
	prompt := fmt.Sprintf(`You extract actionable tasks from text.

Current time (UTC): %s

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "title": "short task title",
    "description": "details of the task",
    "due_date": "deadline in RFC3339 UTC, e.g. 2025-10-28T23:59:59Z, or null when none is stated",
    "priority": "Low, Medium or High"
  }
]

Rules:
- Return [] when the text contains no tasks
- Turn relative deadlines ("tomorrow", "next week") into absolute timestamps
- Return JSON only, without explanations or code fences`, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseGeneratedTasks(resp.Choices[0].Message.Content)
}

// parseGeneratedTasks decodes the model output, tolerating a surrounding code fence.
func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw []struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		DueDate     *string `json:"due_date"`
		Priority    *string `json:"priority"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	tasks := make([]GeneratedTask, 0, len(raw))
	for _, r := range raw {
		task := GeneratedTask{Title: r.Title, Description: r.Description}
		if r.DueDate != nil {
			if due, err := utils.ParseTimestamp(*r.DueDate); err == nil {
				task.DueDate = &due
			}
		}
		if r.Priority != nil {
			if level, err := models.ParsePriorityLevel(*r.Priority); err == nil {
				task.Priority = &level
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
