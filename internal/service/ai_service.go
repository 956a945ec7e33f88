package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sqlprep_backend/internal/config"
	"sqlprep_backend/pkg/monitoring"
	"time"
)

// AIService 调用 OpenAI 兼容的 chat/completions 接口。
// API Key 只存在于服务端配置，前端拿不到。
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const planPromptTemplate = `Relevant experience: %v,
Current CTC in INR: %v,
Target company: %s,
Time commitment: %v.

Based on the given experience, current CTC, target company, and time commitment, generate a structured learning plan for SQL as a Data Engineer. The response must be in **valid JSON format** with the following structure:

{
  "plan": {
    "phase_1": {
      "name": "Phase 1 Name",
      "tasks": ["Task 1", "Task 2", "Task 3"]
    },
    "phase_2": {
      "name": "Phase 2 Name",
      "tasks": ["Task 1", "Task 2"]
    },
    ...
  },
  "sql_queries": [
    {
      "question": "SQL question here",
      "difficulty": "Easy/Medium/Hard"
    },
    ...
  ]
}

The **plan** should be structured into multiple phases, each containing a **name** and an array of **tasks** for learning SQL concepts step by step.

The **sql_queries** array should contain **at least 25 SQL-related questions**, each having a **question text** and a **difficulty level** (Easy, Medium, or Hard).

Ensure the JSON is properly formatted and contains no extra text outside the JSON structure.`

// GeneratePlan 生成一份学习计划补全文本，返回的是待解析的原始补全
func (s *AIService) GeneratePlan(ctx context.Context, experience, ctc float64, targetCompany string, timeCommitment float64) (string, error) {
	prompt := fmt.Sprintf(planPromptTemplate, experience, ctc, targetCompany, timeCommitment)

	start := time.Now()
	completion, err := s.chat(ctx, prompt)
	monitoring.ObserveAICall("plan", start, err)
	return completion, err
}

// GenerateFeedback 对单题答案生成一段点评
func (s *AIService) GenerateFeedback(ctx context.Context, question, userAnswer string) (string, error) {
	prompt := fmt.Sprintf("For the following question: %s, my answer is %s. Please give your feedback in a paragraph.", question, userAnswer)

	start := time.Now()
	feedback, err := s.chat(ctx, prompt)
	monitoring.ObserveAICall("feedback", start, err)
	return feedback, err
}

func (s *AIService) chat(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}
