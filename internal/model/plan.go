package model

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoQuestions = errors.New("completion contains no sql_queries")

// PlanPhase 学习计划中的一个阶段
type PlanPhase struct {
	Name  string   `json:"name"`
	Tasks []string `json:"tasks"`
}

// PlanQuestion 练习题条目，difficulty 取值 Easy/Medium/Hard（自由文本，不强校验）
type PlanQuestion struct {
	Question   string `json:"question"`
	Difficulty string `json:"difficulty"`
}

// PlanPayload AI 补全文本解析后的结构化形态，写入时解析一次，之后直接存取。
// swagger:model PlanPayload
type PlanPayload struct {
	Plan       map[string]PlanPhase `json:"plan"`
	SQLQueries []PlanQuestion       `json:"sql_queries"`
}

// ParsePlanPayload 解析 AI 补全文本。模型经常把 JSON 包在 Markdown 代码块里，
// 先剥掉围栏再解析；sql_queries 为空视为无效补全。
func ParsePlanPayload(completion string) (*PlanPayload, error) {
	cleaned := StripCodeFence(completion)

	var payload PlanPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}

	if len(payload.SQLQueries) == 0 {
		return nil, ErrNoQuestions
	}

	return &payload, nil
}

// Canonical 规范化序列化，持久化用这个结果而不是原始补全文本
func (p *PlanPayload) Canonical() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// StripCodeFence 去掉 ```json ... ``` 围栏和首尾空白
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
