package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sqlprep_backend/internal/config"
	"sqlprep_backend/internal/model"
	"sqlprep_backend/internal/repository"
	"sqlprep_backend/internal/util"
	"testing"

	"gorm.io/gorm"
)

const sampleCompletion = `{
  "plan": {
    "phase_1": {"name": "Foundations", "tasks": ["SELECT basics", "Filtering"]},
    "phase_2": {"name": "Joins", "tasks": ["INNER JOIN", "LEFT JOIN"]}
  },
  "sql_queries": [
    {"question": "SELECT syntax?", "difficulty": "Easy"},
    {"question": "Explain LEFT JOIN vs INNER JOIN", "difficulty": "Medium"},
    {"question": "Write a window function ranking salaries", "difficulty": "Hard"}
  ]
}`

func newMockTestService(t *testing.T, db *gorm.DB) *MockTestService {
	t.Helper()
	return NewMockTestService(repository.NewMockTestRepository(db), nil, nil)
}

func TestCreateExplodesQuestions(t *testing.T) {
	db := newTestDB(t)
	s := newMockTestService(t, db)

	mock, err := s.Create(CreateMockTestInput{
		TotalExperience:     3,
		TotalCTC:            1200000,
		TargetCompany:       "Acme",
		TotalTimeCommitment: 2,
		AIResponse:          sampleCompletion,
		UserID:              7,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if mock.MockID == "" {
		t.Error("expected a generated mockId")
	}
	if mock.CreatedBy != 7 {
		t.Errorf("createdBy = %d, want 7", mock.CreatedBy)
	}

	var entries []model.TrackProgress
	if err := db.Where("mock_id = ?", mock.MockID).Find(&entries).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("progress rows = %d, want 3", len(entries))
	}
	for _, e := range entries {
		if e.QuestionStatus != model.QuestionPending {
			t.Errorf("question %q status = %q, want pending", e.Question, e.QuestionStatus)
		}
		if e.UserAnswer != "" || e.AIFeedback != "" {
			t.Errorf("question %q has non-empty answer/feedback", e.Question)
		}
	}
}

func TestCreateAcceptsFencedCompletion(t *testing.T) {
	db := newTestDB(t)
	s := newMockTestService(t, db)

	fenced := "```json\n" + sampleCompletion + "\n```"
	mock, err := s.Create(CreateMockTestInput{AIResponse: fenced, TargetCompany: "Acme", UserID: 1})
	if err != nil {
		t.Fatalf("create with fenced completion: %v", err)
	}

	var payload model.PlanPayload
	if err := json.Unmarshal([]byte(mock.AIResponse), &payload); err != nil {
		t.Fatalf("persisted aiResponse is not canonical JSON: %v", err)
	}
	if len(payload.SQLQueries) != 3 {
		t.Errorf("persisted sql_queries = %d, want 3", len(payload.SQLQueries))
	}
}

func TestCreateRejectsBadCompletions(t *testing.T) {
	tests := []struct {
		name       string
		completion string
	}{
		{name: "not json", completion: "here is your plan!"},
		{name: "missing sql_queries", completion: `{"plan": {}}`},
		{name: "empty sql_queries", completion: `{"plan": {}, "sql_queries": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			s := newMockTestService(t, db)

			_, err := s.Create(CreateMockTestInput{AIResponse: tt.completion, UserID: 1})
			if !errors.Is(err, util.ErrInvalidAIResponse) {
				t.Fatalf("Create() err = %v, want ErrInvalidAIResponse", err)
			}

			// 解析失败不能留下半成品
			var mocks, entries int64
			db.Model(&model.MockTest{}).Count(&mocks)
			db.Model(&model.TrackProgress{}).Count(&entries)
			if mocks != 0 || entries != 0 {
				t.Errorf("partial state after failed create: %d mocks, %d progress rows", mocks, entries)
			}
		})
	}
}

func TestGetPlan(t *testing.T) {
	db := newTestDB(t)
	s := newMockTestService(t, db)

	mock, err := s.Create(CreateMockTestInput{AIResponse: sampleCompletion, TargetCompany: "Acme", UserID: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	raw, err := s.GetPlan(context.Background(), mock.MockID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	// 返回的必须是 JSON 文本本身，前端靠 JSON.parse 消费
	var payload model.PlanPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("plan is not parseable JSON text: %v", err)
	}
	if payload.Plan["phase_1"].Name != "Foundations" {
		t.Errorf("phase_1 name = %q, want Foundations", payload.Plan["phase_1"].Name)
	}
	if len(payload.SQLQueries) != 3 {
		t.Errorf("sql_queries = %d, want 3", len(payload.SQLQueries))
	}

	if _, err := s.GetPlan(context.Background(), "mock-does-not-exist"); !errors.Is(err, util.ErrMockTestNotFound) {
		t.Errorf("unknown mockId err = %v, want ErrMockTestNotFound", err)
	}
}

func TestListByUser(t *testing.T) {
	db := newTestDB(t)
	s := newMockTestService(t, db)

	for i := 0; i < 2; i++ {
		if _, err := s.Create(CreateMockTestInput{AIResponse: sampleCompletion, TargetCompany: "Acme", UserID: 5}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := s.Create(CreateMockTestInput{AIResponse: sampleCompletion, TargetCompany: "Acme", UserID: 6}); err != nil {
		t.Fatalf("create: %v", err)
	}

	mocks, err := s.ListByUser(5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mocks) != 2 {
		t.Errorf("mocks for user 5 = %d, want 2", len(mocks))
	}

	empty, err := s.ListByUser(99)
	if err != nil {
		t.Fatalf("list unknown user: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("mocks for unknown user = %d, want 0", len(empty))
	}
}

func TestGenerateUsesServerSideAI(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("provider saw Authorization %q", got)
		}
		resp := ChatCompletionResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message AIChatMessage `json:"message"`
		}{Message: AIChatMessage{Role: "assistant", Content: "```json\n" + sampleCompletion + "\n```"}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer provider.Close()

	db := newTestDB(t)
	ai := NewAIService(config.AIConfig{BaseURL: provider.URL, APIKey: "test-key", Model: "test"})
	s := NewMockTestService(repository.NewMockTestRepository(db), ai, nil)

	mock, err := s.Generate(context.Background(), CreateMockTestInput{
		TotalExperience: 2, TotalCTC: 900000, TargetCompany: "Acme", TotalTimeCommitment: 1, UserID: 3,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var entries int64
	db.Model(&model.TrackProgress{}).Where("mock_id = ?", mock.MockID).Count(&entries)
	if entries != 3 {
		t.Errorf("progress rows = %d, want 3", entries)
	}
}

func TestGenerateProviderError(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer provider.Close()

	db := newTestDB(t)
	ai := NewAIService(config.AIConfig{BaseURL: provider.URL, APIKey: "test-key", Model: "test"})
	s := NewMockTestService(repository.NewMockTestRepository(db), ai, nil)

	if _, err := s.Generate(context.Background(), CreateMockTestInput{TargetCompany: "Acme", UserID: 3}); err == nil {
		t.Fatal("expected provider error to propagate")
	}

	var mocks int64
	db.Model(&model.MockTest{}).Count(&mocks)
	if mocks != 0 {
		t.Errorf("mock rows after failed generate = %d, want 0", mocks)
	}
}
