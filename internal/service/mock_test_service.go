package service

import (
	"context"
	"errors"
	"fmt"
	"sqlprep_backend/internal/model"
	"sqlprep_backend/internal/repository"
	"sqlprep_backend/internal/util"
	"sqlprep_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const mockCacheTTL = time.Hour

type MockTestService struct {
	MockRepo *repository.MockTestRepository
	AI       *AIService
	Redis    *redis.Client
}

func NewMockTestService(mockRepo *repository.MockTestRepository, ai *AIService, rdb *redis.Client) *MockTestService {
	return &MockTestService{
		MockRepo: mockRepo,
		AI:       ai,
		Redis:    rdb,
	}
}

type CreateMockTestInput struct {
	TotalExperience     float64
	TotalCTC            float64
	TargetCompany       string
	TotalTimeCommitment float64
	AIResponse          string
	UserID              uint
}

// Create 先解析校验 AI 补全，再在一个事务里落库。
// 解析失败时不写任何东西，不会出现没有题目的模拟测试。
func (s *MockTestService) Create(input CreateMockTestInput) (*model.MockTest, error) {
	payload, err := model.ParsePlanPayload(input.AIResponse)
	if err != nil {
		logger.Log.Warn("rejected AI completion", zap.Error(err))
		return nil, util.ErrInvalidAIResponse
	}

	canonical, err := payload.Canonical()
	if err != nil {
		return nil, err
	}

	mock := &model.MockTest{
		MockID:              model.GenerateMockID(),
		TotalCTC:            input.TotalCTC,
		TotalExperience:     input.TotalExperience,
		TargetCompany:       input.TargetCompany,
		TotalTimeCommitment: input.TotalTimeCommitment,
		AIResponse:          canonical,
		CreatedBy:           input.UserID,
	}

	entries := make([]model.TrackProgress, 0, len(payload.SQLQueries))
	for _, q := range payload.SQLQueries {
		entries = append(entries, model.TrackProgress{
			Question:       q.Question,
			QuestionStatus: model.QuestionPending,
			UserAnswer:     "",
			AIFeedback:     "",
			Level:          q.Difficulty,
		})
	}

	if err := s.MockRepo.CreateWithProgress(mock, entries); err != nil {
		return nil, err
	}

	logger.Log.Info("mock test created",
		zap.String("mockId", mock.MockID),
		zap.Uint("userId", mock.CreatedBy),
		zap.Int("questions", len(entries)))

	return mock, nil
}

// Generate 服务端直连 AI 生成学习计划后落库，取代旧的浏览器直调方案
func (s *MockTestService) Generate(ctx context.Context, input CreateMockTestInput) (*model.MockTest, error) {
	completion, err := s.AI.GeneratePlan(ctx, input.TotalExperience, input.TotalCTC, input.TargetCompany, input.TotalTimeCommitment)
	if err != nil {
		return nil, err
	}

	input.AIResponse = completion
	return s.Create(input)
}

// GetPlan 返回落库时规范化过的 {plan, sql_queries} JSON 文本。
// 前端拿到的是字符串，自己 JSON.parse，所以这里不能回吐解析后的对象。
// 读多写一，套一层 Redis 缓存。
func (s *MockTestService) GetPlan(ctx context.Context, mockID string) (string, error) {
	cacheKey := fmt.Sprintf("mock:plan:%s", mockID)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	mock, err := s.MockRepo.FindByMockID(mockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrMockTestNotFound
		}
		return "", err
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, cacheKey, mock.AIResponse, mockCacheTTL).Err(); err != nil {
			logger.Log.Warn("mock plan cache write failed", zap.Error(err))
		}
	}

	return mock.AIResponse, nil
}

func (s *MockTestService) ListByUser(userID uint) ([]model.MockTest, error) {
	return s.MockRepo.FindByUser(userID)
}
