package service

import (
	"context"
	"errors"
	"sqlprep_backend/internal/model"
	"sqlprep_backend/internal/repository"
	"sqlprep_backend/internal/util"

	"gorm.io/gorm"
)

type ProgressService struct {
	ProgressRepo *repository.TrackProgressRepository
	AI           *AIService
}

func NewProgressService(progressRepo *repository.TrackProgressRepository, ai *AIService) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		AI:           ai,
	}
}

func (s *ProgressService) ListByMockID(mockID string) ([]model.TrackProgress, error) {
	return s.ProgressRepo.FindByMockID(mockID)
}

// MarkDone 单向状态机：pending -> done，重复调用幂等，没有回退路径
func (s *ProgressService) MarkDone(id uint) error {
	err := s.ProgressRepo.UpdateStatus(id, model.QuestionDone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrProgressNotFound
	}
	return err
}

// UpdateFeedback 无条件覆盖之前的答案与反馈
func (s *ProgressService) UpdateFeedback(id uint, aiFeedback, userAnswer string) error {
	err := s.ProgressRepo.UpdateFeedback(id, aiFeedback, userAnswer)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrProgressNotFound
	}
	return err
}

// GenerateFeedback 服务端生成单题点评并落库，返回反馈文本
func (s *ProgressService) GenerateFeedback(ctx context.Context, id uint, userAnswer string) (string, error) {
	entry, err := s.ProgressRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrProgressNotFound
		}
		return "", err
	}

	feedback, err := s.AI.GenerateFeedback(ctx, entry.Question, userAnswer)
	if err != nil {
		return "", err
	}

	if err := s.UpdateFeedback(id, feedback, userAnswer); err != nil {
		return "", err
	}

	return feedback, nil
}
