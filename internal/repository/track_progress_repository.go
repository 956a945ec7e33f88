package repository

import (
	"sqlprep_backend/internal/model"

	"gorm.io/gorm"
)

type TrackProgressRepository struct {
	DB *gorm.DB
}

func NewTrackProgressRepository(db *gorm.DB) *TrackProgressRepository {
	return &TrackProgressRepository{DB: db}
}

// FindByMockID 未知的 mockId 返回空切片而不是错误。
// 切片要预先初始化，空结果才会序列化成 [] 而不是 null。
func (r *TrackProgressRepository) FindByMockID(mockID string) ([]model.TrackProgress, error) {
	entries := make([]model.TrackProgress, 0)
	err := r.DB.Where("mock_id = ?", mockID).Find(&entries).Error
	return entries, err
}

func (r *TrackProgressRepository) FindByID(id uint) (*model.TrackProgress, error) {
	var entry model.TrackProgress
	err := r.DB.First(&entry, id).Error
	return &entry, err
}

// UpdateStatus 幂等：重复设置同一状态不报错。
// 不能用 RowsAffected 判断记录是否存在，MySQL 对未变更的行报 0，先查再改。
func (r *TrackProgressRepository) UpdateStatus(id uint, status model.QuestionStatus) error {
	if err := r.DB.Select("id").First(&model.TrackProgress{}, id).Error; err != nil {
		return err
	}
	return r.DB.Model(&model.TrackProgress{}).
		Where("id = ?", id).
		Update("question_status", status).Error
}

// UpdateFeedback 无条件覆盖答案和反馈，同样幂等
func (r *TrackProgressRepository) UpdateFeedback(id uint, aiFeedback, userAnswer string) error {
	if err := r.DB.Select("id").First(&model.TrackProgress{}, id).Error; err != nil {
		return err
	}
	return r.DB.Model(&model.TrackProgress{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ai_feedback": aiFeedback,
			"user_answer": userAnswer,
		}).Error
}
