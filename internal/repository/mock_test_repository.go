package repository

import (
	"sqlprep_backend/internal/model"

	"gorm.io/gorm"
)

type MockTestRepository struct {
	DB *gorm.DB
}

func NewMockTestRepository(db *gorm.DB) *MockTestRepository {
	return &MockTestRepository{DB: db}
}

// CreateWithProgress 在一个事务里写入模拟测试和它的全部进度行。
// 任何一行失败整体回滚，不会留下没有题目的孤儿测试。
func (r *MockTestRepository) CreateWithProgress(mock *model.MockTest, entries []model.TrackProgress) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mock).Error; err != nil {
			return err
		}
		for i := range entries {
			entries[i].MockID = mock.MockID
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *MockTestRepository) FindByMockID(mockID string) (*model.MockTest, error) {
	var mock model.MockTest
	err := r.DB.Where("mock_id = ?", mockID).First(&mock).Error
	return &mock, err
}

// FindByUser 空结果返回 [] 而不是 null
func (r *MockTestRepository) FindByUser(userID uint) ([]model.MockTest, error) {
	mocks := make([]model.MockTest, 0)
	err := r.DB.Where("created_by = ?", userID).Find(&mocks).Error
	return mocks, err
}
