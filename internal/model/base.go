package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// GenerateMockID 生成全局唯一的模拟测试编号。
// 保留原有的 mock- 前缀，但用 UUID 取代毫秒时间戳，并发创建时不会碰撞。
func GenerateMockID() string {
	return "mock-" + uuid.New().String()
}
