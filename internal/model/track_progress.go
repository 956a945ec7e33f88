package model

type QuestionStatus string

const (
	QuestionPending QuestionStatus = "pending"
	QuestionDone    QuestionStatus = "done"
)

// TrackProgress 一道练习题在某份模拟测试里的完成状态。
// mock_id 上是普通索引：一份测试拥有多道题，它们共享同一个 mockId。
// swagger:model TrackProgress
type TrackProgress struct {
	BaseModel
	MockID         string         `gorm:"size:64;index;not null" json:"mockId"`
	Question       string         `gorm:"type:text;not null" json:"question"`
	QuestionStatus QuestionStatus `gorm:"size:10;default:'pending'" json:"questionStatus"`
	UserAnswer     string         `gorm:"type:text" json:"userAnswer"`
	AIFeedback     string         `gorm:"type:text" json:"aiFeedback"`
	Level          string         `gorm:"size:20;not null" json:"level"`
}

func (TrackProgress) TableName() string {
	return "track_progress"
}
