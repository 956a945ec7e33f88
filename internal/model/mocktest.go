package model

// MockTest 一份 AI 生成的 SQL 学习套件：分阶段学习计划 + 练习题集。
// AIResponse 在写入时已解析校验过，存的是规范化后的 {plan, sql_queries} JSON。
// swagger:model MockTest
type MockTest struct {
	BaseModel
	MockID              string  `gorm:"size:64;uniqueIndex;not null" json:"mockId"`
	TotalCTC            float64 `gorm:"not null" json:"totalCTC"`
	TotalExperience     float64 `gorm:"not null" json:"totalExperience"`
	TargetCompany       string  `gorm:"size:100;not null" json:"targetCompany"`
	TotalTimeCommitment float64 `gorm:"not null" json:"totalTimeCommitment"`
	AIResponse          string  `gorm:"type:longtext" json:"aiResponse"`
	CreatedBy           uint    `gorm:"index;not null" json:"createdBy"`
}

func (MockTest) TableName() string {
	return "mock_tests"
}
