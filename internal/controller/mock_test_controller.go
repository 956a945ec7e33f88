package controller

import (
	"errors"
	"sqlprep_backend/internal/service"
	"sqlprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MockTestController struct {
	MockTestService *service.MockTestService
}

func NewMockTestController(mockTestService *service.MockTestService) *MockTestController {
	return &MockTestController{MockTestService: mockTestService}
}

// swagger:model CreateMockRequest
type CreateMockRequest struct {
	TotalExperience     float64 `json:"totalExperience"`
	TotalCTC            float64 `json:"totalCTC"`
	TargetCompany       string  `json:"targetCompany"`
	TotalTimeCommitment float64 `json:"totalTimeCommitment"`
	AIResponse          string  `json:"aiResponse"`
	UserID              uint    `json:"userId"`
}

// CreateMock godoc
// @Summary 创建模拟测试（客户端提供补全文本）
// @Description 解析 aiResponse 里的 {plan, sql_queries}，落库并为每道题建进度行
// @Tags 模拟测试
// @Accept  json
// @Produce  json
// @Param   body body CreateMockRequest true "输入与补全文本"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "缺少 userId"
// @Failure 500 {object} map[string]string
// @Router /create-mock [post]
func (c *MockTestController) CreateMock(ctx *gin.Context) {
	var req CreateMockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.UserID == 0 {
		util.BadRequest(ctx, "User ID is required")
		return
	}

	mock, err := c.MockTestService.Create(service.CreateMockTestInput{
		TotalExperience:     req.TotalExperience,
		TotalCTC:            req.TotalCTC,
		TargetCompany:       req.TargetCompany,
		TotalTimeCommitment: req.TotalTimeCommitment,
		AIResponse:          req.AIResponse,
		UserID:              req.UserID,
	})
	if err != nil {
		util.LogInternalError(ctx, "Error creating mock test", err)
		return
	}

	util.Message(ctx, "Mock test created", gin.H{"mockTest": mock})
}

// swagger:model GenerateMockRequest
type GenerateMockRequest struct {
	TotalExperience     float64 `json:"totalExperience"`
	TotalCTC            float64 `json:"totalCTC"`
	TargetCompany       string  `json:"targetCompany" binding:"required"`
	TotalTimeCommitment float64 `json:"totalTimeCommitment"`
}

// GenerateMock godoc
// @Summary 生成模拟测试（服务端调用 AI）
// @Description 后端持凭证调用生成式 AI，解析后落库，前端不再接触 API Key
// @Tags 模拟测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body GenerateMockRequest true "用户输入"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string "AI 服务不可用"
// @Router /generate-mock [post]
func (c *MockTestController) GenerateMock(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx, "Not authenticated")
		return
	}

	var req GenerateMockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	mock, err := c.MockTestService.Generate(ctx.Request.Context(), service.CreateMockTestInput{
		TotalExperience:     req.TotalExperience,
		TotalCTC:            req.TotalCTC,
		TargetCompany:       req.TargetCompany,
		TotalTimeCommitment: req.TotalTimeCommitment,
		UserID:              claims.UserID,
	})
	if err != nil {
		if errors.Is(err, util.ErrInvalidAIResponse) {
			util.Error(ctx, 502, "AI returned an unusable plan")
		} else {
			util.LogInternalError(ctx, "Error creating mock test", err)
		}
		return
	}

	util.Message(ctx, "Mock test created", gin.H{"mockTest": mock})
}

// GetMock godoc
// @Summary 获取模拟测试的学习计划
// @Description 返回规范化后的 {plan, sql_queries} JSON 文本，由前端解析
// @Tags 模拟测试
// @Produce  json
// @Param   mockId path string true "模拟测试编号"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /{mockId} [get]
func (c *MockTestController) GetMock(ctx *gin.Context) {
	mockID := ctx.Param("mockId")

	raw, err := c.MockTestService.GetPlan(ctx.Request.Context(), mockID)
	if err != nil {
		if errors.Is(err, util.ErrMockTestNotFound) {
			util.NotFound(ctx, "Mock test not found")
		} else {
			util.LogInternalError(ctx, "Error fetching AI response", err)
		}
		return
	}

	ctx.JSON(200, gin.H{"aiResponse": raw})
}

// ListMocks godoc
// @Summary 列出用户的全部模拟测试
// @Tags 模拟测试
// @Produce  json
// @Param   userId path int true "用户编号"
// @Success 200 {array} model.MockTest
// @Failure 500 {object} map[string]string
// @Router /mocks/{userId} [get]
func (c *MockTestController) ListMocks(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("userId"))

	mocks, err := c.MockTestService.ListByUser(userID)
	if err != nil {
		util.LogInternalError(ctx, "Error fetching mock tests", err)
		return
	}

	ctx.JSON(200, mocks)
}
