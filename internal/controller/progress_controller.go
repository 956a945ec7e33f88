package controller

import (
	"errors"
	"sqlprep_backend/internal/service"
	"sqlprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// ListProgress godoc
// @Summary 获取某份模拟测试的全部进度行
// @Description 未知 mockId 返回空数组而不是 404
// @Tags 进度
// @Produce  json
// @Param   mockId path string true "模拟测试编号"
// @Success 200 {array} model.TrackProgress
// @Failure 500 {object} map[string]string
// @Router /trackProgress/{mockId} [get]
func (c *ProgressController) ListProgress(ctx *gin.Context) {
	entries, err := c.ProgressService.ListByMockID(ctx.Param("mockId"))
	if err != nil {
		util.LogInternalError(ctx, "Error fetching progress", err)
		return
	}

	ctx.JSON(200, entries)
}

// UpdateStatus godoc
// @Summary 标记题目完成
// @Description 无条件置为 done，重复调用幂等
// @Tags 进度
// @Produce  json
// @Param   id path int true "进度行编号"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /update-status/{id} [patch]
func (c *ProgressController) UpdateStatus(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.ProgressService.MarkDone(id); err != nil {
		if errors.Is(err, util.ErrProgressNotFound) {
			util.NotFound(ctx, "Progress record not found")
		} else {
			util.LogInternalError(ctx, "Failed to update status", err)
		}
		return
	}

	util.Message(ctx, "Status updated", nil)
}

// swagger:model UpdateFeedbackRequest
type UpdateFeedbackRequest struct {
	AIFeedback string `json:"aiFeedback"`
	UserAnswer string `json:"userAnswer"`
}

// UpdateFeedback godoc
// @Summary 写入答案与反馈
// @Description 无条件覆盖之前的值
// @Tags 进度
// @Accept  json
// @Produce  json
// @Param   id path int true "进度行编号"
// @Param   body body UpdateFeedbackRequest true "反馈与答案"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /update-feedback/{id} [patch]
func (c *ProgressController) UpdateFeedback(ctx *gin.Context) {
	var req UpdateFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))

	if err := c.ProgressService.UpdateFeedback(id, req.AIFeedback, req.UserAnswer); err != nil {
		if errors.Is(err, util.ErrProgressNotFound) {
			util.NotFound(ctx, "Progress record not found")
		} else {
			util.LogInternalError(ctx, "Failed to update feedback", err)
		}
		return
	}

	util.Message(ctx, "Feedback updated", nil)
}

// swagger:model GenerateFeedbackRequest
type GenerateFeedbackRequest struct {
	UserAnswer string `json:"userAnswer" binding:"required"`
}

// GenerateFeedback godoc
// @Summary 生成单题点评（服务端调用 AI）
// @Description 取出题目文本，请求 AI 点评，写回进度行并返回反馈
// @Tags 进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "进度行编号"
// @Param   body body GenerateFeedbackRequest true "用户答案"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string "AI 服务不可用"
// @Router /generate-feedback/{id} [post]
func (c *ProgressController) GenerateFeedback(ctx *gin.Context) {
	var req GenerateFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))

	feedback, err := c.ProgressService.GenerateFeedback(ctx.Request.Context(), id, req.UserAnswer)
	if err != nil {
		if errors.Is(err, util.ErrProgressNotFound) {
			util.NotFound(ctx, "Progress record not found")
		} else {
			util.Error(ctx, 502, "Failed to generate feedback")
		}
		return
	}

	util.Message(ctx, "Feedback updated", gin.H{"aiFeedback": feedback})
}
