package controller

import (
	"coach_backend/internal/service"
	"coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// GetAnalytics godoc
// @Summary 综合分析
// @Description 目标统计、会话统计与累计进度曲线
// @Tags 分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Analytics}
// @Router /api/analytics [get]
func (c *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	a, err := c.AnalyticsService.Get(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}
