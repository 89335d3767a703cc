package controller

import (
	"errors"
	"strconv"

	"coach_backend/internal/service"
	"coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CoachController struct {
	CoachService *service.CoachService
}

func NewCoachController(coachService *service.CoachService) *CoachController {
	return &CoachController{CoachService: coachService}
}

// Chat 处理 AI 教练对话
// @Summary AI 教练对话
// @Description 以 SSE 流式返回回答，事件为 message、error、end
// @Tags AI教练
// @Accept json
// @Produce text/event-stream
// @Security ApiKeyAuth
// @Param request body service.CoachChatRequest true "对话消息"
// @Success 200 {string} string "SSE stream"
// @Failure 503 {object} util.Response "AI 服务未配置"
// @Router /api/ai/coach [post]
func (c *CoachController) Chat(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.CoachChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stream, errChan, err := c.CoachService.Chat(ctx.Request.Context(), userID, req.Messages)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	// 设置SSE响应头
	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	for content := range stream {
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	if err := <-errChan; err != nil {
		code := util.ErrAIService.Code
		var appErr *util.AppError
		if errors.As(err, &appErr) {
			code = appErr.Code
		}
		ctx.SSEvent("error", gin.H{"code": code, "message": util.ErrAIService.Message})
		ctx.Writer.Flush()
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}

// Decompose godoc
// @Summary AI 目标拆解
// @Description 生成带权重的子目标建议；apply=true 时直接保存为子目标
// @Tags AI教练
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "主目标ID"
// @Param apply query bool false "是否保存为子目标"
// @Param body body service.DecomposeRequest false "补充背景"
// @Success 200 {object} util.Response{data=service.DecompositionResult}
// @Failure 503 {object} util.Response
// @Router /api/ai/goals/{id}/decompose [post]
func (c *CoachController) Decompose(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.DecomposeRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	apply := false
	if raw := ctx.Query("apply"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			util.BadRequest(ctx, "apply must be a boolean")
			return
		}
		apply = v
	}

	result, err := c.CoachService.Decompose(ctx.Request.Context(), userID, ctx.Param("id"), req.Context, apply)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Analyze godoc
// @Summary AI 进度分析
// @Tags AI教练
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "目标ID"
// @Success 200 {object} util.Response{data=model.ProgressAnalysis}
// @Failure 503 {object} util.Response
// @Router /api/ai/goals/{id}/analysis [post]
func (c *CoachController) Analyze(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	analysis, err := c.CoachService.Analyze(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, analysis)
}
