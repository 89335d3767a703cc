package controller

import (
	"coach_backend/internal/service"
	"coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GoalController struct {
	GoalService *service.GoalService
}

func NewGoalController(goalService *service.GoalService) *GoalController {
	return &GoalController{GoalService: goalService}
}

// CreateSubGoalsRequest 批量创建子目标
type CreateSubGoalsRequest struct {
	SubGoals []service.SubGoalDraft `json:"subGoals" binding:"required,min=1,dive"`
}

// CreateGoal godoc
// @Summary 创建目标
// @Description 创建主目标；带 parentGoalId 时创建该主目标下的子目标
// @Tags 目标
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateGoalRequest true "目标信息"
// @Success 201 {object} util.Response{data=model.Goal}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/goals [post]
func (c *GoalController) CreateGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.CreateGoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	goal, err := c.GoalService.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, goal)
}

// ListGoals godoc
// @Summary 获取主目标列表
// @Description 返回当前用户的主目标及其子目标和聚合进度，按创建时间倒序
// @Tags 目标
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Goal}
// @Router /api/goals [get]
func (c *GoalController) ListGoals(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	goals, err := c.GoalService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, goals)
}

// GetGoal godoc
// @Summary 获取目标详情
// @Tags 目标
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "目标ID"
// @Success 200 {object} util.Response{data=model.Goal}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/goals/{id} [get]
func (c *GoalController) GetGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	goal, err := c.GoalService.Get(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// UpdateGoal godoc
// @Summary 更新目标
// @Tags 目标
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "目标ID"
// @Param body body service.UpdateGoalRequest true "要修改的字段"
// @Success 200 {object} util.Response{data=model.Goal}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/goals/{id} [patch]
func (c *GoalController) UpdateGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.UpdateGoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	goal, err := c.GoalService.Update(ctx.Request.Context(), userID, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// DeleteGoal godoc
// @Summary 删除目标
// @Description 删除主目标时同时删除其子目标
// @Tags 目标
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "目标ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/goals/{id} [delete]
func (c *GoalController) DeleteGoal(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if err := c.GoalService.Delete(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}

// UpdateProgress godoc
// @Summary 更新目标进度
// @Description 写入新进度并在同一事务中记录进度流水
// @Tags 目标
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "目标ID"
// @Param body body service.ProgressUpdateRequest true "进度"
// @Success 200 {object} util.Response{data=model.Goal}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/goals/{id}/progress [post]
func (c *GoalController) UpdateProgress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.ProgressUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	goal, err := c.GoalService.UpdateProgress(ctx.Request.Context(), userID, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// Rollup godoc
// @Summary 汇总子目标进度
// @Description 将子目标的加权进度写回主目标
// @Tags 目标
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "主目标ID"
// @Success 200 {object} util.Response{data=model.Goal}
// @Router /api/goals/{id}/rollup [post]
func (c *GoalController) Rollup(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	goal, err := c.GoalService.Rollup(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// ListSubGoals godoc
// @Summary 获取子目标
// @Tags 目标
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "主目标ID"
// @Success 200 {object} util.Response{data=[]model.Goal}
// @Router /api/goals/{id}/subgoals [get]
func (c *GoalController) ListSubGoals(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	subs, err := c.GoalService.SubGoals(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// CreateSubGoals godoc
// @Summary 批量创建子目标
// @Description 全部成功或全部不写入
// @Tags 目标
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "主目标ID"
// @Param body body CreateSubGoalsRequest true "子目标列表"
// @Success 201 {object} util.Response{data=[]model.Goal}
// @Failure 400 {object} util.Response
// @Router /api/goals/{id}/subgoals [post]
func (c *GoalController) CreateSubGoals(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req CreateSubGoalsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	created, err := c.GoalService.CreateSubGoals(ctx.Request.Context(), userID, ctx.Param("id"), req.SubGoals)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// History godoc
// @Summary 进度流水
// @Tags 目标
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "目标ID"
// @Success 200 {object} util.Response{data=[]model.ProgressTracking}
// @Router /api/goals/{id}/history [get]
func (c *GoalController) History(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	records, err := c.GoalService.History(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

// Stats godoc
// @Summary 目标统计
// @Tags 目标
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.GoalStats}
// @Router /api/goals/stats [get]
func (c *GoalController) Stats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	stats, err := c.GoalService.Stats(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
