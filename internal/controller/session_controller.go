package controller

import (
	"strconv"

	"coach_backend/internal/service"
	"coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// CreateSession godoc
// @Summary 创建教练会话
// @Tags 教练会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateSessionRequest true "会话信息"
// @Success 201 {object} util.Response{data=model.CoachingSession}
// @Failure 400 {object} util.Response
// @Router /api/sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session, err := c.SessionService.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// ListSessions godoc
// @Summary 最近的教练会话
// @Tags 教练会话
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回条数，默认10，最大100"
// @Success 200 {object} util.Response{data=[]model.CoachingSession}
// @Router /api/sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			util.BadRequest(ctx, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	sessions, err := c.SessionService.ListRecent(ctx.Request.Context(), userID, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// GetSession godoc
// @Summary 获取会话详情
// @Tags 教练会话
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=model.CoachingSession}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	session, err := c.SessionService.Get(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// UpdateSession godoc
// @Summary 更新会话
// @Description 状态变为 completed 时记录完成时间；goalProgress 会作为带会话ID的进度更新写入
// @Tags 教练会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Param body body service.UpdateSessionRequest true "要修改的字段"
// @Success 200 {object} util.Response{data=model.CoachingSession}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/sessions/{id} [patch]
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.UpdateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session, err := c.SessionService.Update(ctx.Request.Context(), userID, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// Stats godoc
// @Summary 会话统计
// @Tags 教练会话
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.SessionStats}
// @Router /api/sessions/stats [get]
func (c *SessionController) Stats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	stats, err := c.SessionService.Stats(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
