package controller

import (
	"coach_backend/internal/service"
	"coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
}

func NewAssessmentController(assessmentService *service.AssessmentService) *AssessmentController {
	return &AssessmentController{AssessmentService: assessmentService}
}

// ListTemplates godoc
// @Summary 测评模板列表
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.AssessmentTemplate}
// @Router /api/assessments/templates [get]
func (c *AssessmentController) ListTemplates(ctx *gin.Context) {
	templates, err := c.AssessmentService.Templates(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, templates)
}

// Start godoc
// @Summary 开始测评
// @Description 从模板复制题目创建一份新的测评
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param templateId path string true "模板ID"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/templates/{templateId}/start [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	a, err := c.AssessmentService.Start(ctx.Request.Context(), userID, ctx.Param("templateId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// List godoc
// @Summary 我的测评
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Assessment}
// @Router /api/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	list, err := c.AssessmentService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary 测评详情
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	a, err := c.AssessmentService.Get(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// Submit godoc
// @Summary 提交测评答案
// @Description 计算得分与结果；已完成的测评不能再次提交
// @Tags 测评
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评ID"
// @Param body body service.SubmitAssessmentRequest true "答案"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/assessments/{id}/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req service.SubmitAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	a, err := c.AssessmentService.Submit(ctx.Request.Context(), userID, ctx.Param("id"), req.Answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}
