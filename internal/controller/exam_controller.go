package controller

import (
	"errors"
	"fmt"
	"net/http"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// bindSubmitRequest JSON 请求体直接绑定，表单提交则解析 choice_* 字段
func bindSubmitRequest(ctx *gin.Context) (service.SubmitExamRequest, error) {
	var req service.SubmitExamRequest
	if ctx.ContentType() == binding.MIMEJSON {
		err := ctx.ShouldBindJSON(&req)
		return req, err
	}

	if err := ctx.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req, err
	}
	ids, err := service.ExtractAnswers(ctx.Request.PostForm)
	if err != nil {
		return req, err
	}
	req.ChoiceIDs = ids
	return req, nil
}

// Submit godoc
// @Summary 提交考试答案
// @Description 支持 JSON {"choiceIds":[...]} 或表单字段 choice_<n>=<choiceId>
// @Tags 考试
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.SubmitExamRequest false "所选选项"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response "未报名"
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/submit [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	courseID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	req, err := bindSubmitRequest(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.ExamService.Submit(ctx.Request.Context(), util.CurrentUserID(ctx), courseID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotEnrolled):
			util.Error(ctx, http.StatusForbidden, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{
		"submissionId": submission.ID,
		"resultUrl":    fmt.Sprintf("/api/courses/%d/submissions/%d/result", courseID, submission.ID),
	})
}

// Result godoc
// @Summary 考试结果
// @Description 根据提交记录与当前正确答案重新计算每题得分与总分
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param submissionId path int true "提交ID"
// @Success 200 {object} util.Response{data=service.ExamResult}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/submissions/{submissionId}/result [get]
func (c *ExamController) Result(ctx *gin.Context) {
	courseID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	submissionID, ok := util.ParseID(ctx.Param("submissionId"))
	if !ok {
		util.BadRequest(ctx, "invalid submission id")
		return
	}

	viewer := service.Viewer{}
	if claims := util.GetUserFromContext(ctx); claims != nil {
		viewer.UserID = claims.UserID
		viewer.Role = claims.Role
	}

	result, err := c.ExamService.Result(ctx.Request.Context(), viewer, courseID, submissionID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) || errors.Is(err, util.ErrSubmissionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}
