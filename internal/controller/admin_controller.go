package controller

import (
	"errors"
	"io"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	AdminService   *service.AdminService
	StorageService *service.StorageService
}

func NewAdminController(adminService *service.AdminService, storageService *service.StorageService) *AdminController {
	return &AdminController{
		AdminService:   adminService,
		StorageService: storageService,
	}
}

// respondAdminError 将服务层的哨兵错误映射为 HTTP 状态码
func respondAdminError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrChoiceNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrInvalidDate):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.BadRequest(ctx, "invalid "+name)
	}
	return id, ok
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response
// @Router /api/admin/courses [post]
func (c *AdminController) CreateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.AdminService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.CourseRequest true "课程信息"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id} [put]
func (c *AdminController) UpdateCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.AdminService.UpdateCourse(ctx.Request.Context(), id, req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// UploadCourseImage godoc
// @Summary 上传课程封面
// @Tags 管理
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param image formData file true "封面图片"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id}/image [post]
func (c *AdminController) UploadCourseImage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image file is required")
		return
	}
	if !util.HasAllowedExtension(fileHeader.Filename, util.AllowedImageExtensions) {
		util.BadRequest(ctx, "unsupported image extension")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	url, err := c.StorageService.UploadCourseImage(ctx.Request.Context(), fileHeader.Filename, file, fileHeader.Size, mimeType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	course, err := c.AdminService.SetCourseImage(ctx.Request.Context(), id, url)
	if err != nil {
		if rmErr := c.StorageService.RemoveCourseImage(ctx.Request.Context(), url); rmErr != nil {
			logger.Log.Warn("remove orphaned course image failed", zap.String("image", url), zap.Error(rmErr))
		}
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程（级联删除课时、题目、报名与提交）
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id} [delete]
func (c *AdminController) DeleteCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AdminService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddCourseInstructor godoc
// @Summary 为课程添加讲师
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param instructorId path int true "讲师ID"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id}/instructors/{instructorId} [post]
func (c *AdminController) AddCourseInstructor(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	instructorID, ok := pathID(ctx, "instructorId")
	if !ok {
		return
	}
	course, err := c.AdminService.AddCourseInstructor(ctx.Request.Context(), id, instructorID)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// CreateLesson godoc
// @Summary 创建课时
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.LessonRequest true "课时信息"
// @Success 201 {object} util.Response
// @Router /api/admin/courses/{id}/lessons [post]
func (c *AdminController) CreateLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.AdminService.CreateLesson(ctx.Request.Context(), id, req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// @Summary 删除课时
// @Tags 管理
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Router /api/admin/lessons/{id} [delete]
func (c *AdminController) DeleteLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AdminService.DeleteLesson(ctx.Request.Context(), id); err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateQuestion godoc
// @Summary 创建考试题目（可内联选项）
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response
// @Router /api/admin/courses/{id}/questions [post]
func (c *AdminController) CreateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.AdminService.CreateQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary 删除题目及其选项
// @Tags 管理
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Router /api/admin/questions/{id} [delete]
func (c *AdminController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AdminService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 查看题目选项（含正确答案）
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Router /api/admin/questions/{id}/choices [get]
func (c *AdminController) ListChoices(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	choices, err := c.AdminService.ListChoices(ctx.Request.Context(), id)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, choices)
}

// @Summary 为题目添加选项
// @Tags 管理
// @Accept json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Param body body service.ChoiceRequest true "选项"
// @Router /api/admin/questions/{id}/choices [post]
func (c *AdminController) CreateChoice(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.ChoiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	choice, err := c.AdminService.CreateChoice(ctx.Request.Context(), id, req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Created(ctx, choice)
}

// @Summary 修改选项内容或正确性
// @Tags 管理
// @Accept json
// @Security ApiKeyAuth
// @Param id path int true "选项ID"
// @Param body body service.ChoiceUpdateRequest true "修改内容"
// @Router /api/admin/choices/{id} [patch]
func (c *AdminController) UpdateChoice(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.ChoiceUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	choice, err := c.AdminService.UpdateChoice(ctx.Request.Context(), id, req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, choice)
}

// @Summary 删除选项
// @Tags 管理
// @Security ApiKeyAuth
// @Param id path int true "选项ID"
// @Router /api/admin/choices/{id} [delete]
func (c *AdminController) DeleteChoice(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AdminService.DeleteChoice(ctx.Request.Context(), id); err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 创建讲师档案
// @Tags 管理
// @Accept json
// @Security ApiKeyAuth
// @Param body body service.InstructorRequest true "讲师信息"
// @Router /api/admin/instructors [post]
func (c *AdminController) CreateInstructor(ctx *gin.Context) {
	var req service.InstructorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	instructor, err := c.AdminService.CreateInstructor(ctx.Request.Context(), req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Created(ctx, instructor)
}

// @Summary 创建学员档案
// @Tags 管理
// @Accept json
// @Security ApiKeyAuth
// @Param body body service.LearnerRequest true "学员信息"
// @Router /api/admin/learners [post]
func (c *AdminController) CreateLearner(ctx *gin.Context) {
	var req service.LearnerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	learner, err := c.AdminService.CreateLearner(ctx.Request.Context(), req)
	if err != nil {
		respondAdminError(ctx, err)
		return
	}
	util.Created(ctx, learner)
}

// ListSubmissions godoc
// @Summary 提交记录列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query int false "课程ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/submissions [get]
func (c *AdminController) ListSubmissions(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Query("courseId"))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	rows, total, err := c.AdminService.ListSubmissions(ctx.Request.Context(), courseID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if page < 1 {
		page = 1
	}
	util.Success(ctx, util.PageResponse{
		List:  rows,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
