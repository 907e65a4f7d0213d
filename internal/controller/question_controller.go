package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/service"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

type QuestionController struct {
	Service *service.QuestionService
	Storage *service.StorageService
}

func NewQuestionController(s *service.QuestionService, storage *service.StorageService) *QuestionController {
	return &QuestionController{Service: s, Storage: storage}
}

func questionListParams(ctx *gin.Context) repository.QuestionListParams {
	return repository.QuestionListParams{
		Page:       util.ParsePositiveInt(ctx.Query("page"), 1),
		Limit:      util.ParsePositiveInt(ctx.Query("limit"), 20),
		Search:     ctx.Query("search"),
		Type:       model.QuestionType(ctx.Query("type")),
		Category:   model.QuizCategory(ctx.Query("category")),
		Difficulty: model.QuizDifficulty(ctx.Query("difficulty")),
		TopicID:    util.MustParseUint(ctx.Query("topicId")),
	}
}

// @Summary 题库列表
// @Tags 题库管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Param search query string false "按题干模糊搜索"
// @Param type query string false "题型 MULTIPLE/SHORT"
// @Param category query string false "类别"
// @Param difficulty query string false "难度"
// @Param topicId query int false "主题ID"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	params := questionListParams(ctx)
	questions, total, err := c.Service.List(params)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(questions, total, params.Page, params.Limit))
}

// @Summary 题目详情
// @Tags 题库管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	question, err := c.Service.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary 创建题目
// @Tags 题库管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionInput true "题目内容"
// @Success 201 {object} util.Response
// @Router /api/admin/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	var input service.QuestionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.Service.Create(input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary 更新题目
// @Tags 题库管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionInput true "题目内容"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	var input service.QuestionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.Service.Update(util.MustParseUint(ctx.Param("id")), input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary 删除题目
// @Tags 题库管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 上传题目配图
// @Tags 题库管理
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "图片文件"
// @Success 201 {object} util.Response
// @Router /api/admin/questions/upload-image [post]
func (c *QuestionController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image file is required")
		return
	}
	url, err := c.Storage.SaveQuestionImage(ctx.Request.Context(), file)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"url": url})
}
