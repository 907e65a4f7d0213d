package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/service"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

// BundleController 管理端的合集维护接口,会员端浏览走 QuizController
type BundleController struct {
	Service *service.BundleService
}

func NewBundleController(s *service.BundleService) *BundleController {
	return &BundleController{Service: s}
}

func bundleListParams(ctx *gin.Context) repository.BundleListParams {
	return repository.BundleListParams{
		Page:       util.ParsePositiveInt(ctx.Query("page"), 1),
		Limit:      util.ParsePositiveInt(ctx.Query("limit"), 20),
		Search:     ctx.Query("search"),
		Category:   model.QuizCategory(ctx.Query("category")),
		Difficulty: model.QuizDifficulty(ctx.Query("difficulty")),
	}
}

// @Summary 合集列表(含未上架)
// @Tags 合集管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Param search query string false "按标题模糊搜索"
// @Param category query string false "类别"
// @Param difficulty query string false "难度"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/bundles [get]
func (c *BundleController) List(ctx *gin.Context) {
	params := bundleListParams(ctx)
	bundles, total, err := c.Service.List(params)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(bundles, total, params.Page, params.Limit))
}

// @Summary 合集详情(含成员题目)
// @Tags 合集管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "合集ID"
// @Success 200 {object} util.Response
// @Router /api/admin/bundles/{id} [get]
func (c *BundleController) Get(ctx *gin.Context) {
	detail, err := c.Service.GetDetail(util.MustParseUint(ctx.Param("id")), 0)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 创建合集
// @Tags 合集管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.BundleInput true "合集内容"
// @Success 201 {object} util.Response
// @Router /api/admin/bundles [post]
func (c *BundleController) Create(ctx *gin.Context) {
	var input service.BundleInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	bundle, err := c.Service.Create(input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, bundle)
}

// @Summary 更新合集
// @Tags 合集管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "合集ID"
// @Param body body service.BundleInput true "合集内容"
// @Success 200 {object} util.Response
// @Router /api/admin/bundles/{id} [put]
func (c *BundleController) Update(ctx *gin.Context) {
	var input service.BundleInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	bundle, err := c.Service.Update(util.MustParseUint(ctx.Param("id")), input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, bundle)
}

// @Summary 删除合集
// @Tags 合集管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "合集ID"
// @Success 200 {object} util.Response
// @Router /api/admin/bundles/{id} [delete]
func (c *BundleController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
