package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/kmshistory/kmshistory-v2/internal/service"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

type TopicController struct {
	Service *service.TopicService
}

func NewTopicController(s *service.TopicService) *TopicController {
	return &TopicController{Service: s}
}

// @Summary 获取主题标签列表
// @Tags 主题
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/topics [get]
func (c *TopicController) List(ctx *gin.Context) {
	topics, err := c.Service.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, topics)
}

// @Summary 获取主题详情
// @Tags 主题
// @Produce json
// @Param id path int true "主题ID"
// @Success 200 {object} util.Response
// @Router /api/topics/{id} [get]
func (c *TopicController) Get(ctx *gin.Context) {
	topic, err := c.Service.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, topic)
}

// @Summary 创建主题
// @Tags 主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.TopicInput true "主题内容"
// @Success 201 {object} util.Response
// @Router /api/admin/topics [post]
func (c *TopicController) Create(ctx *gin.Context) {
	var input service.TopicInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	topic, err := c.Service.Create(input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, topic)
}

// @Summary 更新主题
// @Tags 主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Param body body service.TopicInput true "主题内容"
// @Success 200 {object} util.Response
// @Router /api/admin/topics/{id} [put]
func (c *TopicController) Update(ctx *gin.Context) {
	var input service.TopicInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	topic, err := c.Service.Update(util.MustParseUint(ctx.Param("id")), input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, topic)
}

// @Summary 删除主题
// @Tags 主题
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Success 200 {object} util.Response
// @Router /api/admin/topics/{id} [delete]
func (c *TopicController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
