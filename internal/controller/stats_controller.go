package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/service"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

type StatsController struct {
	Service *service.StatsService
}

func NewStatsController(s *service.StatsService) *StatsController {
	return &StatsController{Service: s}
}

// @Summary 答题统计报表
// @Description 四个板块一次返回:错题排行、合集表现、用户榜、合集内用户明细
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param questionPage query int false "错题排行页码"
// @Param questionLimit query int false "错题排行每页条数"
// @Param bundlePage query int false "合集板块页码"
// @Param bundleLimit query int false "合集板块每页条数"
// @Param userLimit query int false "用户榜条数上限"
// @Param bundleUserPage query int false "合集内用户明细页码"
// @Param bundleUserLimit query int false "每个合集展示的用户数上限"
// @Param category query string false "按分类筛选错题排行和合集表现"
// @Param difficulty query string false "按难度筛选错题排行和合集表现"
// @Param topicId query int false "按知识点筛选错题排行"
// @Success 200 {object} util.Response{data=model.QuizAdminStats}
// @Router /api/admin/quiz/stats [get]
func (c *StatsController) AdminStats(ctx *gin.Context) {
	params := service.StatsParams{
		QuestionPage:    util.ParsePositiveInt(ctx.Query("questionPage"), 0),
		QuestionLimit:   util.ParsePositiveInt(ctx.Query("questionLimit"), 0),
		BundlePage:      util.ParsePositiveInt(ctx.Query("bundlePage"), 0),
		BundleLimit:     util.ParsePositiveInt(ctx.Query("bundleLimit"), 0),
		UserLimit:       util.ParsePositiveInt(ctx.Query("userLimit"), 0),
		BundleUserPage:  util.ParsePositiveInt(ctx.Query("bundleUserPage"), 0),
		BundleUserLimit: util.ParsePositiveInt(ctx.Query("bundleUserLimit"), 0),
		Category:        model.QuizCategory(ctx.Query("category")),
		Difficulty:      model.QuizDifficulty(ctx.Query("difficulty")),
		TopicID:         uint(util.ParsePositiveInt(ctx.Query("topicId"), 0)),
	}
	stats, err := c.Service.AdminStats(params)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
