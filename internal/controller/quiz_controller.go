package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/repository"
	"github.com/kmshistory/kmshistory-v2/internal/service"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

// QuizController 会员端答题接口。题目一律以脱敏视图返回,
// 答案只在提交判分的响应里出现
type QuizController struct {
	Quiz    *service.QuizService
	Bundles *service.BundleService
}

func NewQuizController(quiz *service.QuizService, bundles *service.BundleService) *QuizController {
	return &QuizController{Quiz: quiz, Bundles: bundles}
}

func viewerID(ctx *gin.Context) uint {
	if user := util.GetUserFromContext(ctx); user != nil {
		return user.UserID
	}
	return 0
}

// @Summary 随机抽一题
// @Tags 答题
// @Produce json
// @Param category query string false "类别"
// @Param difficulty query string false "难度"
// @Param topicId query int false "主题ID"
// @Param bundleId query int false "限定在某个上架合集内"
// @Success 200 {object} util.Response
// @Router /api/quiz/random [get]
func (c *QuizController) RandomQuestion(ctx *gin.Context) {
	params := repository.QuestionListParams{
		Category:   model.QuizCategory(ctx.Query("category")),
		Difficulty: model.QuizDifficulty(ctx.Query("difficulty")),
		TopicID:    util.MustParseUint(ctx.Query("topicId")),
		BundleID:   util.MustParseUint(ctx.Query("bundleId")),
	}
	question, err := c.Quiz.RandomQuestion(params)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, service.NewPublicQuestion(*question))
}

// @Summary 提交作答并判分
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SubmitInput true "作答内容"
// @Success 200 {object} util.Response
// @Router /api/quiz/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var input service.SubmitInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	result, err := c.Quiz.SubmitAnswer(user.UserID, input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 上架合集列表(登录时附带本人进度)
// @Tags 答题
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Param search query string false "按标题模糊搜索"
// @Param category query string false "类别"
// @Param difficulty query string false "难度"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/quiz/bundles [get]
func (c *QuizController) ListBundles(ctx *gin.Context) {
	params := bundleListParams(ctx)
	bundles, total, err := c.Bundles.ListForUser(params, viewerID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(bundles, total, params.Page, params.Limit))
}

// @Summary 合集详情(登录时附带进度与作答记录)
// @Tags 答题
// @Produce json
// @Param id path int true "合集ID"
// @Success 200 {object} util.Response
// @Router /api/quiz/bundles/{id} [get]
func (c *QuizController) BundleDetail(ctx *gin.Context) {
	detail, err := c.Bundles.GetDetail(util.MustParseUint(ctx.Param("id")), viewerID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if !detail.IsActive {
		util.NotFound(ctx)
		return
	}

	questions := make([]service.PublicQuestion, 0, len(detail.Questions))
	for _, q := range detail.Questions {
		questions = append(questions, service.NewPublicQuestion(q))
	}
	util.Success(ctx, gin.H{
		"bundle":    detail.QuizBundle,
		"questions": questions,
		"progress":  detail.Progress,
		"history":   detail.History,
	})
}

// @Summary 写入合集游玩进度
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "合集ID"
// @Param body body service.ProgressInput true "进度快照"
// @Success 200 {object} util.Response
// @Router /api/quiz/bundles/{id}/progress [put]
func (c *QuizController) PutProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var input service.ProgressInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	progress, err := c.Quiz.UpsertProgress(user.UserID, util.MustParseUint(ctx.Param("id")), input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 重置合集进度与作答记录
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path int true "合集ID"
// @Success 200 {object} util.Response
// @Router /api/quiz/bundles/{id}/progress [delete]
func (c *QuizController) ResetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	if err := c.Quiz.ResetProgress(user.UserID, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 错题回顾
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param bundleId query int false "只看某合集"
// @Param topicId query int false "只看某主题"
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/quiz/wrong-answers [get]
func (c *QuizController) WrongAnswers(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	params := repository.WrongAnswerParams{
		UserID:   user.UserID,
		BundleID: util.MustParseUint(ctx.Query("bundleId")),
		TopicID:  util.MustParseUint(ctx.Query("topicId")),
		Page:     util.ParsePositiveInt(ctx.Query("page"), 1),
		Limit:    util.ParsePositiveInt(ctx.Query("limit"), 20),
	}
	rows, total, err := c.Quiz.WrongAnswers(params)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(rows, total, params.Page, params.Limit))
}

// @Summary 我的答题统计
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/me/stats [get]
func (c *QuizController) MyStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	stats, err := c.Quiz.MyStats(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 我游玩过的合集
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/me/bundles [get]
func (c *QuizController) PlayHistory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	rows, err := c.Quiz.PlayHistory(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
