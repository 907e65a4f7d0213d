package util

import "errors"

// 错误分四类：校验(400)、未找到(404)、冲突(409)、数据完整性(500)。
// controller 按 errors.Is 映射状态码，写操作出错时不落任何部分状态。
var (
	// 校验错误
	ErrQuestionTextRequired  = errors.New("question text must not be empty")
	ErrCorrectAnswerRequired = errors.New("correct answer must not be empty")
	ErrInvalidQuestionType   = errors.New("invalid question type")
	ErrInvalidCategory       = errors.New("invalid quiz category")
	ErrInvalidDifficulty     = errors.New("invalid quiz difficulty")
	ErrTooFewChoices         = errors.New("multiple choice question requires at least 2 choices")
	ErrNoCorrectChoiceFlag   = errors.New("multiple choice question requires at least one correct choice")
	ErrUnknownTopic          = errors.New("topic id does not exist")
	ErrTopicNameRequired     = errors.New("topic name must not be empty")
	ErrBundleTitleRequired   = errors.New("bundle title must not be empty")
	ErrInvalidProgressCounts = errors.New("correct answers must be between 0 and total questions")

	// 未找到
	ErrQuestionNotFound = errors.New("question not found")
	ErrBundleNotFound   = errors.New("bundle not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrNoQuestionForFilter = errors.New("no question matches the given filters")

	// 冲突
	ErrTopicNameTaken     = errors.New("topic name already exists")
	ErrTopicInUse         = errors.New("topic is still referenced by questions")
	ErrQuestionHasHistory = errors.New("question has recorded attempts and cannot be deleted")

	// 数据完整性（系统故障，不是用户答错）
	ErrNoCorrectChoice = errors.New("multiple choice question has no correct choice recorded")

	// 图片上传
	ErrImageEmpty        = errors.New("image file is empty")
	ErrImageTooLarge     = errors.New("image exceeds the maximum allowed size")
	ErrImageBadExtension = errors.New("image extension not allowed")
)
