package service

import (
	"strconv"
	"strings"

	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

// Grade 判定一次作答是否正确,不产生任何副作用
//
// 客观题(MULTIPLE):去除首尾空白后,与正确选项的 ID 文本或选项内容做
// 精确比较(区分大小写)。题目没有标记正确选项时返回 ErrNoCorrectChoice,
// 属于数据完整性问题而非答错。
// 主观题(SHORT):去除首尾空白后与标准答案做不区分大小写的比较。
func Grade(question *model.Question, answer string) (bool, error) {
	trimmed := strings.TrimSpace(answer)

	switch question.Type {
	case model.TypeMultiple:
		var correct *model.Choice
		for i := range question.Choices {
			if question.Choices[i].IsCorrect {
				correct = &question.Choices[i]
				break
			}
		}
		if correct == nil {
			return false, util.ErrNoCorrectChoice
		}
		if trimmed == strconv.FormatUint(uint64(correct.ID), 10) {
			return true, nil
		}
		return trimmed == correct.Content, nil
	case model.TypeShort:
		return strings.EqualFold(trimmed, strings.TrimSpace(question.CorrectAnswer)), nil
	default:
		return false, util.ErrInvalidQuestionType
	}
}
