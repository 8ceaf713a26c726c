package service

import "onlinecourse_backend/internal/model"

// IsGetScore 判断一道题是否得分：该题全部正确选项都被选中即得分。
// 注意：不检查是否同时选了错误选项，全选也会得满分。
func IsGetScore(choices []model.Choice, selected []uint) bool {
	selectedSet := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		selectedSet[id] = struct{}{}
	}

	correctTotal, correctSelected := 0, 0
	for _, c := range choices {
		if !c.IsCorrect {
			continue
		}
		correctTotal++
		if _, ok := selectedSet[c.ID]; ok {
			correctSelected++
		}
	}
	return correctTotal == correctSelected
}

type QuestionResult struct {
	QuestionID      uint           `json:"questionId"`
	Content         string         `json:"content"`
	Grade           int            `json:"grade"`
	CorrectChoices  []model.Choice `json:"correctChoices"`
	SelectedChoices []model.Choice `json:"selectedChoices"`
	IsCorrect       bool           `json:"isCorrect"`
	Awarded         int            `json:"awarded"`
}

// GradeQuestions 按题目逐一评分。choicesByQuestion 为各题当前的全部选项，
// selected 为提交中的选项（可能包含其他题目或其他课程的选项，按题目过滤）。
func GradeQuestions(questions []model.Question, choicesByQuestion map[uint][]model.Choice, selected []model.Choice) ([]QuestionResult, int) {
	selectedByQuestion := make(map[uint][]model.Choice)
	for _, c := range selected {
		selectedByQuestion[c.QuestionID] = append(selectedByQuestion[c.QuestionID], c)
	}

	results := make([]QuestionResult, 0, len(questions))
	total := 0
	for _, q := range questions {
		choices := choicesByQuestion[q.ID]
		picked := selectedByQuestion[q.ID]

		ids := make([]uint, len(picked))
		for i, c := range picked {
			ids[i] = c.ID
		}

		correct := make([]model.Choice, 0)
		for _, c := range choices {
			if c.IsCorrect {
				correct = append(correct, c)
			}
		}

		r := QuestionResult{
			QuestionID:      q.ID,
			Content:         q.Content,
			Grade:           q.Grade,
			CorrectChoices:  correct,
			SelectedChoices: picked,
			IsCorrect:       IsGetScore(choices, ids),
		}
		if r.SelectedChoices == nil {
			r.SelectedChoices = []model.Choice{}
		}
		if r.IsCorrect {
			r.Awarded = q.Grade
			total += q.Grade
		}
		results = append(results, r)
	}
	return results, total
}

func groupChoices(choices []model.Choice) map[uint][]model.Choice {
	out := make(map[uint][]model.Choice)
	for _, c := range choices {
		out[c.QuestionID] = append(out[c.QuestionID], c)
	}
	return out
}
