package service

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"onlinecourse_backend/internal/util"
	"sort"
	"strconv"
	"strings"
)

// SubmitExamRequest 考试提交的结构化请求
type SubmitExamRequest struct {
	ChoiceIDs []uint `json:"choiceIds"`
}

// ExtractAnswers 从表单中提取所有 choice_ 前缀字段的值。
// 任一值不是整数时返回 util.ErrMalformedAnswer，整个提交作废；
// 合法整数但不可能对应选项的值（<= 0 或超出 uint32）直接丢弃。
// 字段按名称排序遍历。同名字段重复提交时保留全部值，而不是只取最后一个，
// 同一 ID 出现多次时会重复出现，由提交阶段去重。
func ExtractAnswers(form url.Values) ([]uint, error) {
	keys := make([]string, 0, len(form))
	for key := range form {
		if strings.HasPrefix(key, util.ChoiceFieldPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	answers := make([]uint, 0, len(keys))
	for _, key := range keys {
		for _, value := range form[key] {
			id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return nil, fmt.Errorf("%w: %s=%q", util.ErrMalformedAnswer, key, value)
			}
			if err != nil || id <= 0 || id > math.MaxUint32 {
				continue
			}
			answers = append(answers, uint(id))
		}
	}
	return answers, nil
}
