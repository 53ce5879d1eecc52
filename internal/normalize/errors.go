// Package normalize 为每个语义字段提供一条规范化规则。
//
// 约束：
// - 规则都是纯函数，任何输入都不 panic
// - ErrNotFound 表示“该字段不存在”（静默省略，不产生诊断）
// - 其它错误一律是 *FormatError（省略该字段并记录诊断，不影响其它字段）
package normalize

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/titlemeta/internal/domain"
)

// ErrNotFound 表示源文本中没有该字段（或其子模式）。
var ErrNotFound = errors.New("normalize: not found")

// FormatError 表示源文本已定位，但不符合字段的文本语法。
type FormatError struct {
	Field  domain.Field
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s (input %q)", e.Field, e.Reason, e.Input)
}

func formatErr(f domain.Field, input, reason string) error {
	return &FormatError{Field: f, Input: input, Reason: reason}
}

// IsFormatError 判断 err 是否为字段级语法错误。
func IsFormatError(err error) bool {
	var e *FormatError
	return errors.As(err, &e)
}
