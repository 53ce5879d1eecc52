package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
)

// ErrUnknownParser 表示请求的 parser 没有注册。
var ErrUnknownParser = errors.New("未知 parser")

// Error 是 parser 阶段的可追溯错误。
// 上层可以据此把失败归类为 parser_unknown / navigate_failed，并写入 report。
type Error struct {
	Parser string // parser name（小写）
	Stage  string // "lookup" 或 "parse"
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("parser=%s stage=%s: %v", e.Parser, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ParseWith 按名称选择 parser 并解析一页。
//
// 导航失败时 Result 仍然有效（空文档 + 一条 navigate 诊断），error 为 *Error 包装的原始错误。
func ParseWith(reg Registry, name string, html []byte) (domain.Result, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	p, ok := reg.Get(name)
	if !ok {
		return domain.Result{Data: domain.Document{}}, &Error{Parser: name, Stage: "lookup", Err: fmt.Errorf("%w：%q", ErrUnknownParser, name)}
	}
	res, err := p.Parse(html)
	if err != nil {
		return res, &Error{Parser: name, Stage: "parse", Err: err}
	}
	return res, nil
}
