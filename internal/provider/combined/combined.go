// Package combined 解析标题的 “combined details” 页面。
//
// 流程：markup.Parse -> Locate -> 每个字段一条规则（normalize / resolve）-> 组装 Result。
// 单个字段失败只会省略该字段并记录诊断；只有结构导航失败才返回 error。
package combined

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
	"github.com/John-Robertt/titlemeta/internal/normalize"
)

// Name 是该 parser 在注册表中的名称。
const Name = "combined"

// Parser 实现 provider.Parser。零值可用，无内部状态，可并发调用。
type Parser struct{}

func (Parser) Name() string { return Name }

// Parse 把一页 HTML 解析为结果文档。
func (Parser) Parse(html []byte) (domain.Result, error) {
	tree, err := markup.Parse(html)
	if err != nil {
		return domain.Result{
			Data:        domain.Document{},
			Diagnostics: []domain.Diagnostic{{Stage: domain.StageNavigate, Message: err.Error()}},
		}, err
	}

	page := Locate(tree)
	b := &builder{doc: domain.Document{}}
	for _, r := range rules {
		b.run(r, &page)
	}
	return domain.Result{Data: b.doc, Diagnostics: b.diags}, nil
}

// builder 收集一次解析的字段与诊断；每次 Parse 新建，不跨调用共享。
type builder struct {
	doc   domain.Document
	diags []domain.Diagnostic

	// header 在第一条规则中填充；后续规则据此做 kind 相关的取舍。
	header    normalize.Header
	hasHeader bool
}

// set 只在字段尚不存在时写入：先执行的（更强的）规则优先。
func (b *builder) set(f domain.Field, v any) bool {
	if _, ok := b.doc[f]; ok {
		return false
	}
	b.doc[f] = v
	return true
}

// note 把规则返回的错误转成诊断。ErrNotFound 静默忽略；
// errors.Join 合并的多个错误逐条记录。
func (b *builder) note(stage string, f domain.Field, err error) {
	if err == nil {
		return
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range j.Unwrap() {
			b.note(stage, f, e)
		}
		return
	}
	if errors.Is(err, normalize.ErrNotFound) {
		return
	}

	field := f
	msg := err.Error()
	var fe *normalize.FormatError
	if errors.As(err, &fe) {
		field = fe.Field
		msg = fe.Reason
		if fe.Input != "" {
			msg = fmt.Sprintf("%s (input %q)", fe.Reason, fe.Input)
		}
	}
	b.diags = append(b.diags, domain.Diagnostic{Stage: stage, Field: field, Message: msg})
}

// kind 返回已识别的 kind；标题头缺失时为空串（此时不做 kind 相关的取舍）。
func (b *builder) kind() domain.Kind {
	if !b.hasHeader {
		return ""
	}
	return b.header.Kind
}

func (b *builder) episodeFieldsAllowed() bool {
	k := b.kind()
	return k == "" || k == domain.KindEpisode
}

func (b *builder) seriesFieldsAllowed() bool {
	k := b.kind()
	return k == "" || k.IsSeries()
}

// run 执行一条规则；规则内的 panic 只影响该字段。
func (b *builder) run(r rule, p *Page) {
	defer func() {
		if v := recover(); v != nil {
			b.diags = append(b.diags, domain.Diagnostic{
				Stage:   r.stage,
				Field:   r.field,
				Message: fmt.Sprintf("rule panicked: %v", v),
			})
		}
	}()
	r.apply(b, p)
}
