package domain

import "strings"

const (
	contextSep = ":"
	noteSep    = "::"
)

// Entry 是带注释列表项的结构化形态：[Context:]Value[::Note]。
type Entry struct {
	Context string `json:"context,omitempty"`
	Value   string `json:"value"`
	Note    string `json:"note,omitempty"`
}

// String 编码回扁平形态（与 ParseEntry 互逆）。
func (e Entry) String() string {
	var b strings.Builder
	if e.Context != "" {
		b.WriteString(e.Context)
		b.WriteString(contextSep)
	}
	b.WriteString(e.Value)
	if e.Note != "" {
		b.WriteString(noteSep)
		b.WriteString(e.Note)
	}
	return b.String()
}

// ParseEntry 拆分扁平编码。
//
// note 以第一个 "::" 为界，原样保留（note 内部可能还有 ':'）；
// context 只在 "::" 之前的主体部分里找单个 ':'。
func ParseEntry(s string) Entry {
	var e Entry
	body := s
	if i := strings.Index(s, noteSep); i >= 0 {
		body = s[:i]
		e.Note = s[i+len(noteSep):]
	}
	if i := strings.Index(body, contextSep); i >= 0 {
		e.Context = body[:i]
		body = body[i+len(contextSep):]
	}
	e.Value = body
	return e
}
