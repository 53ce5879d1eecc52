package domain

// Document 是一次解析得到的结果文档：字段名 -> 规范化后的值。
//
// 约束：
// - 字段存在 <=> 源文本被定位且成功规范化；不存在空串/零值/nil 占位
// - 值类型只允许 string / int / float64 / []string / Ref
// - 返回给调用方后视为不可变；需要修改请先 Clone
type Document map[Field]any

// Ref 是跨实体引用桩：只携带 ID 与引用处可见的部分字段。
// 多处引用同一 ID 时各自独立（值语义），不共享对象。
type Ref struct {
	ID   string   `json:"id"`
	Data Document `json:"data"`
}

func (d Document) Has(f Field) bool {
	_, ok := d[f]
	return ok
}

func (d Document) String(f Field) (string, bool) {
	v, ok := d[f].(string)
	return v, ok
}

func (d Document) Int(f Field) (int, bool) {
	v, ok := d[f].(int)
	return v, ok
}

func (d Document) Float(f Field) (float64, bool) {
	v, ok := d[f].(float64)
	return v, ok
}

func (d Document) Strings(f Field) ([]string, bool) {
	v, ok := d[f].([]string)
	return v, ok
}

func (d Document) Ref(f Field) (Ref, bool) {
	v, ok := d[f].(Ref)
	return v, ok
}

// Kind 返回文档的 kind 字段；缺失时返回空串。
func (d Document) Kind() Kind {
	s, _ := d.String(FieldKind)
	return Kind(s)
}

// Clone 深拷贝（切片与引用桩都会复制）。
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func (r Ref) Clone() Ref {
	return Ref{ID: r.ID, Data: r.Data.Clone()}
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...)
	case Ref:
		return x.Clone()
	default:
		return v
	}
}

// Entries 把带注释列表字段（runtimes / color info）展开为结构化视图。
// 这是可选视图；扁平字符串仍是默认输出。
func (d Document) Entries(f Field) ([]Entry, bool) {
	if !f.IsAnnotated() {
		return nil, false
	}
	ss, ok := d.Strings(f)
	if !ok {
		return nil, false
	}
	out := make([]Entry, 0, len(ss))
	for _, s := range ss {
		out = append(out, ParseEntry(s))
	}
	return out, true
}

// Result 是解析的完整产出：文档 + 非致命诊断。
type Result struct {
	Data        Document     `json:"data"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
