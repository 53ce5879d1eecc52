package domain

// PageOutput 是单页解析结果的对外 JSON 形态（parse 的 stdout 与 batch 的缓存文件共用）。
type PageOutput struct {
	File        string            `json:"file"`
	Data        Document          `json:"data"`
	Diagnostics []Diagnostic      `json:"diagnostics"`
	Entries     map[Field][]Entry `json:"entries,omitempty"`
}

// NewPageOutput 组装输出；withEntries 为 true 时附带带注释列表字段的结构化视图。
func NewPageOutput(file string, res Result, withEntries bool) PageOutput {
	out := PageOutput{
		File:        file,
		Data:        res.Data,
		Diagnostics: res.Diagnostics,
	}
	if out.Data == nil {
		out.Data = Document{}
	}
	if out.Diagnostics == nil {
		out.Diagnostics = []Diagnostic{}
	}
	if !withEntries {
		return out
	}
	for _, f := range Fields {
		es, ok := res.Data.Entries(f)
		if !ok {
			continue
		}
		if out.Entries == nil {
			out.Entries = make(map[Field][]Entry)
		}
		out.Entries[f] = es
	}
	return out
}
