package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

const (
	ErrCodeNavigateFailed    = "navigate_failed"
	ErrCodeIOFailed          = "io_failed"
	ErrCodeParserUnknown     = "parser_unknown"
	ErrCodeParseFailed       = "parse_failed"
	ErrCodeCacheLocked       = "cache_locked"
	ErrCodeCanceled          = "canceled"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// RunReport 是 batch 对外稳定输出（report.json / stdout JSON）的结构。
type RunReport struct {
	RunID  string `json:"run_id"`
	Path   string `json:"path"`
	DryRun bool   `json:"dry_run"`
	Parser string `json:"parser"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Partial   int `json:"partial"`
	Failed    int `json:"failed"`
}

// ItemResult 是单个页面的处理结果。
//
// partial 表示文档已产出但存在字段级诊断（不算失败）。
type ItemResult struct {
	Page   string `json:"page"`
	Title  string `json:"title"`
	Kind   string `json:"kind"`
	Fields int    `json:"fields"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Diagnostics []string `json:"diagnostics"`
	Outputs     []string `json:"outputs"`
}

// Finalize：
// 1) 时间统一为 UTC
// 2) items 按 page 字典序稳定排序；page=="" 的合成条目排最后
// 3) summary 由 items 计算
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Page
		b := r.Items[j].Page
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusProcessed:
			s.Processed++
		case StatusPartial:
			s.Partial++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 集中约束输出稳定性：nil 切片输出为 []。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	a.Items = append(make([]ItemResult, 0, len(r.Items)), r.Items...)
	for i := range a.Items {
		if a.Items[i].Diagnostics == nil {
			a.Items[i].Diagnostics = []string{}
		}
		if a.Items[i].Outputs == nil {
			a.Items[i].Outputs = []string{}
		}
	}
	return json.Marshal(a)
}
