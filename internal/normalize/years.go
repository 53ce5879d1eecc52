package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
)

// YearRange 是剧集的播出年份区间。Start==0 表示不存在。
type YearRange struct {
	Start int
	End   int
	Open  bool
}

func (r YearRange) IsZero() bool { return r.Start == 0 }

// String 输出 "<start>-" 或 "<start>-<end>"。
func (r YearRange) String() string {
	if r.Open || r.End == 0 {
		return fmt.Sprintf("%d-", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

var yearsSectionRE = regexp.MustCompile(`(?i)^(\d{4})\s*(?:[-–—]\s*(\d{4}|present)?)?$`)

// ParseYearRange 解析 “Years” 区块文本，例如 "2004–2012"、"2005–"、"2005 - present"。
// 单个年份视为起止同年（"2001" -> 2001-2001）。
func ParseYearRange(raw string) (YearRange, error) {
	s := markup.NormSpace(raw)
	if s == "" {
		return YearRange{}, ErrNotFound
	}
	m := yearsSectionRE.FindStringSubmatch(s)
	if m == nil {
		return YearRange{}, formatErr(domain.FieldSeriesYrs, raw, "not a year range")
	}
	r := YearRange{}
	r.Start, _ = strconv.Atoi(m[1])
	switch {
	case m[2] == "" && !hasDash(s):
		r.End = r.Start
	case m[2] == "" || strings.EqualFold(m[2], "present"):
		r.Open = true
	default:
		r.End, _ = strconv.Atoi(m[2])
	}
	if r.End != 0 && r.End < r.Start {
		return YearRange{}, formatErr(domain.FieldSeriesYrs, raw, "end year before start year")
	}
	return r, nil
}

func hasDash(s string) bool {
	for _, r := range s {
		switch r {
		case '-', '–', '—':
			return true
		}
	}
	return false
}

// Year 返回标题头中的单一年份字段。
//
// 剧集标题头若只给出年份区间（没有单一年份），则不产生 year，
// 其事实由 series years 承载。
func Year(h Header) (int, error) {
	if h.Year > 0 {
		return h.Year, nil
	}
	return 0, ErrNotFound
}

// SeriesYears 计算剧集的 series years。优先级：标题头区间 > Years 区块 > mini series 单年。
// section 为空表示页面没有 Years 区块。
func SeriesYears(h Header, section string) (string, error) {
	if !h.Kind.IsSeries() {
		return "", ErrNotFound
	}
	if !h.Span.IsZero() {
		return h.Span.String(), nil
	}
	if section != "" {
		r, err := ParseYearRange(section)
		if err == nil {
			return r.String(), nil
		}
		if h.Kind != domain.KindTVMiniSeries || h.Year == 0 {
			return "", err
		}
	}
	if h.Kind == domain.KindTVMiniSeries && h.Year > 0 {
		return YearRange{Start: h.Year, End: h.Year}.String(), nil
	}
	return "", ErrNotFound
}
