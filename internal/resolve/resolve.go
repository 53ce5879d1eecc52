// Package resolve 从带链接的片段构造跨实体引用桩。
//
// 引用桩只携带引用处可见的事实；每次调用都构造新的值，互不共享。
package resolve

import (
	"regexp"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
	"github.com/John-Robertt/titlemeta/internal/normalize"
)

var (
	titleIDRE = regexp.MustCompile(`/title/tt(\d+)`)
	nameIDRE  = regexp.MustCompile(`/name/nm(\d+)`)
	bareIDRE  = regexp.MustCompile(`^(?:tt|nm)?(\d+)$`)
	prevRE    = regexp.MustCompile(`(?i)\bprev`)
	nextRE    = regexp.MustCompile(`(?i)\bnext\b`)
)

// ID 从链接目标中提取数字标识：/title/tt0412142/、/name/nm0000206/ 或裸数字。
func ID(href string) (string, error) {
	s := strings.TrimSpace(href)
	if s == "" {
		return "", normalize.ErrNotFound
	}
	for _, re := range []*regexp.Regexp{titleIDRE, nameIDRE, bareIDRE} {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1], nil
		}
	}
	return "", &normalize.FormatError{Field: domain.FieldEpisodeOf, Input: href, Reason: "no identifier in link target"}
}

// Series 为剧集的父剧构造引用桩 {title, year, kind}。
// kind 一律是 "tv series"（即使父剧是 mini series）。
func Series(link markup.Link, visible string) (domain.Ref, error) {
	id, err := ID(link.Href)
	if err != nil {
		return domain.Ref{}, err
	}
	text := visible
	if strings.TrimSpace(text) == "" {
		text = link.Text
	}
	// 可见文本通常是 `House M.D. (2004)`，也可能带引号；kind 不取自这里。
	h, err := normalize.DecomposeTitle(text, false)
	if err != nil {
		return domain.Ref{}, err
	}

	data := domain.Document{
		domain.FieldTitle: h.Title,
		domain.FieldKind:  string(domain.KindTVSeries),
	}
	switch {
	case h.Year > 0:
		data[domain.FieldYear] = h.Year
	case !h.Span.IsZero():
		data[domain.FieldYear] = h.Span.Start
	}
	return domain.Ref{ID: id, Data: data}, nil
}

// Adjacent 从剧集导航条的链接中读取上一集 / 下一集的标识。
// 第一集没有上一集、最后一集没有下一集，对应返回空串。
func Adjacent(links []markup.Link) (prev, next string) {
	for _, l := range links {
		id, err := ID(l.Href)
		if err != nil || !titleIDRE.MatchString(l.Href) {
			continue
		}
		switch {
		case prev == "" && prevRE.MatchString(l.Text):
			prev = id
		case next == "" && nextRE.MatchString(l.Text):
			next = id
		}
	}
	return prev, next
}
