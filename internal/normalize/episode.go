package normalize

import (
	"regexp"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
)

var (
	airSeasonRE  = regexp.MustCompile(`(?i)\(\s*season\s+(\d+)\s*,\s*episode\s+(\d+)\s*\)`)
	positionRE   = regexp.MustCompile(`(?i)\bepisode\s+(\d+)\s+of\s+(\d+)\b`)
	digitsOnlyRE = regexp.MustCompile(`^\d+$`)
	digitRE      = regexp.MustCompile(`\d`)
)

// EpisodeCode 解析标题头中的剧集编号 "#3.10"（季、集均为正整数）。
func EpisodeCode(raw string) (season, episode int, err error) {
	m := epCodeRE.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, ErrNotFound
	}
	s, ok1 := positive(m[1])
	e, ok2 := positive(m[2])
	if !ok1 || !ok2 {
		return 0, 0, formatErr(domain.FieldSeason, raw, "season and episode must be positive")
	}
	return s, e, nil
}

// AirDate 返回首映日期原文（第一个 "(" 之前的部分），不做日期格式转换。
func AirDate(raw string) (string, error) {
	s := markup.NormSpace(raw)
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return "", ErrNotFound
	}
	if !digitRE.MatchString(s) {
		return "", formatErr(domain.FieldAirDate, raw, "no day or year in date")
	}
	return s, nil
}

// SeasonEpisode 读取首映日期后的 "(Season 3, Episode 10)"。
func SeasonEpisode(raw string) (season, episode int, err error) {
	m := airSeasonRE.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, ErrNotFound
	}
	s, ok1 := positive(m[1])
	e, ok2 := positive(m[2])
	if !ok1 || !ok2 {
		return 0, 0, formatErr(domain.FieldSeason, m[0], "season and episode must be positive")
	}
	return s, e, nil
}

// EpisodePosition 从剧集导航条 "Episode 175 of 176" 读取该集在全剧中的序号与全剧集数。
func EpisodePosition(raw string) (number, total int, err error) {
	m := positionRE.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, ErrNotFound
	}
	n, ok1 := positive(m[1])
	t, ok2 := positive(m[2])
	if !ok1 || !ok2 || n > t {
		return 0, 0, formatErr(domain.FieldEpisodeNumber, m[0], "episode position out of range")
	}
	return n, t, nil
}

// Seasons 返回季标题（文档顺序）。"Unknown" 统一写作小写 "unknown"。
func Seasons(links []markup.Link) ([]string, error) {
	var out []string
	for _, l := range links {
		t := markup.NormSpace(l.Text)
		if t == "" || moreLinkRE.MatchString(t) {
			continue
		}
		if strings.EqualFold(t, "unknown") {
			t = "unknown"
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// NumberOfSeasons 只统计数字标题的季，"unknown" 分组不计入。
func NumberOfSeasons(titles []string) (int, error) {
	n := 0
	for _, t := range titles {
		if digitsOnlyRE.MatchString(t) {
			n++
		}
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}
