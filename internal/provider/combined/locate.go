package combined

import (
	"regexp"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/markup"
)

// 区块标签（规范名）。
const (
	labelGenres   = "genres"
	labelRuntime  = "runtime"
	labelCountry  = "country"
	labelLanguage = "language"
	labelColor    = "color"
	labelPlot     = "plot"
	labelMPAA     = "mpaa"
	labelAirDate  = "original air date"
	labelSeries   = "tv series"
	labelSeasons  = "seasons"
	labelYears    = "years"
	labelRank     = "rank"
)

// labelAliases 把页面上的 h5 文本（小写、去冒号）映射到规范名。
// 不在表里的标签一律忽略。
var labelAliases = map[string]string{
	"genre":             labelGenres,
	"genres":            labelGenres,
	"runtime":           labelRuntime,
	"runtimes":          labelRuntime,
	"country":           labelCountry,
	"countries":         labelCountry,
	"language":          labelLanguage,
	"languages":         labelLanguage,
	"color":             labelColor,
	"colour":            labelColor,
	"color info":        labelColor,
	"plot":              labelPlot,
	"plot outline":      labelPlot,
	"plot summary":      labelPlot,
	"mpaa":              labelMPAA,
	"original air date": labelAirDate,
	"tv series":         labelSeries,
	"seasons":           labelSeasons,
	"season":            labelSeasons,
	"years":             labelYears,
	"rank":              labelRank,
	"ranking":           labelRank,
}

// multiLabels 是多值区块：每次出现都保留（文档顺序）。其余标签只保留第一次出现。
var multiLabels = map[string]bool{
	labelGenres:   true,
	labelRuntime:  true,
	labelCountry:  true,
	labelLanguage: true,
	labelColor:    true,
}

// 区块内容里的“更多/编辑”链接，不属于值本身。
const noiseSelector = "a.tn15more, .tn15more, a.edit, .pro-link"

var miniMarkRE = regexp.MustCompile(`(?i)mini[- ]?series`)

// Pair 是一次定位到的 (标签, 原始片段)。
type Pair struct {
	Label string
	Text  string
	Links []markup.Link
}

// Page 是一次遍历得到的全部原始片段。零值表示页面上什么都没有。
type Page struct {
	Header     string
	MiniSeries bool

	RatingBadge string
	RankBadge   string
	Poster      string

	EpisodeNav   string
	EpisodeLinks []markup.Link

	pairs map[string][]Pair
}

// First 返回标签的第一次出现。
func (p Page) First(label string) (Pair, bool) {
	ps := p.pairs[label]
	if len(ps) == 0 {
		return Pair{}, false
	}
	return ps[0], true
}

// All 返回标签的全部出现（单值标签最多一个）。
func (p Page) All(label string) []Pair {
	return p.pairs[label]
}

// Locate 遍历一次文档树，收集标题头、徽章、海报、剧集导航与已知标签的区块。
func Locate(t *markup.Tree) Page {
	root := t.Root()
	p := Page{pairs: map[string][]Pair{}}

	h1, ok := root.Find("#tn15title h1")
	if !ok {
		h1, ok = root.Find("h1")
	}
	if ok {
		p.Header = h1.Without(".tv-extra, .title-extra, .pro-link, .tn15more").Text()
	}
	for _, x := range root.FindAll(".tv-extra") {
		if miniMarkRE.MatchString(x.Text()) {
			p.MiniSeries = true
			break
		}
	}

	if n, ok := root.Find(".starbar-meta"); ok {
		p.RatingBadge = n.Text()
	}
	if n, ok := root.Find(".starbar-special"); ok {
		p.RankBadge = n.Text()
	}
	if n, ok := root.Find("a[name=poster] img"); ok {
		p.Poster, _ = n.Attr("src")
	}
	if n, ok := root.Find("#tn15epnav"); ok {
		p.EpisodeNav = n.Text()
		p.EpisodeLinks = n.Links()
	}

	for _, info := range root.FindAll("div.info") {
		h5, ok := info.Find("h5")
		if !ok {
			continue
		}
		label, ok := labelAliases[strings.ToLower(markup.NormHeader(h5.Text()))]
		if !ok {
			continue
		}
		if !multiLabels[label] && len(p.pairs[label]) > 0 {
			continue
		}

		content, ok := info.Find("div.info-content")
		if !ok {
			content = info.Without("h5")
		}
		content = content.Without(noiseSelector)
		p.pairs[label] = append(p.pairs[label], Pair{
			Label: label,
			Text:  content.Text(),
			Links: content.Links(),
		})
	}
	return p
}
