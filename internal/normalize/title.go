package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
)

// Header 是标题头分解后的四个独立事实（外加剧集相关的附带信息）。
// 零值字段表示“不存在”。
type Header struct {
	Title string
	// Series 仅在剧集标题中出现：引号内的剧名。
	Series string
	Year   int
	Span   YearRange
	Index  string
	Kind   domain.Kind

	Season  int
	Episode int

	// Unknown 收集无法识别、但已从标题中剥离的括号注释。
	Unknown []string
}

var (
	trailingGroupRE = regexp.MustCompile(`\s*\(([^()]*)\)\s*$`)
	bracedRE        = regexp.MustCompile(`^(.*?)\s*\{([^{}]*)\}$`)
	quotedRE        = regexp.MustCompile(`^"([^"]+)"\s*(.*)$`)

	yearGroupRE  = regexp.MustCompile(`^(\d{4}|\?{4})(?:/([IVXLCDM]+))?$`)
	rangeGroupRE = regexp.MustCompile(`^(\d{4})\s*[-–—]\s*(\d{4})?$`)
	indexRE      = regexp.MustCompile(`^[IVXLCDM]+$`)
	epCodeRE     = regexp.MustCompile(`^#(\d+)\.(\d+)$`)
	miniRE       = regexp.MustCompile(`(?i)mini[- ]?series`)

	articleRE = regexp.MustCompile(`^(.+), (The|A|An|Der|Die|Das|Le|La|Les|Il|El|Los|Las)$`)
)

// marker 是标题头中可观察到的类型线索。
type marker int

const (
	markTVMovie marker = 1 << iota
	markVideo
	markVideoGame
	markSeries
	markMini
	markEpisode
)

// standaloneMarks 表示独立作品（非剧集）的类型线索。
const standaloneMarks = markTVMovie | markVideo | markVideoGame

var kindMarkers = map[string]marker{
	"tv":             markTVMovie,
	"tv movie":       markTVMovie,
	"v":              markVideo,
	"video":          markVideo,
	"vg":             markVideoGame,
	"video game":     markVideoGame,
	"tv series":      markSeries,
	"tv mini-series": markSeries | markMini,
	"tv mini series": markSeries | markMini,
	"mini-series":    markSeries | markMini,
}

// kindRules 按优先级排列；第一条命中的规则决定 kind。
var kindRules = []struct {
	kind  domain.Kind
	match func(marker) bool
}{
	{domain.KindEpisode, func(m marker) bool { return m&markEpisode != 0 }},
	{domain.KindVideoGame, func(m marker) bool { return m&markVideoGame != 0 }},
	{domain.KindVideoMovie, func(m marker) bool { return m&markVideo != 0 }},
	{domain.KindTVMovie, func(m marker) bool { return m&markTVMovie != 0 }},
	{domain.KindTVMiniSeries, func(m marker) bool { return m&markSeries != 0 && m&markMini != 0 }},
	{domain.KindTVSeries, func(m marker) bool { return m&markSeries != 0 }},
	{domain.KindMovie, func(marker) bool { return true }},
}

func resolveKind(m marker) domain.Kind {
	for _, r := range kindRules {
		if r.match(m) {
			return r.kind
		}
	}
	return domain.KindMovie
}

// DecomposeTitle 分解标题头：Name[, The] (Index)? (Year)? (Kind)?，
// 以及剧集形态 "Series" Episode (#S.E) 与 "Series" (Year) {Episode (#S.E)}。
//
// mini 表示文档其它位置出现了 mini-series 标记。
func DecomposeTitle(raw string, mini bool) (Header, error) {
	s := markup.NormSpace(raw)
	if s == "" {
		return Header{}, ErrNotFound
	}

	var (
		h Header
		m marker
	)
	if mini {
		m |= markMini
	}

	if b := bracedRE.FindStringSubmatch(s); b != nil {
		outer, om := stripGroups(b[1], &h)
		inner, im := stripGroups(b[2], &h)
		m |= om | im | markEpisode
		series := strings.Trim(outer, `"`)
		if series == "" {
			return h, formatErr(domain.FieldTitle, raw, "empty series name")
		}
		h.Series = moveArticle(series)
		h.Title = episodeTitle(inner, h)
	} else {
		name, nm := stripGroups(s, &h)
		m |= nm
		switch q := quotedRE.FindStringSubmatch(name); {
		case strings.HasPrefix(name, `""`):
			return h, formatErr(domain.FieldTitle, raw, "empty quoted name")
		case q == nil || nm&standaloneMarks != 0:
			// (V)、(VG)、(TV) 标记的是独立作品，开头的引号属于名称本身。
			h.Title = moveArticle(name)
		case strings.TrimSpace(q[2]) != "":
			m |= markEpisode
			h.Series = moveArticle(q[1])
			h.Title = moveArticle(q[2])
		case nm&markEpisode != 0:
			// 只有剧名与编号："Series" (#3.10)。
			h.Series = moveArticle(q[1])
			h.Title = episodeTitle("", h)
		default:
			m |= markSeries
			h.Title = moveArticle(q[1])
		}
	}

	// 文档级 mini 标记只在标题本身是剧集时生效（kindRules 要求 markSeries）。
	h.Kind = resolveKind(m)

	if h.Title == "" {
		return h, formatErr(domain.FieldTitle, raw, "empty title after stripping annotations")
	}
	return h, nil
}

// stripGroups 剥离结尾的括号注释，并把识别出的事实写入 h。
//
// 最左侧第一个“可识别”的括号注释是名称与注释的分界：
// 它左边的括号属于名称本身；它右边无法识别的括号记入 h.Unknown。
func stripGroups(s string, h *Header) (string, marker) {
	rest := strings.TrimSpace(s)
	var groups []string
	for {
		loc := trailingGroupRE.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		groups = append([]string{rest[loc[2]:loc[3]]}, groups...)
		rest = strings.TrimSpace(rest[:loc[0]])
	}

	first := -1
	for i, g := range groups {
		if recognizedGroup(g) {
			first = i
			break
		}
	}
	if first < 0 {
		return strings.TrimSpace(s), 0
	}

	name := rest
	for _, g := range groups[:first] {
		name += " (" + g + ")"
	}

	var m marker
	for _, g := range groups[first:] {
		gm, ok := applyGroup(g, h)
		if !ok {
			h.Unknown = append(h.Unknown, "("+g+")")
			continue
		}
		m |= gm
	}
	return strings.TrimSpace(name), m
}

func recognizedGroup(g string) bool {
	var scratch Header
	_, ok := applyGroup(g, &scratch)
	return ok
}

// applyGroup 识别单个括号注释（不含括号）。
func applyGroup(g string, h *Header) (marker, bool) {
	t := strings.TrimSpace(g)
	lower := strings.ToLower(t)

	if m, ok := kindMarkers[lower]; ok {
		return m, true
	}
	if miniRE.MatchString(lower) {
		return markSeries | markMini, true
	}
	if epCodeRE.MatchString(t) {
		// "#0.0" 之类仍是剧集标记，只是不产生季/集。
		if s, e, err := EpisodeCode(t); err == nil {
			h.Season, h.Episode = s, e
		}
		return markEpisode, true
	}
	if r := rangeGroupRE.FindStringSubmatch(t); r != nil {
		h.Span.Start, _ = strconv.Atoi(r[1])
		if r[2] == "" {
			h.Span.Open = true
		} else {
			h.Span.End, _ = strconv.Atoi(r[2])
		}
		return markSeries, true
	}
	if y := yearGroupRE.FindStringSubmatch(t); y != nil {
		if y[1] != "????" {
			h.Year, _ = strconv.Atoi(y[1])
		}
		if y[2] != "" {
			h.Index = y[2]
		}
		return 0, true
	}
	if indexRE.MatchString(t) {
		h.Index = t
		return 0, true
	}
	return 0, false
}

// episodeTitle 返回剧集名；缺失时按编号生成 "Episode #S.E"。
func episodeTitle(name string, h Header) string {
	if name = moveArticle(name); name != "" {
		return name
	}
	if h.Season > 0 && h.Episode > 0 {
		return "Episode #" + strconv.Itoa(h.Season) + "." + strconv.Itoa(h.Episode)
	}
	return ""
}

func moveArticle(s string) string {
	s = strings.TrimSpace(s)
	if a := articleRE.FindStringSubmatch(s); a != nil {
		return a[2] + " " + a[1]
	}
	return s
}

func positive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
