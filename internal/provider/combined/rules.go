package combined

import (
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
	"github.com/John-Robertt/titlemeta/internal/normalize"
	"github.com/John-Robertt/titlemeta/internal/resolve"
)

// rule 负责一个（或一组紧密相关的）字段。
type rule struct {
	field domain.Field
	stage string
	apply func(b *builder, p *Page)
}

// rules 按执行顺序排列：标题头必须最先执行，其余规则依赖它给出的 kind。
var rules = []rule{
	{domain.FieldTitle, domain.StageNormalize, applyHeader},
	{domain.FieldSeriesYrs, domain.StageNormalize, applySeriesYears},
	{domain.FieldRating, domain.StageNormalize, applyRatingVotes},
	{domain.FieldTop250, domain.StageNormalize, applyRank},
	{domain.FieldRuntimes, domain.StageNormalize, applyRuntimes},
	{domain.FieldColorInfo, domain.StageNormalize, applyColorInfo},
	{domain.FieldCountries, domain.StageNormalize, applyCountries},
	{domain.FieldLanguages, domain.StageNormalize, applyLanguages},
	{domain.FieldGenres, domain.StageNormalize, applyGenres},
	{domain.FieldPlotOutline, domain.StageNormalize, freeText(labelPlot, domain.FieldPlotOutline)},
	{domain.FieldMPAA, domain.StageNormalize, freeText(labelMPAA, domain.FieldMPAA)},
	{domain.FieldEpisodeOf, domain.StageResolve, applyEpisodeOf},
	{domain.FieldSeason, domain.StageNormalize, applySeasonEpisode},
	{domain.FieldAirDate, domain.StageNormalize, applyAirDate},
	{domain.FieldPrevEpisode, domain.StageResolve, applyAdjacent},
	{domain.FieldEpisodeNumber, domain.StageNormalize, applyEpisodePosition},
	{domain.FieldSeasons, domain.StageNormalize, applySeasons},
	{domain.FieldCoverURL, domain.StageNormalize, applyCover},
}

func applyHeader(b *builder, p *Page) {
	if p.Header == "" {
		b.diags = append(b.diags, domain.Diagnostic{Stage: domain.StageNavigate, Field: domain.FieldTitle, Message: "title header not found"})
		return
	}
	h, err := normalize.DecomposeTitle(p.Header, p.MiniSeries)
	if err != nil {
		b.note(domain.StageNormalize, domain.FieldTitle, err)
		return
	}
	b.header, b.hasHeader = h, true

	b.set(domain.FieldTitle, h.Title)
	b.set(domain.FieldKind, string(h.Kind))
	if y, err := normalize.Year(h); err == nil {
		b.set(domain.FieldYear, y)
	}
	if h.Index != "" {
		b.set(domain.FieldIndex, h.Index)
	}
	for _, u := range h.Unknown {
		b.diags = append(b.diags, domain.Diagnostic{
			Stage:   domain.StageNormalize,
			Field:   domain.FieldTitle,
			Message: "unrecognised header annotation " + u,
		})
	}
}

func applySeriesYears(b *builder, p *Page) {
	if !b.hasHeader {
		return
	}
	var section string
	if pair, ok := p.First(labelYears); ok {
		section = pair.Text
	}
	v, err := normalize.SeriesYears(b.header, section)
	if err != nil {
		b.note(domain.StageNormalize, domain.FieldSeriesYrs, err)
		return
	}
	b.set(domain.FieldSeriesYrs, v)
}

func applyRatingVotes(b *builder, p *Page) {
	if r, err := normalize.Rating(p.RatingBadge); err != nil {
		b.note(domain.StageNormalize, domain.FieldRating, err)
	} else {
		b.set(domain.FieldRating, r)
	}
	if v, err := normalize.Votes(p.RatingBadge); err != nil {
		b.note(domain.StageNormalize, domain.FieldVotes, err)
	} else {
		b.set(domain.FieldVotes, v)
	}
}

// applyRank 优先使用 Rank 区块，徽章其次；最多产生一个排名字段。
func applyRank(b *builder, p *Page) {
	var sources []string
	if pair, ok := p.First(labelRank); ok {
		sources = append(sources, pair.Text)
	}
	sources = append(sources, p.RankBadge)
	for _, src := range sources {
		f, n, err := normalize.Rank(src)
		if err != nil {
			b.note(domain.StageNormalize, domain.FieldTop250, err)
			continue
		}
		b.set(f, n)
		return
	}
}

// annotatedList 对多值区块的每次出现分别规范化，并按文档顺序拼接。
func annotatedList(b *builder, p *Page, label string, field domain.Field, fn func(string) ([]string, error)) {
	var out []string
	for _, pair := range p.All(label) {
		vs, err := fn(pair.Text)
		b.note(domain.StageNormalize, field, err)
		out = append(out, vs...)
	}
	if len(out) > 0 {
		b.set(field, out)
	}
}

func applyRuntimes(b *builder, p *Page) {
	annotatedList(b, p, labelRuntime, domain.FieldRuntimes, normalize.Runtimes)
}

func applyColorInfo(b *builder, p *Page) {
	annotatedList(b, p, labelColor, domain.FieldColorInfo, normalize.ColorInfo)
}

func allLinks(p *Page, label string) []markup.Link {
	var out []markup.Link
	for _, pair := range p.All(label) {
		out = append(out, pair.Links...)
	}
	return out
}

func codedList(b *builder, names, codes domain.Field, l normalize.CodedList, err error) {
	b.note(domain.StageNormalize, names, err)
	if len(l.Names) == 0 {
		return
	}
	b.set(names, l.Names)
	if l.Codes != nil {
		b.set(codes, l.Codes)
	}
}

func applyCountries(b *builder, p *Page) {
	l, err := normalize.Countries(allLinks(p, labelCountry))
	codedList(b, domain.FieldCountries, domain.FieldCountryCodes, l, err)
}

func applyLanguages(b *builder, p *Page) {
	l, err := normalize.Languages(allLinks(p, labelLanguage))
	codedList(b, domain.FieldLanguages, domain.FieldLanguageCodes, l, err)
}

func applyGenres(b *builder, p *Page) {
	g, err := normalize.Genres(allLinks(p, labelGenres))
	if err != nil {
		b.note(domain.StageNormalize, domain.FieldGenres, err)
		return
	}
	b.set(domain.FieldGenres, g)
}

func freeText(label string, field domain.Field) func(*builder, *Page) {
	return func(b *builder, p *Page) {
		pair, ok := p.First(label)
		if !ok {
			return
		}
		v, err := normalize.FreeText(pair.Text)
		if err != nil {
			b.note(domain.StageNormalize, field, err)
			return
		}
		b.set(field, v)
	}
}

// applyEpisodeOf 优先使用 “TV Series” 区块的链接；
// 没有该区块时，用剧集导航条里指向剧集列表的链接加上标题头中的剧名。
func applyEpisodeOf(b *builder, p *Page) {
	if !b.episodeFieldsAllowed() {
		return
	}
	if pair, ok := p.First(labelSeries); ok {
		for _, l := range pair.Links {
			if !strings.Contains(l.Href, "/title/") {
				continue
			}
			ref, err := resolve.Series(l, pair.Text)
			if err != nil {
				b.note(domain.StageResolve, domain.FieldEpisodeOf, err)
				return
			}
			b.set(domain.FieldEpisodeOf, ref)
			return
		}
	}
	if b.kind() != domain.KindEpisode || b.header.Series == "" {
		return
	}
	for _, l := range p.EpisodeLinks {
		if !strings.Contains(l.Href, "/episodes") {
			continue
		}
		ref, err := resolve.Series(l, b.header.Series)
		if err != nil {
			b.note(domain.StageResolve, domain.FieldEpisodeOf, err)
			return
		}
		b.set(domain.FieldEpisodeOf, ref)
		return
	}
}

// applySeasonEpisode：标题头里的 (#S.E) 优先，其次是首映日期后的 (Season S, Episode E)。
func applySeasonEpisode(b *builder, p *Page) {
	if !b.episodeFieldsAllowed() {
		return
	}
	if b.header.Season > 0 && b.header.Episode > 0 {
		b.set(domain.FieldSeason, b.header.Season)
		b.set(domain.FieldEpisode, b.header.Episode)
		return
	}
	pair, ok := p.First(labelAirDate)
	if !ok {
		return
	}
	s, e, err := normalize.SeasonEpisode(pair.Text)
	if err != nil {
		b.note(domain.StageNormalize, domain.FieldSeason, err)
		return
	}
	b.set(domain.FieldSeason, s)
	b.set(domain.FieldEpisode, e)
}

func applyAirDate(b *builder, p *Page) {
	if !b.episodeFieldsAllowed() {
		return
	}
	pair, ok := p.First(labelAirDate)
	if !ok {
		return
	}
	d, err := normalize.AirDate(pair.Text)
	if err != nil {
		b.note(domain.StageNormalize, domain.FieldAirDate, err)
		return
	}
	b.set(domain.FieldAirDate, d)
}

func applyAdjacent(b *builder, p *Page) {
	if !b.episodeFieldsAllowed() {
		return
	}
	prev, next := resolve.Adjacent(p.EpisodeLinks)
	if prev != "" {
		b.set(domain.FieldPrevEpisode, prev)
	}
	if next != "" {
		b.set(domain.FieldNextEpisode, next)
	}
}

// applyEpisodePosition 读取导航条 "Episode 175 of 176"：序号与父剧的总集数。
func applyEpisodePosition(b *builder, p *Page) {
	if !b.episodeFieldsAllowed() {
		return
	}
	n, total, err := normalize.EpisodePosition(p.EpisodeNav)
	if err != nil {
		b.note(domain.StageNormalize, domain.FieldEpisodeNumber, err)
		return
	}
	b.set(domain.FieldEpisodeNumber, n)
	b.set(domain.FieldNumEpisodes, total)
}

func applySeasons(b *builder, p *Page) {
	if !b.seriesFieldsAllowed() {
		return
	}
	pair, ok := p.First(labelSeasons)
	if !ok {
		return
	}
	titles, err := normalize.Seasons(pair.Links)
	if err != nil {
		b.note(domain.StageNormalize, domain.FieldSeasons, err)
		return
	}
	b.set(domain.FieldSeasons, titles)
	if n, err := normalize.NumberOfSeasons(titles); err == nil {
		b.set(domain.FieldNumSeasons, n)
	}
}

func applyCover(b *builder, p *Page) {
	u, err := normalize.CoverURL(p.Poster)
	if err != nil {
		b.note(domain.StageNormalize, domain.FieldCoverURL, err)
		return
	}
	b.set(domain.FieldCoverURL, u)
}
