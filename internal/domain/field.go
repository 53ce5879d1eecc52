package domain

// Field 是结果文档的字段名（固定词表）。
// 字段名即对外 JSON key，改名属于破坏性变更。
type Field string

const (
	FieldTitle     Field = "title"
	FieldYear      Field = "year"
	FieldKind      Field = "kind"
	FieldIndex     Field = "index"
	FieldSeriesYrs Field = "series years"

	FieldRating    Field = "rating"
	FieldVotes     Field = "votes"
	FieldTop250    Field = "top 250 rank"
	FieldBottom100 Field = "bottom 100 rank"

	FieldRuntimes      Field = "runtimes"
	FieldColorInfo     Field = "color info"
	FieldCountries     Field = "countries"
	FieldCountryCodes  Field = "country codes"
	FieldLanguages     Field = "languages"
	FieldLanguageCodes Field = "language codes"
	FieldGenres        Field = "genres"
	FieldPlotOutline   Field = "plot outline"
	FieldMPAA          Field = "mpaa"

	FieldEpisodeOf     Field = "episode of"
	FieldSeason        Field = "season"
	FieldEpisode       Field = "episode"
	FieldEpisodeNumber Field = "episode number"
	FieldPrevEpisode   Field = "previous episode"
	FieldNextEpisode   Field = "next episode"
	FieldNumEpisodes   Field = "number of episodes"
	FieldNumSeasons    Field = "number of seasons"
	FieldSeasons       Field = "seasons"
	FieldAirDate       Field = "original air date"

	FieldCoverURL Field = "cover url"
)

// Fields 按“文档阅读顺序”列出全部字段（用于稳定输出与测试遍历）。
var Fields = []Field{
	FieldTitle, FieldYear, FieldKind, FieldIndex, FieldSeriesYrs,
	FieldRating, FieldVotes, FieldTop250, FieldBottom100,
	FieldRuntimes, FieldColorInfo, FieldCountries, FieldCountryCodes,
	FieldLanguages, FieldLanguageCodes, FieldGenres, FieldPlotOutline, FieldMPAA,
	FieldEpisodeOf, FieldSeason, FieldEpisode, FieldEpisodeNumber,
	FieldPrevEpisode, FieldNextEpisode, FieldNumEpisodes, FieldNumSeasons,
	FieldSeasons, FieldAirDate,
	FieldCoverURL,
}

// IsAnnotated 报告该字段是否使用 “Country:value::note” 的带注释列表编码。
func (f Field) IsAnnotated() bool {
	switch f {
	case FieldRuntimes, FieldColorInfo:
		return true
	default:
		return false
	}
}
