package domain

// Kind 是标题类型的封闭词表。
type Kind string

const (
	KindMovie        Kind = "movie"
	KindTVMovie      Kind = "tv movie"
	KindVideoMovie   Kind = "video movie"
	KindVideoGame    Kind = "video game"
	KindTVSeries     Kind = "tv series"
	KindTVMiniSeries Kind = "tv mini series"
	KindEpisode      Kind = "episode"
)

// IsSeries 对 tv series 与 tv mini series 返回 true。
func (k Kind) IsSeries() bool {
	return k == KindTVSeries || k == KindTVMiniSeries
}

// Valid 报告 k 是否属于词表。
func (k Kind) Valid() bool {
	switch k {
	case KindMovie, KindTVMovie, KindVideoMovie, KindVideoGame, KindTVSeries, KindTVMiniSeries, KindEpisode:
		return true
	default:
		return false
	}
}
