package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/titlemeta/internal/domain"
)

func TestDecomposeTitle(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		mini bool
		want Header
	}{
		{
			name: "movie",
			raw:  "The Matrix (1999)",
			want: Header{Title: "The Matrix", Year: 1999, Kind: domain.KindMovie},
		},
		{
			name: "tv movie short marker",
			raw:  "The Matrix Defence (2003) (TV)",
			want: Header{Title: "The Matrix Defence", Year: 2003, Kind: domain.KindTVMovie},
		},
		{
			name: "tv movie long marker",
			raw:  "The Matrix Defence (2003) (TV Movie)",
			want: Header{Title: "The Matrix Defence", Year: 2003, Kind: domain.KindTVMovie},
		},
		{
			name: "video",
			raw:  "Armitage III: Poly Matrix (1996) (V)",
			want: Header{Title: "Armitage III: Poly Matrix", Year: 1996, Kind: domain.KindVideoMovie},
		},
		{
			name: "video game",
			raw:  "The Matrix Online (2005) (VG)",
			want: Header{Title: "The Matrix Online", Year: 2005, Kind: domain.KindVideoGame},
		},
		{
			name: "series with closed range",
			raw:  `"House M.D." (2004–2012)`,
			want: Header{Title: "House M.D.", Span: YearRange{Start: 2004, End: 2012}, Kind: domain.KindTVSeries},
		},
		{
			name: "series with open range",
			raw:  `"Doctor Who" (2005– )`,
			want: Header{Title: "Doctor Who", Span: YearRange{Start: 2005, Open: true}, Kind: domain.KindTVSeries},
		},
		{
			name: "series single year",
			raw:  `"Doctor Who" (2005)`,
			want: Header{Title: "Doctor Who", Year: 2005, Kind: domain.KindTVSeries},
		},
		{
			name: "mini series marker in header",
			raw:  `"Band of Brothers" (2001) (TV mini-series)`,
			want: Header{Title: "Band of Brothers", Year: 2001, Kind: domain.KindTVMiniSeries},
		},
		{
			name: "mini series marker elsewhere in document",
			raw:  `"Band of Brothers" (2001)`,
			mini: true,
			want: Header{Title: "Band of Brothers", Year: 2001, Kind: domain.KindTVMiniSeries},
		},
		{
			name: "document mini marker ignored for movies",
			raw:  "Band of Brothers (2001)",
			mini: true,
			want: Header{Title: "Band of Brothers", Year: 2001, Kind: domain.KindMovie},
		},
		{
			name: "episode",
			raw:  `"Doctor Who" Blink (#3.10) (2007)`,
			want: Header{Title: "Blink", Series: "Doctor Who", Year: 2007, Kind: domain.KindEpisode, Season: 3, Episode: 10},
		},
		{
			name: "episode without code",
			raw:  `"Doctor Who" Blink`,
			want: Header{Title: "Blink", Series: "Doctor Who", Kind: domain.KindEpisode},
		},
		{
			name: "braced episode",
			raw:  `"Doctor Who" (2005) {Blink (#3.10)}`,
			want: Header{Title: "Blink", Series: "Doctor Who", Year: 2005, Kind: domain.KindEpisode, Season: 3, Episode: 10},
		},
		{
			name: "episode with only a code",
			raw:  `"Doctor Who" (#3.10)`,
			want: Header{Title: "Episode #3.10", Series: "Doctor Who", Kind: domain.KindEpisode, Season: 3, Episode: 10},
		},
		{
			name: "braced episode with only a code",
			raw:  `"Doctor Who" (2005) {(#3.10)}`,
			want: Header{Title: "Episode #3.10", Series: "Doctor Who", Year: 2005, Kind: domain.KindEpisode, Season: 3, Episode: 10},
		},
		{
			name: "leading quotes in a video title",
			raw:  `"Weird Al" Yankovic: The Ultimate Video Collection (2003) (V)`,
			want: Header{Title: `"Weird Al" Yankovic: The Ultimate Video Collection`, Year: 2003, Kind: domain.KindVideoMovie},
		},
		{
			name: "leading quotes in a video game title",
			raw:  `"Guitar Hero" Encore (2007) (VG)`,
			want: Header{Title: `"Guitar Hero" Encore`, Year: 2007, Kind: domain.KindVideoGame},
		},
		{
			name: "year with index",
			raw:  "Mother's Day (1980/IV)",
			want: Header{Title: "Mother's Day", Year: 1980, Index: "IV", Kind: domain.KindMovie},
		},
		{
			name: "separate index",
			raw:  "Mother's Day (IV) (2010)",
			want: Header{Title: "Mother's Day", Year: 2010, Index: "IV", Kind: domain.KindMovie},
		},
		{
			name: "unknown year",
			raw:  "Aslan (????)",
			want: Header{Title: "Aslan", Kind: domain.KindMovie},
		},
		{
			name: "no annotations",
			raw:  "Aslan",
			want: Header{Title: "Aslan", Kind: domain.KindMovie},
		},
		{
			name: "trailing article",
			raw:  "Matrix, The (1999)",
			want: Header{Title: "The Matrix", Year: 1999, Kind: domain.KindMovie},
		},
		{
			name: "parenthesis belonging to the name",
			raw:  "Ich (der Film) (2001)",
			want: Header{Title: "Ich (der Film)", Year: 2001, Kind: domain.KindMovie},
		},
		{
			name: "unrecognised annotation right of a recognised one",
			raw:  "Suspiria (1977) (uncut)",
			want: Header{Title: "Suspiria", Year: 1977, Kind: domain.KindMovie, Unknown: []string{"(uncut)"}},
		},
		{
			name: "whitespace collapsed",
			raw:  "  The Matrix \n (1999) ",
			want: Header{Title: "The Matrix", Year: 1999, Kind: domain.KindMovie},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecomposeTitle(tc.raw, tc.mini)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecomposeTitle_Failures(t *testing.T) {
	_, err := DecomposeTitle("   ", false)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = DecomposeTitle("(1999) (TV)", false)
	require.Error(t, err)
	assert.True(t, IsFormatError(err), "只剩注释没有名称应是语法错误，实际 %v", err)

	for _, raw := range []string{`""`, `"" (2005)`, `"" Blink (#3.10)`, `"" (2005) {Blink (#3.10)}`} {
		_, err = DecomposeTitle(raw, false)
		assert.True(t, IsFormatError(err), "空引号名称 %q 应是语法错误，实际 %v", raw, err)
	}

	// 编号无效时没有可用的剧集名，剧名也不能顶替成标题。
	h, err := DecomposeTitle(`"X" (#0.0)`, false)
	assert.True(t, IsFormatError(err), "实际 %v", err)
	assert.Equal(t, "X", h.Series)
	assert.Empty(t, h.Title)
	assert.Equal(t, domain.KindEpisode, h.Kind)
}

func TestResolveKind_Priority(t *testing.T) {
	cases := []struct {
		m    marker
		want domain.Kind
	}{
		{0, domain.KindMovie},
		{markSeries, domain.KindTVSeries},
		{markSeries | markMini, domain.KindTVMiniSeries},
		{markMini, domain.KindMovie},
		{markTVMovie | markSeries, domain.KindTVMovie},
		{markVideo | markTVMovie, domain.KindVideoMovie},
		{markVideoGame | markVideo, domain.KindVideoGame},
		{markEpisode | markSeries | markMini | markVideoGame, domain.KindEpisode},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, resolveKind(tc.m), "marker %b", tc.m)
	}
}

func TestEpisodeCode(t *testing.T) {
	s, e, err := EpisodeCode("#3.10")
	require.NoError(t, err)
	assert.Equal(t, 3, s)
	assert.Equal(t, 10, e)

	_, _, err = EpisodeCode("#0.4")
	assert.True(t, IsFormatError(err))

	_, _, err = EpisodeCode("3x10")
	assert.ErrorIs(t, err, ErrNotFound)
}
