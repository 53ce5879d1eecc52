package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
	"github.com/John-Robertt/titlemeta/internal/normalize"
)

func TestID(t *testing.T) {
	cases := map[string]string{
		"/title/tt0412142/":                             "0412142",
		"https://www.imdb.com/title/tt0133093/combined": "0133093",
		"/name/nm0000206/":                              "0000206",
		"0185906":                                       "0185906",
		"tt2121964":                                     "2121964",
	}
	for in, want := range cases {
		got, err := ID(in)
		require.NoError(t, err, "输入 %q", in)
		assert.Equal(t, want, got)
	}

	_, err := ID("")
	assert.ErrorIs(t, err, normalize.ErrNotFound)
	_, err = ID("/chart/top")
	assert.True(t, normalize.IsFormatError(err))
}

func TestSeries(t *testing.T) {
	ref, err := Series(markup.Link{Href: "/title/tt0412142/", Text: "House M.D."}, "House M.D. (2004)")
	require.NoError(t, err)
	assert.Equal(t, domain.Ref{
		ID: "0412142",
		Data: domain.Document{
			domain.FieldTitle: "House M.D.",
			domain.FieldYear:  2004,
			domain.FieldKind:  "tv series",
		},
	}, ref)
}

func TestSeries_MiniSeriesParentUsesSeriesKind(t *testing.T) {
	ref, err := Series(markup.Link{Href: "/title/tt0185906/", Text: "Band of Brothers"}, `"Band of Brothers" (2001) (TV mini-series)`)
	require.NoError(t, err)
	assert.Equal(t, "0185906", ref.ID)
	assert.Equal(t, domain.Document{
		domain.FieldTitle: "Band of Brothers",
		domain.FieldYear:  2001,
		domain.FieldKind:  "tv series",
	}, ref.Data)
}

func TestSeries_RangeAndFallbackText(t *testing.T) {
	ref, err := Series(markup.Link{Href: "/title/tt0436992/", Text: "Doctor Who (2005–)"}, "")
	require.NoError(t, err)
	assert.Equal(t, 2005, ref.Data[domain.FieldYear], "区间的起始年作为引用处的 year")
	assert.Equal(t, "Doctor Who", ref.Data[domain.FieldTitle])

	ref, err = Series(markup.Link{Href: "/title/tt0436992/", Text: "Doctor Who"}, "")
	require.NoError(t, err)
	assert.NotContains(t, ref.Data, domain.FieldYear)
}

func TestSeries_IndependentCopies(t *testing.T) {
	link := markup.Link{Href: "/title/tt0412142/", Text: "House M.D."}
	a, err := Series(link, "House M.D. (2004)")
	require.NoError(t, err)
	b, err := Series(link, "House M.D. (2004)")
	require.NoError(t, err)

	a.Data[domain.FieldTitle] = "changed"
	assert.Equal(t, "House M.D.", b.Data[domain.FieldTitle])
}

func TestAdjacent(t *testing.T) {
	links := []markup.Link{
		{Href: "/title/tt2121963/", Text: "« Prev"},
		{Href: "/title/tt0412142/episodes", Text: "Episode List"},
		{Href: "/title/tt2121965/", Text: "Next »"},
	}
	prev, next := Adjacent(links)
	assert.Equal(t, "2121963", prev)
	assert.Equal(t, "2121965", next)

	prev, next = Adjacent(links[1:])
	assert.Empty(t, prev, "第一集没有上一集")
	assert.Equal(t, "2121965", next)

	prev, next = Adjacent(nil)
	assert.Empty(t, prev)
	assert.Empty(t, next)
}
