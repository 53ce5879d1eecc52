// Package nfo 把解析结果文档导出为 Kodi/Jellyfin/Emby 可读取的 NFO（XML）。
package nfo

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
)

const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>` + "\n"

// common 是三种根元素共用的字段；按 Kodi 习惯的顺序排列。
type common struct {
	Title   string   `xml:"title"`
	Year    int      `xml:"year,omitempty"`
	Rating  *rating  `xml:"ratings>rating,omitempty"`
	Top250  int      `xml:"top250,omitempty"`
	Outline string   `xml:"outline,omitempty"`
	Plot    string   `xml:"plot,omitempty"`
	Runtime int      `xml:"runtime,omitempty"`
	MPAA    string   `xml:"mpaa,omitempty"`
	Genres  []string `xml:"genre,omitempty"`
	Country []string `xml:"country,omitempty"`
	Thumb   *thumb   `xml:"thumb,omitempty"`
}

type rating struct {
	Name    string  `xml:"name,attr"`
	Max     int     `xml:"max,attr"`
	Default bool    `xml:"default,attr"`
	Value   float64 `xml:"value"`
	Votes   int     `xml:"votes,omitempty"`
}

type thumb struct {
	Aspect string `xml:"aspect,attr"`
	URL    string `xml:",chardata"`
}

type movie struct {
	XMLName xml.Name `xml:"movie"`
	common
}

type tvshow struct {
	XMLName xml.Name `xml:"tvshow"`
	common
	Premiered string `xml:"premiered,omitempty"`
	Status    string `xml:"status,omitempty"`
	Seasons   int    `xml:"season,omitempty"`
	Episodes  int    `xml:"episode,omitempty"`
}

type episode struct {
	XMLName xml.Name `xml:"episodedetails"`
	common
	ShowTitle string `xml:"showtitle,omitempty"`
	Season    int    `xml:"season,omitempty"`
	Episode   int    `xml:"episode,omitempty"`
	Aired     string `xml:"aired,omitempty"`
}

// Encode 按 kind 选择根元素：episode -> <episodedetails>，
// tv series / tv mini series -> <tvshow>，其它 -> <movie>。
//
// 规则：
// - 文档中缺失的字段不输出对应元素
// - title 缺失视为错误（NFO 不允许空 title）
func Encode(doc domain.Document) ([]byte, error) {
	title, _ := doc.String(domain.FieldTitle)
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("nfo: 文档缺少 title")
	}
	c := buildCommon(doc)

	var v any
	switch k := doc.Kind(); {
	case k == domain.KindEpisode:
		ep := episode{common: c}
		if ref, ok := doc.Ref(domain.FieldEpisodeOf); ok {
			ep.ShowTitle, _ = ref.Data.String(domain.FieldTitle)
		}
		ep.Season, _ = doc.Int(domain.FieldSeason)
		ep.Episode, _ = doc.Int(domain.FieldEpisode)
		ep.Aired, _ = doc.String(domain.FieldAirDate)
		v = ep
	case k.IsSeries():
		show := tvshow{common: c}
		show.Seasons, _ = doc.Int(domain.FieldNumSeasons)
		show.Episodes, _ = doc.Int(domain.FieldNumEpisodes)
		if yrs, ok := doc.String(domain.FieldSeriesYrs); ok {
			show.Premiered, show.Status = span(yrs)
			if show.Year == 0 && len(show.Premiered) == 4 {
				show.Year, _ = strconv.Atoi(show.Premiered)
			}
		}
		v = show
	default:
		v = movie{common: c}
	}

	b, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(header), b...), nil
}

func buildCommon(doc domain.Document) common {
	var c common
	c.Title, _ = doc.String(domain.FieldTitle)
	c.Year, _ = doc.Int(domain.FieldYear)
	c.Top250, _ = doc.Int(domain.FieldTop250)
	c.MPAA, _ = doc.String(domain.FieldMPAA)
	c.Genres, _ = doc.Strings(domain.FieldGenres)
	c.Country, _ = doc.Strings(domain.FieldCountries)

	if plot, ok := doc.String(domain.FieldPlotOutline); ok {
		c.Outline, c.Plot = plot, plot
	}
	if r, ok := doc.Float(domain.FieldRating); ok {
		c.Rating = &rating{Name: "imdb", Max: 10, Default: true, Value: r}
		c.Rating.Votes, _ = doc.Int(domain.FieldVotes)
	}
	if u, ok := doc.String(domain.FieldCoverURL); ok {
		c.Thumb = &thumb{Aspect: "poster", URL: u}
	}
	c.Runtime = primaryRuntime(doc)
	return c
}

// primaryRuntime 取第一条不带国家限定的时长；都带限定时取第一条。
func primaryRuntime(doc domain.Document) int {
	es, ok := doc.Entries(domain.FieldRuntimes)
	if !ok || len(es) == 0 {
		return 0
	}
	pick := es[0]
	for _, e := range es {
		if e.Context == "" {
			pick = e
			break
		}
	}
	n, err := strconv.Atoi(pick.Value)
	if err != nil {
		return 0
	}
	return n
}

// span 把 "2004-2012" / "2005-" 拆成首播年份与播出状态。
func span(yrs string) (premiered, status string) {
	start, end, _ := strings.Cut(yrs, "-")
	if end == "" {
		return start, "Continuing"
	}
	return start, "Ended"
}
