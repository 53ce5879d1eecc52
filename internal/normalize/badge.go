package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
)

var (
	ratingRE   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*/\s*10\b`)
	votesRE    = regexp.MustCompile(`(?i)(\d[\d,.]*)\s+votes?\b`)
	awaitingRE = regexp.MustCompile(`(?i)\bawaiting\b`)
	rankRE     = regexp.MustCompile(`(?i)\b(top|bottom)\s*(\d+)\s*:?\s*#\s*(\d+)`)
)

// Rating 从评分徽章解析评分，范围 [1, 10]。
func Rating(badge string) (float64, error) {
	m := ratingRE.FindStringSubmatch(badge)
	if m == nil {
		return 0, ErrNotFound
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0, formatErr(domain.FieldRating, m[0], "not a number")
	}
	if v < 1 || v > 10 {
		return 0, formatErr(domain.FieldRating, m[0], "rating outside [1, 10]")
	}
	return v, nil
}

// Votes 从评分徽章解析票数。
// “awaiting N votes” 表示票数未达展示门槛，此时视为不存在。
func Votes(badge string) (int, error) {
	if awaitingRE.MatchString(badge) {
		return 0, ErrNotFound
	}
	m := votesRE.FindStringSubmatch(badge)
	if m == nil {
		return 0, ErrNotFound
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, formatErr(domain.FieldVotes, m[0], "not a vote count")
	}
	return n, nil
}

// Rank 从排名徽章解析 Top 250 / Bottom 100 名次，返回对应字段。
func Rank(badge string) (domain.Field, int, error) {
	m := rankRE.FindStringSubmatch(badge)
	if m == nil {
		return "", 0, ErrNotFound
	}
	list := strings.ToLower(m[1]) + " " + m[2]
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return "", 0, formatErr(domain.FieldTop250, m[0], "not a rank")
	}

	var (
		field domain.Field
		limit int
	)
	switch list {
	case "top 250":
		field, limit = domain.FieldTop250, 250
	case "bottom 100":
		field, limit = domain.FieldBottom100, 100
	default:
		return "", 0, formatErr(domain.FieldTop250, m[0], "unknown chart "+strconv.Quote(list))
	}
	if n < 1 || n > limit {
		return "", 0, formatErr(field, m[0], "rank outside chart bounds")
	}
	return field, n, nil
}
