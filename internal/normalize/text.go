package normalize

import (
	"regexp"

	"github.com/John-Robertt/titlemeta/internal/markup"
)

// 区块末尾的导航尾巴：“full summary »”、“See more »”、“| add synopsis” 等。
var trailerRE = regexp.MustCompile(`(?i)(?:\s*[|»])+\s*$|\s*\b(?:full summary|full synopsis|see (?:more|all)|add (?:synopsis|summary))\s*[|»]*\s*$`)

// FreeText 规范化单值自由文本（plot outline、mpaa）。内容为空时视为不存在。
func FreeText(raw string) (string, error) {
	s := markup.NormSpace(raw)
	for {
		t := trailerRE.ReplaceAllString(s, "")
		if t == s {
			break
		}
		s = t
	}
	if s == "" {
		return "", ErrNotFound
	}
	return s, nil
}
