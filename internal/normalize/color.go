package normalize

import (
	"errors"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
)

// colorTokens 是 color info 的固定词表；键为小写前缀，值为规范写法。
// 较长的前缀排在前面。
var colorTokens = []struct {
	prefix string
	token  string
}{
	{"black and white", "Black and White"},
	{"black & white", "Black and White"},
	{"b&w", "Black and White"},
	{"colour", "Color"},
	{"color", "Color"},
}

// ColorInfo 解析 Color 区块。每条输出为 Token[::note]，note 原样保留。
// 重复的 token（注释不同）按文档顺序全部保留。
func ColorInfo(raw string) ([]string, error) {
	parts := markup.SplitTop(markup.NormSpace(raw), '|', '/')
	if len(parts) == 0 {
		return nil, ErrNotFound
	}

	var (
		out  []string
		errs []error
	)
	for _, p := range parts {
		e, ok := colorEntry(p)
		if !ok {
			errs = append(errs, formatErr(domain.FieldColorInfo, p, "unknown color token"))
			continue
		}
		out = append(out, e.String())
	}
	return out, errors.Join(errs...)
}

func colorEntry(s string) (domain.Entry, bool) {
	lower := strings.ToLower(s)
	for _, c := range colorTokens {
		if !strings.HasPrefix(lower, c.prefix) {
			continue
		}
		rest := s[len(c.prefix):]
		// 必须是完整单词："Colorized" 不算 Color。
		if rest != "" && rest[0] != ' ' && rest[0] != '(' {
			continue
		}
		return domain.Entry{Value: c.token, Note: strings.TrimSpace(rest)}, true
	}
	return domain.Entry{}, false
}
