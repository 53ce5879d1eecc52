package markup

import "strings"

// NormSpace 折叠所有空白（含 NBSP）为单个空格。
func NormSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

// NormHeader 规范化区块标签：折叠空白并去掉结尾冒号。
func NormHeader(s string) string {
	s = NormSpace(s)
	s = strings.TrimSuffix(s, ":")
	s = strings.TrimSuffix(s, "：")
	return strings.TrimSpace(s)
}

// SplitTop 在括号外的分隔符处切分 s，并丢弃空段。
// 括号内的分隔符（例如注释里的 "/"）原样保留。
func SplitTop(s string, seps ...rune) []string {
	isSep := func(r rune) bool {
		for _, x := range seps {
			if r == x {
				return true
			}
		}
		return false
	}

	var (
		out   []string
		depth int
		cur   strings.Builder
	)
	flush := func() {
		if p := strings.TrimSpace(cur.String()); p != "" {
			out = append(out, p)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case r == '(' || r == '[':
			depth++
		case (r == ')' || r == ']') && depth > 0:
			depth--
		case depth == 0 && isSep(r):
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}
