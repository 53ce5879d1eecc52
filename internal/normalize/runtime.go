package normalize

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
)

var runtimeRE = regexp.MustCompile(`^(?:([^:\d][^:]*?)\s*:\s*)?(\d+)\s*(?:min(?:ute)?s?\b\.?)?\s*(.*)$`)

// Runtimes 解析 Runtime 区块：条目以括号外的 "|" 或 "/" 分隔，
// 每条输出为 [Country:]minutes[::note]，注释原样保留（含嵌套括号）。
//
// 无法识别的条目被跳过并通过 error 报告；其它条目照常返回。
func Runtimes(raw string) ([]string, error) {
	parts := markup.SplitTop(markup.NormSpace(raw), '|', '/')
	if len(parts) == 0 {
		return nil, ErrNotFound
	}

	var (
		out  []string
		errs []error
	)
	for _, p := range parts {
		e, err := runtimeEntry(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, e.String())
	}
	return out, errors.Join(errs...)
}

func runtimeEntry(s string) (domain.Entry, error) {
	m := runtimeRE.FindStringSubmatch(s)
	if m == nil {
		return domain.Entry{}, formatErr(domain.FieldRuntimes, s, "no minute figure")
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n <= 0 {
		return domain.Entry{}, formatErr(domain.FieldRuntimes, s, "minutes must be positive")
	}
	return domain.Entry{
		Context: strings.TrimSpace(m[1]),
		Value:   strconv.Itoa(n),
		Note:    strings.TrimSpace(m[3]),
	}, nil
}
