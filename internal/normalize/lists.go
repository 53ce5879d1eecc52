package normalize

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/markup"
)

// NoDialogueCode 是语言名 "None"（无对白）对应的固定代码。
const NoDialogueCode = "zxx"

// CodedList 是名称与代码的平行列表（一一对应，来自同一组链接）。
// Codes 为 nil 表示代码无法完整推导。
type CodedList struct {
	Names []string
	Codes []string
}

var (
	countryPathRE  = regexp.MustCompile(`(?i)/country/([a-z]{2,3})\b`)
	languagePathRE = regexp.MustCompile(`(?i)/language/([a-z]{2,3})\b`)
	moreLinkRE     = regexp.MustCompile(`(?i)^(?:(?:see (?:all|more)|more|full .*|add .*)\W*|[\s\p{P}]*»[\s\p{P}]*)$`)
)

type codedSpec struct {
	names, codes domain.Field
	pathRE       *regexp.Regexp
	queryKeys    []string
	validate     func(code string) error
}

var (
	countrySpec = codedSpec{
		names:     domain.FieldCountries,
		codes:     domain.FieldCountryCodes,
		pathRE:    countryPathRE,
		queryKeys: []string{"country_of_origin", "countries", "country"},
		validate: func(code string) error {
			_, err := language.ParseRegion(code)
			return err
		},
	}
	languageSpec = codedSpec{
		names:     domain.FieldLanguages,
		codes:     domain.FieldLanguageCodes,
		pathRE:    languagePathRE,
		queryKeys: []string{"primary_language", "languages", "language"},
		validate: func(code string) error {
			if code == NoDialogueCode {
				return nil
			}
			_, err := language.ParseBase(code)
			return err
		},
	}
)

// Countries 从 Country 区块的链接推导国家名称与代码（如 /country/us）。
func Countries(links []markup.Link) (CodedList, error) {
	return codedList(countrySpec, links)
}

// Languages 从 Language 区块的链接推导语言名称与代码（如 /language/en）。
// 名称 "None" 表示无对白，代码固定为 "zxx"。
func Languages(links []markup.Link) (CodedList, error) {
	return codedList(languageSpec, links)
}

func codedList(spec codedSpec, links []markup.Link) (CodedList, error) {
	var (
		out     CodedList
		codes   []string
		missing bool
		errs    []error
	)
	for _, l := range links {
		name := markup.NormSpace(l.Text)
		if name == "" || moreLinkRE.MatchString(name) {
			continue
		}
		out.Names = append(out.Names, name)

		code := linkCode(spec, l.Href)
		if spec.names == domain.FieldLanguages && name == "None" {
			code = NoDialogueCode
		}
		if code == "" {
			missing = true
			errs = append(errs, formatErr(spec.codes, l.Href, "no code in link target for "+name))
			continue
		}
		if err := spec.validate(code); err != nil {
			errs = append(errs, formatErr(spec.codes, code, "unrecognised code: "+err.Error()))
		}
		codes = append(codes, code)
	}
	if len(out.Names) == 0 {
		return CodedList{}, ErrNotFound
	}
	if !missing {
		out.Codes = codes
	}
	return out, errors.Join(errs...)
}

func linkCode(spec codedSpec, href string) string {
	if m := spec.pathRE.FindStringSubmatch(href); m != nil {
		return strings.ToLower(m[1])
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, k := range spec.queryKeys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			// 多值查询（"us,gb"）取第一个。
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = v[:i]
			}
			return strings.ToLower(v)
		}
	}
	return ""
}

// Genres 返回 Genre 区块中的类型名称（文档顺序，"See more" 一类链接除外）。
func Genres(links []markup.Link) ([]string, error) {
	var out []string
	for _, l := range links {
		name := markup.NormSpace(l.Text)
		if name == "" || moreLinkRE.MatchString(name) {
			continue
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
