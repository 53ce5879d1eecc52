package normalize

import (
	"net/url"
	"path"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/domain"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// 站点在没有海报时输出的占位图。
var placeholderMarks = []string{"nopicture", "no_photo", "no-poster", "title_addposter"}

// CoverURL 校验海报地址：必须以图片扩展名结尾（忽略查询串）；占位图视为不存在。
func CoverURL(src string) (string, error) {
	s := strings.TrimSpace(src)
	if s == "" {
		return "", ErrNotFound
	}
	lower := strings.ToLower(s)
	for _, p := range placeholderMarks {
		if strings.Contains(lower, p) {
			return "", ErrNotFound
		}
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", formatErr(domain.FieldCoverURL, src, "invalid url")
	}
	// 扩展名只看路径；查询串与片段原样保留。
	if !imageExts[strings.ToLower(path.Ext(u.Path))] {
		return "", formatErr(domain.FieldCoverURL, src, "not an image url")
	}
	return s, nil
}
