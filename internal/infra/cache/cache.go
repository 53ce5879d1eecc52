package cache

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/titlemeta/internal/infra/fsx"
)

// Store 提供 <path>/cache/ 下的解析结果读写。
//
// 布局：
// - cache/titles/<rel>.json   页面解析结果（rel 为页面相对扫描根的路径，含扩展名）
// - cache/titles/<rel>.nfo    可选的 NFO 导出
// - cache/report.json         最近一次 batch 的报告
// - cache/.lock               batch 运行锁
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - apply：允许写（ReadOnly=false）
type Store struct {
	Root     string // <path>（扫描根目录）
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// Dir 返回 <path>/cache。
func (s Store) Dir() string { return filepath.Join(s.Root, "cache") }

// LockPath 返回 batch 运行锁文件路径。
func (s Store) LockPath() string { return filepath.Join(s.Dir(), ".lock") }

// ReportPath 返回报告文件路径。
func (s Store) ReportPath() string { return filepath.Join(s.Dir(), "report.json") }

// TitlePath 返回页面 rel 的缓存文件路径；ext 为 ".json" 或 ".nfo"。
func (s Store) TitlePath(rel, ext string) (string, error) {
	r, err := cleanRel(rel)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir(), "titles", filepath.FromSlash(r)+ext), nil
}

func (s Store) ReadTitle(rel string) ([]byte, bool, error) {
	p, err := s.TitlePath(rel, ".json")
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WriteTitle(rel string, data []byte) (string, error) {
	return s.write(rel, ".json", data)
}

func (s Store) WriteTitleNFO(rel string, data []byte) (string, error) {
	return s.write(rel, ".nfo", data)
}

func (s Store) WriteReport(data []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	return fsx.WriteFileAtomic(s.Dir(), "report.json", data)
}

func (s Store) write(rel, ext string, data []byte) (string, error) {
	if s.ReadOnly {
		return "", ErrReadOnly
	}
	p, err := s.TitlePath(rel, ext)
	if err != nil {
		return "", err
	}
	if err := fsx.WriteFileAtomic(filepath.Dir(p), filepath.Base(p), data); err != nil {
		return "", err
	}
	return p, nil
}

// cleanRel 校验页面相对路径：必须是 '/' 分隔的相对路径，且不能跳出扫描根。
func cleanRel(rel string) (string, error) {
	r := strings.TrimSpace(filepath.ToSlash(rel))
	if r == "" {
		return "", fmt.Errorf("页面路径不能为空")
	}
	if path.IsAbs(r) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("页面路径必须是相对路径：%q", rel)
	}
	r = path.Clean(r)
	if r == "." || r == ".." || strings.HasPrefix(r, "../") {
		return "", fmt.Errorf("非法页面路径：%q", rel)
	}
	return r, nil
}
