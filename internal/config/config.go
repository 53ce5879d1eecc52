package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/titlemeta/internal/logging"
)

const (
	// ErrCodeNotFound 表示无参运行 batch 但 cwd 下没有 titlemeta.toml。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示无参运行 batch 但配置文件缺少 path 字段。
	ErrCodeMissingPath = "config_missing_path"
)

const (
	// FileName 是配置文件名（位于扫描根目录或 cwd）。
	FileName = "titlemeta.toml"
	// DefaultParser 是 parser 的最终默认值（当 CLI 与配置文件都未指定时）。
	DefaultParser = "combined"
	// DefaultConcurrency 是并发的内置默认值（当配置未指定时）。
	DefaultConcurrency = 4
	// DefaultFormat 是单页输出格式的默认值。
	DefaultFormat = FormatJSON

	FormatJSON = "json"
	FormatNFO  = "nfo"

	minConcurrency = 1
	maxConcurrency = 32
)

// CLIArgs 是 CLI 暴露的入口参数，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 apply = true。
type CLIArgs struct {
	Path string

	Parser    string
	ParserSet bool

	Apply    bool
	ApplySet bool

	Concurrency    int
	ConcurrencySet bool

	Format    string
	FormatSet bool

	Entries    bool
	EntriesSet bool

	NFO    bool
	NFOSet bool

	LogLevel    string
	LogLevelSet bool

	LogJSON    bool
	LogJSONSet bool
}

// FileConfig 对应 titlemeta.toml 的解析结构。未知键忽略。
type FileConfig struct {
	Path        string   `toml:"path"`
	Parser      string   `toml:"parser"`
	Apply       *bool    `toml:"apply"`
	Concurrency int      `toml:"concurrency"`
	Format      string   `toml:"format"`
	Entries     *bool    `toml:"entries"`
	NFO         *bool    `toml:"nfo"`
	ExcludeDirs []string `toml:"exclude_dirs"`
	LogLevel    string   `toml:"log_level"`
	LogJSON     *bool    `toml:"log_json"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Path 为空表示没有扫描根（parse 子命令）。
	Path string
	// Source 是实际读取的配置文件；为空表示没有读到文件。
	Source string

	Parser      string
	Apply       bool
	Concurrency int
	Format      string
	Entries     bool
	// NFO 为 true 时 batch --apply 额外写出 .nfo。
	NFO         bool
	ExcludeDirs []string

	LogLevel string
	LogJSON  bool
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 为 batch 子命令发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/titlemeta.toml（可选）
// 2) CLI 未提供 path：必须读取 <cwd>/titlemeta.toml（必选），且其中必须包含 path
//
// 覆盖优先级（固定）：CLI（显式指定）> 配置文件 > 内置默认。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		// CLI 给了 path：配置文件可选，位置固定在 <path>/titlemeta.toml。
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, FileName)
		fc, exists, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			cfgPath = ""
		}
		return merge(absPath, cli, fc, cfgPath)
	}

	// CLI 没给 path：必须读取 <cwd>/titlemeta.toml，且其中必须包含 path。
	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}

	// 配置文件里的相对 path 以配置文件所在目录为基准。
	absPath := absCleanFrom(cwdAbs, fc.Path)
	return merge(absPath, cli, fc, cfgPath)
}

// LoadOptional 为 parse 子命令读取 <cwd>/titlemeta.toml（可选），不要求 path。
func LoadOptional(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		cfgPath = ""
	}
	return merge("", cli, fc, cfgPath)
}

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	parser := pickString(cli.ParserSet, cli.Parser, fc.Parser, DefaultParser)
	parser = strings.ToLower(strings.TrimSpace(parser))
	if parser == "" {
		return invalid(fmt.Errorf("parser 不能为空"))
	}

	format := strings.ToLower(strings.TrimSpace(pickString(cli.FormatSet, cli.Format, fc.Format, DefaultFormat)))
	if err := validateFormat(format); err != nil {
		return invalid(err)
	}

	logLevel := strings.ToLower(strings.TrimSpace(pickString(cli.LogLevelSet, cli.LogLevel, fc.LogLevel, "info")))
	if !logging.ValidLevel(logLevel) {
		return invalid(fmt.Errorf("log_level 只能是 debug/info/warn/error/fatal，实际是 %q", logLevel))
	}

	concurrency := DefaultConcurrency
	if cli.ConcurrencySet {
		concurrency = cli.Concurrency
	} else if fc.Concurrency != 0 {
		concurrency = fc.Concurrency
	}
	// 范围 [1, 32]；超出截断。
	concurrency = max(minConcurrency, min(maxConcurrency, concurrency))

	return EffectiveConfig{
		Path:        absPath,
		Source:      cfgPath,
		Parser:      parser,
		Apply:       pickBool(cli.ApplySet, cli.Apply, fc.Apply),
		Concurrency: concurrency,
		Format:      format,
		Entries:     pickBool(cli.EntriesSet, cli.Entries, fc.Entries),
		NFO:         pickBool(cli.NFOSet, cli.NFO, fc.NFO),
		ExcludeDirs: normExcludeDirs(fc.ExcludeDirs),
		LogLevel:    logLevel,
		LogJSON:     pickBool(cli.LogJSONSet, cli.LogJSON, fc.LogJSON),
	}, nil
}

// pickString：CLI（显式指定）> 配置文件（非空）> 默认。
func pickString(cliSet bool, cliVal, fileVal, def string) string {
	if cliSet {
		return cliVal
	}
	if strings.TrimSpace(fileVal) != "" {
		return fileVal
	}
	return def
}

// pickBool：CLI（显式指定）> 配置文件 > false。
func pickBool(cliSet, cliVal bool, fileVal *bool) bool {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return false
}

func validateFormat(f string) error {
	switch f {
	case FormatJSON, FormatNFO:
		return nil
	default:
		return fmt.Errorf("format 只能是 json 或 nfo，实际是 %q", f)
	}
}

func normExcludeDirs(in []string) []string {
	var out []string
	for _, d := range in {
		d = strings.TrimSpace(d)
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
