package domain

import "fmt"

const (
	StageNavigate  = "navigate"
	StageNormalize = "normalize"
	StageResolve   = "resolve"
)

// Diagnostic 是解析过程中的非致命告警。
// Field 为空表示与具体字段无关（例如结构导航失败）。
type Diagnostic struct {
	Stage   string `json:"stage"`
	Field   Field  `json:"field,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Field == "" {
		return fmt.Sprintf("%s: %s", d.Stage, d.Message)
	}
	return fmt.Sprintf("%s %q: %s", d.Stage, string(d.Field), d.Message)
}
