package provider

import "github.com/John-Robertt/titlemeta/internal/domain"

// Parser 把“页面版式变化”限制在各自的子包内部；上层只依赖统一接口与稳定的 domain.Result。
//
// 约束：
// - Parse 必须是纯函数：相同输入 => 相同输出（含诊断顺序）
// - Parse 可被多个 goroutine 并发调用
// - 只有输入无法作为 markup 导航时才返回 error；字段级问题写入 Result.Diagnostics
type Parser interface {
	Name() string
	Parse(html []byte) (domain.Result, error)
}
