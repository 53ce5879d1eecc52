package batch

import (
	"time"

	"github.com/John-Robertt/titlemeta/internal/config"
	"github.com/John-Robertt/titlemeta/internal/domain"
)

// Observer 把“阶段/条目进度”从执行流程中解耦出来。
//
// 约束：
// - batch 包只发事件，不向 stdout 输出（stdout 留给 RunReport JSON）
// - 事件都在调用 Execute 的 goroutine 中按顺序发出
type Observer interface {
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用；fields 是该阶段的统计。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
}
