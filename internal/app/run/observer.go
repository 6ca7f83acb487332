package run

import (
	"time"

	"github.com/jhaBinoy/pin-extractor/internal/config"
	"github.com/jhaBinoy/pin-extractor/internal/domain"
	"github.com/jhaBinoy/pin-extractor/internal/viewstate"
)

// Observer 用于把“运行开始/解码轨迹/最终结果”从核心流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 流程是单输入、单线程的，事件按顺序从同一 goroutine 发出。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnStep 在解码链每个分支产生结果时调用（旁路诊断，不影响返回值）。
	OnStep(step viewstate.Step)
	// OnDone 在 Report 定稿后调用。
	OnDone(rep domain.Report, dur time.Duration)
}
