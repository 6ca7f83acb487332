package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jhaBinoy/pin-extractor/internal/app/run"
	"github.com/jhaBinoy/pin-extractor/internal/config"
	"github.com/jhaBinoy/pin-extractor/internal/domain"
	"github.com/jhaBinoy/pin-extractor/internal/viewstate"
)

var _ run.Observer = (*traceUI)(nil)

// traceUI 把解码链的逐步轨迹打到 stderr（不污染 stdout 的 JSON 输出契约）。
//
// 事件驱动：run 层只发事件，CLI 决定如何展示。
type traceUI struct {
	w         io.Writer
	startedAt time.Time
}

func newTraceUI(w io.Writer) *traceUI {
	return &traceUI{w: w}
}

func (p *traceUI) OnStart(eff config.EffectiveConfig) {
	p.startedAt = time.Now()

	mode := "dry-run (不写文件)"
	if eff.Save {
		mode = "save"
	}
	fmt.Fprintf(p.w, "[%s] pinext run (%s)\n", p.startedAt.Format("15:04:05"), mode)
	fmt.Fprintf(p.w, "  source: %s\n", eff.Source)
	if eff.Save {
		fmt.Fprintf(p.w, "  out: %s\n", eff.Out)
	}
}

func (p *traceUI) OnStep(s viewstate.Step) {
	if s.Detail == "" {
		fmt.Fprintf(p.w, "  %-10s %s\n", s.Stage, s.Outcome)
		return
	}
	fmt.Fprintf(p.w, "  %-10s %-8s %s\n", s.Stage, s.Outcome, s.Detail)
}

func (p *traceUI) OnDone(rep domain.Report, dur time.Duration) {
	fmt.Fprintf(p.w, "完成：status=%s (%.3fs)\n", rep.Status, dur.Seconds())
}
