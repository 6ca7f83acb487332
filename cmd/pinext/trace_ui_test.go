package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jhaBinoy/pin-extractor/internal/config"
	"github.com/jhaBinoy/pin-extractor/internal/domain"
	"github.com/jhaBinoy/pin-extractor/internal/viewstate"
)

func TestTraceUI_Output(t *testing.T) {
	var buf bytes.Buffer
	ui := newTraceUI(&buf)

	ui.OnStart(config.EffectiveConfig{Source: "page.html", Out: "/tmp/out", Save: true})
	ui.OnStep(viewstate.Step{Stage: viewstate.StageLocate, Outcome: "ok", Detail: "payload 24 字符"})
	ui.OnStep(viewstate.Step{Stage: viewstate.StageDecompress, Outcome: "fallback", Detail: "zlib: invalid header"})
	ui.OnDone(domain.Report{Status: domain.StatusOK}, 12*time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"pinext run (save)",
		"source: page.html",
		"out: /tmp/out",
		"locate",
		"fallback",
		"status=ok",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
}

func TestTraceUI_DryRunHidesOut(t *testing.T) {
	var buf bytes.Buffer
	ui := newTraceUI(&buf)

	ui.OnStart(config.EffectiveConfig{Source: "inline", Out: "/tmp/out"})

	out := buf.String()
	if !strings.Contains(out, "dry-run") {
		t.Fatalf("期望标注 dry-run：\n%s", out)
	}
	if strings.Contains(out, "/tmp/out") {
		t.Fatalf("dry-run 不写文件，不应打印 out 目录：\n%s", out)
	}
}
