package run

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/jhaBinoy/pin-extractor/internal/config"
	"github.com/jhaBinoy/pin-extractor/internal/domain"
	"github.com/jhaBinoy/pin-extractor/internal/viewstate"
)

type captureObserver struct {
	events []string
	steps  []viewstate.Step
	done   *domain.Report
}

func (c *captureObserver) OnStart(eff config.EffectiveConfig) {
	c.events = append(c.events, "start")
}

func (c *captureObserver) OnStep(s viewstate.Step) {
	c.events = append(c.events, "step")
	c.steps = append(c.steps, s)
}

func (c *captureObserver) OnDone(rep domain.Report, dur time.Duration) {
	c.events = append(c.events, "done")
	c.done = &rep
	if dur < 0 {
		panic("耗时不应为负")
	}
}

func TestExecuteWithObserver_EventOrder(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("PIN 424242"))
	obs := &captureObserver{}

	rep := ExecuteWithObserver(config.EffectiveConfig{
		Text:   embed(payload),
		Source: config.SourceInline,
	}, obs)

	if len(obs.events) < 3 {
		t.Fatalf("期望至少 start/step/done 三类事件，实际 %v", obs.events)
	}
	if obs.events[0] != "start" {
		t.Fatalf("第一个事件必须是 start，实际 %v", obs.events)
	}
	if obs.events[len(obs.events)-1] != "done" {
		t.Fatalf("最后一个事件必须是 done，实际 %v", obs.events)
	}

	if obs.done == nil || obs.done.Status != rep.Status {
		t.Fatalf("OnDone 拿到的 report 应与返回值一致")
	}

	// Report 中的轨迹与 Observer 收到的轨迹必须一一对应。
	if len(rep.Steps) != len(obs.steps) {
		t.Fatalf("轨迹数量不一致：report=%d observer=%d", len(rep.Steps), len(obs.steps))
	}
	for i := range obs.steps {
		if rep.Steps[i].Stage != obs.steps[i].Stage || rep.Steps[i].Outcome != obs.steps[i].Outcome {
			t.Fatalf("第 %d 条轨迹不一致：%+v vs %+v", i, rep.Steps[i], obs.steps[i])
		}
	}
}

func TestExecute_NilObserverIsSafe(t *testing.T) {
	rep := ExecuteWithObserver(config.EffectiveConfig{Text: "<p/>", Source: config.SourceInline}, nil)
	if rep.Status == "" {
		t.Fatalf("nil Observer 下也必须产出定稿 report")
	}
}
