package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestFinalize_StatusDerivation(t *testing.T) {
	cases := []struct {
		name string
		rep  Report
		want string
	}{
		{"有 pin 无错误", Report{Pin: "123456"}, StatusOK},
		{"pin_not_found", Report{ErrorCode: ErrCodePinNotFound}, StatusPinNotFound},
		{"解码失败", Report{ErrorCode: ErrCodeInvalidEncoding}, StatusFailed},
		{"pin 命中但保存失败", Report{Pin: "123456", ErrorCode: ErrCodeIOFailed}, StatusFailed},
	}
	for _, c := range cases {
		c.rep.Finalize()
		if c.rep.Status != c.want {
			t.Fatalf("%s：期望 %q，实际 %q", c.name, c.want, c.rep.Status)
		}
	}
}

func TestFinalize_UTCAndNonNilSlices(t *testing.T) {
	loc := time.FixedZone("X", 8*3600)
	rep := Report{
		StartedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, loc),
		FinishedAt: time.Date(2024, 5, 1, 12, 0, 1, 0, loc),
		Pin:        "123456",
	}
	rep.Finalize()

	b, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("序列化失败：%v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"started_at":"2024-05-01T04:00:00Z"`) {
		t.Fatalf("时间必须是 UTC 且带 Z 后缀：%s", s)
	}
	if strings.Contains(s, `"steps":null`) || strings.Contains(s, `"inputs":null`) {
		t.Fatalf("切片字段不得输出 null：%s", s)
	}
}
