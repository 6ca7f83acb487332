package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusOK          = "ok"
	StatusPinNotFound = "pin_not_found"
	StatusFailed      = "failed"
)

const (
	ErrCodeViewstateNotFound  = "viewstate_not_found"
	ErrCodeInvalidEncoding    = "invalid_encoding"
	ErrCodeUndecodableBinary  = "undecodable_binary"
	ErrCodePinNotFound        = "pin_not_found"
	ErrCodeInputNotText       = "input_not_text"
	ErrCodeIOFailed           = "io_failed"
	ErrCodeConfigInvalid      = "config_invalid"
	ErrCodeConfigMissingInput = "config_missing_input"
)

// Report 是对外稳定输出（report.json / stdout JSON）的结构。
type Report struct {
	Source string `json:"source"`
	Save   bool   `json:"save"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Pin string `json:"pin"`

	// Encoding / Compressed 记录解码产物的来源：文本编码（utf-8/latin-1/hex）
	// 与 zlib 解压是否命中。HexDump 仅在 undecodable_binary 时填充。
	Encoding   string `json:"encoding"`
	Compressed bool   `json:"compressed"`
	HexDump    string `json:"hex_dump,omitempty"`

	Steps  []StepResult `json:"steps"`
	Inputs []FormInput  `json:"inputs"`
}

// StepResult 是解码链中一步的对外呈现（来自 viewstate 的内部轨迹）。
type StepResult struct {
	Stage   string `json:"stage"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// FormInput 描述 markup 中的一个 <input> 元素（诊断用）。
// value 只记录长度、不回显内容：payload 可能很大且对用户无意义。
type FormInput struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ValueLen int    `json:"value_len"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) status 由 pin/error_code 推导（调用方不单独维护 status）
// 3) 切片字段统一为非 nil（输出稳定为 [] 而不是 null）
func (r *Report) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	switch {
	case r.ErrorCode == "" && r.Pin != "":
		r.Status = StatusOK
	case r.ErrorCode == ErrCodePinNotFound:
		r.Status = StatusPinNotFound
	default:
		r.Status = StatusFailed
	}

	if r.Steps == nil {
		r.Steps = []StepResult{}
	}
	if r.Inputs == nil {
		r.Inputs = []FormInput{}
	}
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(Alias(r))
}
