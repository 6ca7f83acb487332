package viewstate

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// 定位 __VIEWSTATE 的属性值：允许 name 与 value 之间出现任意其他属性，
// 但不允许跨出当前标签（[^>]*）。捕获的是字面原文，不做 HTML 实体解码。
//
// 注意：该模式要求 name 出现在 value 之前；value 在前的写法按既有行为视为
// 未命中（inspect 盘点可以揭示这种情况）。
var viewstateRE = regexp.MustCompile(`(?i)name="__VIEWSTATE"[^>]*value="([^"]*)"`)

const (
	StageLocate     = "locate"
	StageBase64     = "base64"
	StageDecompress = "decompress"
	StageText       = "text"
)

const (
	// ErrCodeNotFound 表示输入中不存在 __VIEWSTATE 属性/值对。
	ErrCodeNotFound = "viewstate_not_found"
	// ErrCodeInvalidEncoding 表示捕获到的值不是合法 base64。
	ErrCodeInvalidEncoding = "invalid_encoding"
	// ErrCodeUndecodableBinary 表示两种文本编码都无法呈现解码后的字节。
	// latin-1 对任意字节总能成功，实际几乎不可达；保留为已定义的终态。
	ErrCodeUndecodableBinary = "undecodable_binary"
)

// Step 记录解码链中一步的尝试（用于解释 fallback/降级原因）。
// 注意：这是内部执行轨迹，不直接写入 report（由上层决定如何呈现）。
type Step struct {
	Stage   string // locate / base64 / decompress / text
	Outcome string // "ok" / "fallback" / "failed"
	Detail  string
}

// Observer 接收解码链的逐步轨迹；nil 表示不观测。
// 约束：Observer 只做旁路诊断输出，不得影响返回值。
type Observer func(Step)

// Result 是一次成功解码的产物及其来源信息。
type Result struct {
	Text       string
	Encoding   string // "utf-8" / "latin-1"
	Compressed bool   // zlib 解压是否命中
}

// Error 是定位/解码阶段的可追溯错误（带 error_code）。
type Error struct {
	Code string
	Err  error
	Hex  string // 仅 undecodable_binary 时填充：原始字节的十六进制转储
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return "未找到 __VIEWSTATE 属性（或 value 不在 name 之后）"
	case ErrCodeInvalidEncoding:
		if e.Err != nil {
			return fmt.Sprintf("__VIEWSTATE 不是合法 base64：%v", e.Err)
		}
		return "__VIEWSTATE 不是合法 base64"
	case ErrCodeUndecodableBinary:
		return "解码后的字节无法按 utf-8/latin-1 呈现为文本（hex 转储见诊断）"
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

// 文本解码策略按顺序逐个尝试，取第一个成功者。
// 显式的有序列表让“回退链”成为数据而不是嵌套控制流。
type textDecoder struct {
	name   string
	decode func([]byte) (string, error)
}

var textDecoders = []textDecoder{
	{name: "utf-8", decode: decodeUTF8},
	{name: "latin-1", decode: decodeLatin1},
}

// ExtractDecode 在 raw 中定位 __VIEWSTATE 的属性值，并还原编码链：
// base64 →（尽力）zlib 解压 → utf-8 / latin-1 文本解码。
//
// 约定：
// - zlib 失败不是错误：静默回退到 base64 解码后的原始字节
// - 每个分支都会发出一条 Step 轨迹；obs 仅用于旁路诊断，不影响返回值
func ExtractDecode(raw string, obs Observer) (Result, error) {
	emit := func(s Step) {
		if obs != nil {
			obs(s)
		}
	}

	m := viewstateRE.FindStringSubmatch(raw)
	if m == nil {
		emit(Step{Stage: StageLocate, Outcome: "failed", Detail: "未命中属性模式"})
		return Result{}, &Error{Code: ErrCodeNotFound}
	}
	payload := strings.TrimSpace(m[1])
	emit(Step{Stage: StageLocate, Outcome: "ok", Detail: fmt.Sprintf("payload %d 字符", len(payload))})

	buf, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		emit(Step{Stage: StageBase64, Outcome: "failed", Detail: err.Error()})
		return Result{}, &Error{Code: ErrCodeInvalidEncoding, Err: err}
	}
	emit(Step{Stage: StageBase64, Outcome: "ok", Detail: fmt.Sprintf("%d 字节", len(buf))})

	res := Result{}
	if out, derr := inflate(buf); derr == nil {
		buf = out
		res.Compressed = true
		emit(Step{Stage: StageDecompress, Outcome: "ok", Detail: fmt.Sprintf("%d 字节", len(out))})
	} else {
		// 解压失败按契约不是错误：保留原始字节继续文本解码。
		emit(Step{Stage: StageDecompress, Outcome: "fallback", Detail: derr.Error()})
	}

	for _, d := range textDecoders {
		text, terr := d.decode(buf)
		if terr != nil {
			emit(Step{Stage: StageText, Outcome: "fallback", Detail: d.name + "：" + terr.Error()})
			continue
		}
		emit(Step{Stage: StageText, Outcome: "ok", Detail: d.name})
		res.Text = text
		res.Encoding = d.name
		return res, nil
	}

	h := hex.EncodeToString(buf)
	emit(Step{Stage: StageText, Outcome: "failed", Detail: "hex=" + truncate(h, 120)})
	return Result{}, &Error{Code: ErrCodeUndecodableBinary, Hex: h}
}

func inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.New("非法 UTF-8 序列")
	}
	return string(b), nil
}

func decodeLatin1(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
