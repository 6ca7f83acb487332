package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingInput 表示 CLI 与配置文件都没有提供任何输入。
	ErrCodeMissingInput = "config_missing_input"
)

const (
	// FileName 是配置文件的固定名字（位于 cwd，可选）。
	FileName = "pinext.json"
	// EnvDebug 置为非空即强制开启解码轨迹输出（通常来自 .env）。
	EnvDebug = "PINEXT_DEBUG"
	// DefaultOut 是保存产物（extracted_pin.txt / report.json）的默认目录。
	DefaultOut = "."
	// SourceInline 是 --text/标准输入这类非文件来源在 report 中的标记。
	SourceInline = "inline"
)

// 通过可替换的函数指针，让测试能稳定控制环境变量。
var getenv = os.Getenv

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --save=false 必须能覆盖 config.save=true。
type CLIArgs struct {
	Input string

	Text    string
	TextSet bool

	Out    string
	OutSet bool

	Save    bool
	SaveSet bool

	Debug    bool
	DebugSet bool
}

// FileConfig 对应 pinext.json 的解析结构。
type FileConfig struct {
	Input string `json:"input"`
	Out   string `json:"out"`
	Save  *bool  `json:"save"`
	Debug *bool  `json:"debug"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置
//（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Input 与 Text 互斥：Text 模式下 Input 为空，markup 直接来自命令行/标准输入。
	Input string
	Text  string

	// Source 是 report 中的来源标记：输入文件的绝对路径，或 "inline"。
	Source string

	Out   string
	Save  bool
	Debug bool
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingInput:
		return fmt.Sprintf("%s：未提供输入（位置参数、--text、标准输入或 %s 的 input 字段）", e.Code, FileName)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
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

// LoadEffective 读取 <cwd>/pinext.json（可选），与环境变量、CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：
// - 输入：CLI --text > CLI 位置参数 > config input；全部缺失则报 config_missing_input
// - out：CLI > config > 默认 "."（相对路径均相对 cwd 解析）
// - save：CLI --save/--save=false > config > 默认 false（dry-run，不写任何文件）
// - debug：CLI > 环境变量 PINEXT_DEBUG > config > 默认 false
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	eff := EffectiveConfig{}

	// 输入：--text（含标准输入）优先于文件路径。
	switch {
	case cli.TextSet && cli.Text != "":
		eff.Text = cli.Text
		eff.Source = SourceInline
	case strings.TrimSpace(cli.Input) != "":
		eff.Input = absCleanFrom(cwdAbs, cli.Input)
		eff.Source = eff.Input
	case strings.TrimSpace(fc.Input) != "":
		eff.Input = absCleanFrom(cwdAbs, fc.Input)
		eff.Source = eff.Input
	default:
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingInput}
	}

	// out：CLI > config > 默认。
	out := DefaultOut
	if cli.OutSet {
		out = cli.Out
	} else if strings.TrimSpace(fc.Out) != "" {
		out = fc.Out
	}
	if strings.TrimSpace(out) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: errors.New("out 不能为空")}
	}
	eff.Out = absCleanFrom(cwdAbs, out)

	// save：CLI > config > 默认 false。
	if cli.SaveSet {
		eff.Save = cli.Save
	} else if fc.Save != nil {
		eff.Save = *fc.Save
	}

	// debug：CLI > 环境变量 > config > 默认 false。
	switch {
	case cli.DebugSet:
		eff.Debug = cli.Debug
	case strings.TrimSpace(getenv(EnvDebug)) != "":
		eff.Debug = true
	case fc.Debug != nil:
		eff.Debug = *fc.Debug
	}

	return eff, nil
}

func readFileConfig(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件是可选的：不存在不报错。
			return FileConfig{}, nil
		}
		return FileConfig{}, err
	}
	var fc FileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, err
	}
	return fc, nil
}

func absCleanFrom(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
