package run

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/jhaBinoy/pin-extractor/internal/config"
	"github.com/jhaBinoy/pin-extractor/internal/domain"
	"github.com/jhaBinoy/pin-extractor/internal/infra/fsx"
	"github.com/jhaBinoy/pin-extractor/internal/inspect"
	"github.com/jhaBinoy/pin-extractor/internal/pin"
	"github.com/jhaBinoy/pin-extractor/internal/viewstate"
)

// PinFileName 是保存 PIN 的固定文件名（save 模式下写入 <out>/ 目录）。
const PinFileName = "extracted_pin.txt"

// Execute 执行一次提取，并返回对外稳定的 Report。
// 该函数把所有失败“降级”为 Report 字段：任何输入都不产生程序级故障。
func Execute(eff config.EffectiveConfig) domain.Report {
	return ExecuteWithObserver(eff, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出轨迹信息
//（由上层决定是否启用）。
func ExecuteWithObserver(eff config.EffectiveConfig, obs Observer) domain.Report {
	started := time.Now().UTC()
	if obs != nil {
		obs.OnStart(eff)
	}

	rep := domain.Report{
		Source:    eff.Source,
		Save:      eff.Save,
		StartedAt: started,
	}

	raw, ok := readInput(eff, &rep)
	if !ok {
		return finish(&rep, obs)
	}

	res, err := viewstate.ExtractDecode(raw, func(s viewstate.Step) {
		rep.Steps = append(rep.Steps, domain.StepResult{Stage: s.Stage, Outcome: s.Outcome, Detail: s.Detail})
		if obs != nil {
			obs.OnStep(s)
		}
	})
	if err != nil {
		code := viewstate.Code(err)
		if code == "" {
			code = domain.ErrCodeIOFailed
		}
		rep.ErrorCode = code
		rep.ErrorMsg = err.Error()

		var ve *viewstate.Error
		if errors.As(err, &ve) && ve.Hex != "" {
			// undecodable_binary：hex 转储是合法的非 PIN 产物，照常送进匹配
			//（按定义不可能命中，转储本身保留在 report 里供诊断）。
			rep.Encoding = "hex"
			rep.HexDump = ve.Hex
			if p, found := pin.Find(ve.Hex); found {
				rep.Pin = string(p)
			}
		}
		if code == domain.ErrCodeViewstateNotFound {
			attachInputs(&rep, raw)
		}
		return finish(&rep, obs)
	}

	rep.Encoding = res.Encoding
	rep.Compressed = res.Compressed

	p, found := pin.Find(res.Text)
	if !found {
		rep.ErrorCode = domain.ErrCodePinNotFound
		rep.ErrorMsg = "解码成功，但没有带 PIN 标签的 6 位数字"
		return finish(&rep, obs)
	}
	rep.Pin = string(p)

	if eff.Save {
		if err := fsx.WriteFileAtomicReplace(eff.Out, PinFileName, []byte(string(p)+"\n")); err != nil {
			rep.ErrorCode = domain.ErrCodeIOFailed
			rep.ErrorMsg = fmt.Sprintf("写入 %s 失败：%v", PinFileName, err)
		}
	}
	return finish(&rep, obs)
}

// readInput 读取 markup 来源；失败时直接把错误写进 rep 并返回 false。
func readInput(eff config.EffectiveConfig, rep *domain.Report) (string, bool) {
	if eff.Input == "" {
		// --text/标准输入与文件来源同一标准：必须是合法 UTF-8 文本。
		if !utf8.ValidString(eff.Text) {
			rep.ErrorCode = domain.ErrCodeInputNotText
			rep.ErrorMsg = "输入不是合法的 UTF-8 文本"
			return "", false
		}
		return eff.Text, true
	}
	b, err := os.ReadFile(eff.Input)
	if err != nil {
		rep.ErrorCode = domain.ErrCodeIOFailed
		rep.ErrorMsg = fmt.Sprintf("读取输入文件失败：%v", err)
		return "", false
	}
	if !utf8.Valid(b) {
		rep.ErrorCode = domain.ErrCodeInputNotText
		rep.ErrorMsg = fmt.Sprintf("输入文件不是合法的 UTF-8 文本：%q", eff.Input)
		return "", false
	}
	return string(b), true
}

// attachInputs 在定位失败时附上表单字段盘点（诊断增强；盘点失败不改变主错误）。
func attachInputs(rep *domain.Report, raw string) {
	ins, err := inspect.Inputs(raw)
	if err != nil {
		return
	}
	rep.Inputs = ins
	if inspect.HasViewstate(ins) {
		rep.ErrorMsg += "；注意：DOM 中存在名为 __VIEWSTATE 的字段（可能 value 写在 name 之前）"
	}
}

func finish(rep *domain.Report, obs Observer) domain.Report {
	rep.FinishedAt = time.Now().UTC()
	rep.Finalize()
	if obs != nil {
		obs.OnDone(*rep, rep.FinishedAt.Sub(rep.StartedAt))
	}
	return *rep
}
