package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jhaBinoy/pin-extractor/internal/app/run"
	"github.com/jhaBinoy/pin-extractor/internal/config"
	"github.com/jhaBinoy/pin-extractor/internal/domain"
	"github.com/jhaBinoy/pin-extractor/internal/infra/fsx"
	"github.com/jhaBinoy/pin-extractor/internal/inspect"
)

func main() {
	// .env 只是本地开发的便捷开关（例如 PINEXT_DEBUG=1）；不存在时静默忽略。
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	case "inspect":
		if code := inspectCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ca, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	if ca.Input == "-" {
		// 位置参数 "-"：markup 来自标准输入（对应“粘贴 HTML”的用法）。
		b, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			fmt.Fprintf(os.Stderr, "读取标准输入失败：%v\n", rerr)
			return 1
		}
		ca.Input = ""
		ca.Text = string(b)
		ca.TextSet = true
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, ca)
	if err != nil {
		// 配置失败也要维持输出契约：合成一条 failed report。
		rep := reportForConfigError(err)
		emitReport(rep, config.EffectiveConfig{})
		if config.Code(err) == config.ErrCodeMissingInput && isTTY(os.Stderr) {
			fmt.Fprintln(os.Stderr, `使用 "pinext run --help" 查看用法。`)
		}
		return 1
	}

	var obs run.Observer
	if eff.Debug {
		obs = newTraceUI(os.Stderr)
	}

	rep := run.ExecuteWithObserver(eff, obs)

	// save：report.json 必须写入 <out>/；dry-run 禁止落盘。
	if eff.Save {
		if werr := writeReportFile(eff.Out, rep); werr != nil {
			fmt.Fprintf(os.Stderr, "写入 report.json 失败：%v\n", werr)
			emitReport(rep, eff)
			return 1
		}
	}

	emitReport(rep, eff)
	if rep.Status == domain.StatusOK {
		return 0
	}
	return 1
}

func inspectCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printInspectUsage()
			return 0
		}
	}

	raw, label, err := readInspectInput(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printInspectUsage()
		return 2
	}

	inputs, err := inspect.Inputs(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "解析失败：%v\n", err)
		return 1
	}

	if !isTTY(os.Stdout) {
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(inputs)
		return 0
	}

	fmt.Fprintf(os.Stdout, "%s：共 %d 个 <input>\n", label, len(inputs))
	for _, in := range inputs {
		name := in.Name
		if name == "" {
			name = "<无 name>"
		}
		typ := in.Type
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(os.Stdout, "  %-28s %-10s value=%d 字符\n", name, typ, in.ValueLen)
	}
	if !inspect.HasViewstate(inputs) {
		fmt.Fprintln(os.Stdout, "未发现名为 __VIEWSTATE 的字段。")
	}
	return 0
}

func readInspectInput(args []string) (raw, label string, err error) {
	path := ""
	text := ""
	textSet := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case strings.HasPrefix(a, "--text="):
			text = strings.TrimPrefix(a, "--text=")
			textSet = true
		case strings.HasPrefix(a, "-") && a != "-":
			return "", "", fmt.Errorf("未知参数 %q", a)
		default:
			if path != "" {
				return "", "", fmt.Errorf("重复的输入：%q 与 %q", path, a)
			}
			path = a
		}
	}

	if textSet {
		return text, config.SourceInline, nil
	}
	if path == "-" {
		b, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return "", "", fmt.Errorf("读取标准输入失败：%v", rerr)
		}
		return string(b), config.SourceInline, nil
	}
	if path == "" {
		return "", "", fmt.Errorf("需要一个输入文件、\"-\" 或 --text")
	}
	b, rerr := os.ReadFile(path)
	if rerr != nil {
		return "", "", fmt.Errorf("读取输入文件失败：%v", rerr)
	}
	return string(b), path, nil
}

func parseRunArgs(args []string) (config.CLIArgs, error) {
	ca := config.CLIArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case strings.HasPrefix(a, "--text="):
			ca.Text = strings.TrimPrefix(a, "--text=")
			ca.TextSet = true
		case a == "--out":
			if i+1 >= len(args) {
				return config.CLIArgs{}, fmt.Errorf("--out 需要一个值")
			}
			i++
			ca.Out = args[i]
			ca.OutSet = true
		case strings.HasPrefix(a, "--out="):
			ca.Out = strings.TrimPrefix(a, "--out=")
			ca.OutSet = true
		case a == "--save":
			ca.Save = true
			ca.SaveSet = true
		case strings.HasPrefix(a, "--save="):
			v := strings.TrimPrefix(a, "--save=")
			switch v {
			case "true":
				ca.Save = true
			case "false":
				ca.Save = false
			default:
				return config.CLIArgs{}, fmt.Errorf("--save 只能是 true 或 false，实际是 %q", v)
			}
			ca.SaveSet = true
		case a == "--debug":
			ca.Debug = true
			ca.DebugSet = true
		case strings.HasPrefix(a, "-") && a != "-":
			return config.CLIArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ca.Input != "" {
				return config.CLIArgs{}, fmt.Errorf("重复的输入：%q 与 %q", ca.Input, a)
			}
			ca.Input = a
		}
	}

	if ca.TextSet && ca.Input != "" {
		return config.CLIArgs{}, fmt.Errorf("--text 与输入文件不能同时指定")
	}

	return ca, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  pinext run [input|-] [--text=<markup>] [--out dir] [--save[=true|false]] [--debug]
  pinext inspect [input|-] [--text=<markup>]

命令：
  run      定位并解码 __VIEWSTATE，提取其中带 PIN 标签的 6 位数字
  inspect  盘点 markup 中的 <input> 字段（定位失败时的诊断）

使用 "pinext run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  pinext run [input|-] [--text=<markup>] [--out dir] [--save[=true|false]] [--debug]

参数：
  input       输入文件路径；"-" 表示从标准输入读取（须为 UTF-8 文本）
  --text      直接给出 markup（与输入文件互斥）
  --out       保存产物的目录（默认 "."；仅 save 模式使用）
  --save      写入 extracted_pin.txt 与 report.json（默认 dry-run，不写文件）
  --debug     在 stderr 输出解码链轨迹（也可用环境变量 PINEXT_DEBUG=1）
  -h, --help  显示帮助

未提供输入时读取 <cwd>/pinext.json 的 input 字段。
stdout 为非终端时，输出恰好一个 JSON report（轨迹/提示均走 stderr）。
`)
}

func printInspectUsage() {
	fmt.Fprint(os.Stdout, `用法：
  pinext inspect [input|-] [--text=<markup>]

按 DOM 解析 markup 并列出全部 <input> 字段（name/type/value 长度）。
与 run 的正则定位不同，inspect 对属性顺序不敏感，可用来确认
__VIEWSTATE 是否以正则未覆盖的形态存在。
`)
}

func emitReport(rep domain.Report, eff config.EffectiveConfig) {
	if isTTY(os.Stdout) {
		switch rep.Status {
		case domain.StatusOK:
			fmt.Fprintf(os.Stdout, "PIN: %s\n", rep.Pin)
			if eff.Save {
				fmt.Fprintf(os.Stdout, "已保存：%s\n", eff.Out)
			}
		case domain.StatusPinNotFound:
			fmt.Fprintln(os.Stdout, "未找到 PIN：解码成功，但没有带 PIN 标签的 6 位数字。")
		default:
			fmt.Fprintf(os.Stderr, "%s: %s\n", rep.ErrorCode, rep.ErrorMsg)
			for _, in := range rep.Inputs {
				fmt.Fprintf(os.Stderr, "  存在字段：%s (type=%s, value=%d 字符)\n", in.Name, in.Type, in.ValueLen)
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 Report JSON（摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rep)
	fmt.Fprintf(os.Stderr, "完成：status=%s encoding=%s compressed=%v\n",
		rep.Status, rep.Encoding, rep.Compressed,
	)
}

func reportForConfigError(err error) domain.Report {
	now := time.Now().UTC()
	code := domain.ErrCodeConfigInvalid
	if config.Code(err) == config.ErrCodeMissingInput {
		code = domain.ErrCodeConfigMissingInput
	}
	rep := domain.Report{
		StartedAt:  now,
		FinishedAt: now,
		ErrorCode:  code,
		ErrorMsg:   err.Error(),
	}
	rep.Finalize()
	return rep
}

func writeReportFile(outDir string, rep domain.Report) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(outDir, "report.json", b)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
