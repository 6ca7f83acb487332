package pin

import (
	"regexp"

	"github.com/jhaBinoy/pin-extractor/internal/domain"
)

var labelRE = regexp.MustCompile(`(?i)PIN`)

// Find 在 text 中查找第一个带 "PIN" 标签的 6 位数字。
//
// 规则（硬约束）：
// - 标签不区分大小写；标签与数字之间允许任意间隔字符，但不跨换行
// - 数字串必须是“恰好 6 位”的极大数字段：前后紧邻字符都不是数字。
//   7 位及以上的数字串永远不产生匹配，哪怕其中含有 6 位子串
// - 多个 PIN 标签按出现顺序尝试，每个标签取其后最近的合格数字段
func Find(text string) (domain.Pin, bool) {
	if text == "" {
		return "", false
	}
	for _, loc := range labelRE.FindAllStringIndex(text, -1) {
		if p, ok := scanAfterLabel(text, loc[1]); ok {
			return p, true
		}
	}
	return "", false
}

// scanAfterLabel 从 start 起向后扫描最近的“恰好 6 位”极大数字段。
// 遇到换行即放弃（交给下一个标签出现位置）。
func scanAfterLabel(text string, start int) (domain.Pin, bool) {
	i := start
	for i < len(text) {
		c := text[i]
		if c == '\n' {
			return "", false
		}
		if !isDigit(c) {
			i++
			continue
		}

		// i 是数字段起点（标签尾字符不是数字；段内推进保证不落在段中间）。
		j := i
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		if j-i == 6 && (i == 0 || !isDigit(text[i-1])) {
			if p, ok := domain.ParsePin(text[i:j]); ok {
				return p, true
			}
		}
		i = j
	}
	return "", false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
