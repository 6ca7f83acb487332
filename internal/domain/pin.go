package domain

import (
	"regexp"
	"strings"
)

// Pin 是提取结果的唯一载体：恰好 6 位 ASCII 数字。
//
// 约束：要么得到合法 Pin，要么缺失；宁可 not found，也不允许输出残缺数字。
type Pin string

var pinRE = regexp.MustCompile(`^[0-9]{6}$`)

// ParsePin 校验并解析 6 位数字串。
func ParsePin(s string) (Pin, bool) {
	s = strings.TrimSpace(s)
	if !pinRE.MatchString(s) {
		return "", false
	}
	return Pin(s), true
}
