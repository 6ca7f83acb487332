package inspect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jhaBinoy/pin-extractor/internal/domain"
)

// Inputs 用 goquery 解析 markup，盘点其中全部 <input> 元素。
//
// 用途是诊断：当正则定位 __VIEWSTATE 失败时，这份清单能回答
// “页面里到底有哪些表单字段、__VIEWSTATE 是否以别的形态存在”。
// goquery 按 DOM 解析，对属性顺序不敏感，因此能看到正则看不到的形态。
func Inputs(raw string) ([]domain.FormInput, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}

	inputs := make([]domain.FormInput, 0, 8)
	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.AttrOr("name", ""))
		typ := strings.TrimSpace(s.AttrOr("type", ""))
		if name == "" && typ == "" {
			// 既无 name 也无 type 的元素对诊断没有信息量。
			return
		}
		val := s.AttrOr("value", "")
		inputs = append(inputs, domain.FormInput{Name: name, Type: typ, ValueLen: len(val)})
	})
	return inputs, nil
}

// HasViewstate 判断盘点结果中是否存在名为 __VIEWSTATE 的字段（不区分大小写）。
// 用于在 not found 诊断里给出更直接的提示：属性存在但正则未命中。
func HasViewstate(inputs []domain.FormInput) bool {
	for _, in := range inputs {
		if strings.EqualFold(in.Name, "__VIEWSTATE") {
			return true
		}
	}
	return false
}
