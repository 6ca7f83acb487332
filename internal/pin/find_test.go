package pin

import "testing"

func TestFind_LabelWithSeparator(t *testing.T) {
	got, ok := Find("some text PIN: 123456 more text")
	if !ok {
		t.Fatalf("期望命中，实际未命中")
	}
	if string(got) != "123456" {
		t.Fatalf("期望 123456，实际 %q", got)
	}
}

func TestFind_SevenDigitRunNeverMatches(t *testing.T) {
	if got, ok := Find("prefix PIN1234567 suffix"); ok {
		t.Fatalf("7 位数字串不应产生匹配，实际命中 %q", got)
	}
}

func TestFind_NoPin(t *testing.T) {
	if got, ok := Find("no pin here"); ok {
		t.Fatalf("期望未命中，实际命中 %q", got)
	}
}

func TestFind_EmptyText(t *testing.T) {
	if _, ok := Find(""); ok {
		t.Fatalf("空输入不应命中")
	}
}

func TestFind_CaseInsensitiveLabel(t *testing.T) {
	got, ok := Find("your pin=654321")
	if !ok || string(got) != "654321" {
		t.Fatalf("期望 654321，实际 ok=%v got=%q", ok, got)
	}
}

func TestFind_AdjacentDigits(t *testing.T) {
	// 标签与数字之间间隔可以为零。
	got, ok := Find("PIN123456")
	if !ok || string(got) != "123456" {
		t.Fatalf("期望 123456，实际 ok=%v got=%q", ok, got)
	}
}

func TestFind_SkipsLongRunToNearestQualifying(t *testing.T) {
	// 第一个数字段是 7 位（跳过），最近的合格段是 999999。
	got, ok := Find("PIN 1234567 x 999999")
	if !ok || string(got) != "999999" {
		t.Fatalf("期望 999999，实际 ok=%v got=%q", ok, got)
	}
}

func TestFind_ShortRunsSkipped(t *testing.T) {
	got, ok := Find("PIN 12 345 112233 rest")
	if !ok || string(got) != "112233" {
		t.Fatalf("期望 112233，实际 ok=%v got=%q", ok, got)
	}
}

func TestFind_GapDoesNotCrossNewline(t *testing.T) {
	if got, ok := Find("PIN\n123456"); ok {
		t.Fatalf("间隔不得跨换行，实际命中 %q", got)
	}
}

func TestFind_SecondLabelWins(t *testing.T) {
	// 第一个标签同行内没有合格数字段；第二个标签命中。
	got, ok := Find("PIN nothing here\nPIN code 424242 done")
	if !ok || string(got) != "424242" {
		t.Fatalf("期望 424242，实际 ok=%v got=%q", ok, got)
	}
}

func TestFind_FirstQualifyingAcrossLabels(t *testing.T) {
	// 两个标签都能命中时，按标签出现顺序取第一个。
	got, ok := Find("PIN 111111 and PIN 222222")
	if !ok || string(got) != "111111" {
		t.Fatalf("期望 111111，实际 ok=%v got=%q", ok, got)
	}
}

func TestFind_DigitsInGap(t *testing.T) {
	// 间隔中的短数字段不阻止后面的合格段。
	got, ok := Find("PIN v2 token 987654")
	if !ok || string(got) != "987654" {
		t.Fatalf("期望 987654，实际 ok=%v got=%q", ok, got)
	}
}
