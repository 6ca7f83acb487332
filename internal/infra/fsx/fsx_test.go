package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicReplace_WriteAndOverwrite(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomicReplace(dir, "extracted_pin.txt", []byte("111111\n")); err != nil {
		t.Fatalf("首次写入失败：%v", err)
	}
	if err := WriteFileAtomicReplace(dir, "extracted_pin.txt", []byte("222222\n")); err != nil {
		t.Fatalf("覆盖写入失败：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "extracted_pin.txt"))
	if err != nil {
		t.Fatalf("读取失败：%v", err)
	}
	if string(b) != "222222\n" {
		t.Fatalf("期望覆盖后内容 %q，实际 %q", "222222\n", string(b))
	}
}

func TestWriteFileAtomicReplace_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	if err := WriteFileAtomicReplace(dir, "report.json", []byte("{}\n")); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "report.json")); err != nil {
		t.Fatalf("目标文件不存在：%v", err)
	}
}

func TestWriteFileAtomicReplace_NoTempLeftoverOnRenameFailure(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(src, dst string) error { return errors.New("模拟 rename 失败") }
	defer func() { renameFunc = old }()

	if err := WriteFileAtomicReplace(dir, "pin.txt", []byte("x")); err == nil {
		t.Fatalf("期望错误")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读目录失败：%v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("rename 失败后不应残留临时文件：%s", e.Name())
		}
	}
}
