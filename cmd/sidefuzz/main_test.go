package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sidefuzz/sidefuzz/wasm/wasmtest"
)

func TestRun_NoArgsReturnsError(t *testing.T) {
	if code := run(nil); code != 1 {
		t.Fatalf("run(nil) = %d, want 1", code)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if code := run([]string{"bogus"}); code != 1 {
		t.Fatalf("run([bogus]) = %d, want 1", code)
	}
}

func TestRun_Help(t *testing.T) {
	if code := run([]string{"help"}); code != 0 {
		t.Fatalf("run([help]) = %d, want 0", code)
	}
}

func writeTestModule(t *testing.T) string {
	t.Helper()
	code := []byte{0x41, 0x00, 0x1A} // i32.const 0; drop
	raw := wasmtest.Guest(1, 0, 1, code, 0)
	dir := t.TempDir()
	path := filepath.Join(dir, "guest.wasm")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRun_Count(t *testing.T) {
	path := writeTestModule(t)
	if code := run([]string{"count", path, "ab"}); code != 0 {
		t.Fatalf("run([count %s ab]) = %d, want 0", path, code)
	}
}

func TestRun_CountWrongLength(t *testing.T) {
	path := writeTestModule(t)
	if code := run([]string{"count", path, "abcd"}); code != 1 {
		t.Fatalf("run([count %s abcd]) = %d, want 1", path, code)
	}
}
