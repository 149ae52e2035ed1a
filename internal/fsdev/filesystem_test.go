package fsdev

import (
	"os"
	"path/filepath"
	"testing"

	"varvara/internal/uxn"
)

func newTestFS(t *testing.T) (*Filesystem, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return fs, dir
}

func writeNameAndTrigger(m *uxn.Machine, name string, addr uint16) {
	copy(m.Ram[addr:], name)
	m.Ram[int(addr)+len(name)] = 0
	m.DevPoke2(portNameAddr, addr)
}

func TestOpenStatWriteReadRoundTrip(t *testing.T) {
	fs, dir := newTestFS(t)
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	m := &uxn.Machine{}
	writeNameAndTrigger(m, "hello.txt", 0x1000)
	fs.AfterDEO(m, portOpen)
	if m.DevPeek2(portResult) != 1 {
		t.Fatalf("open result = %d, want 1", m.DevPeek2(portResult))
	}

	m.DevPoke2(portStatAddr, 0x2000)
	m.DevPoke2(portIOLen, 4)
	fs.AfterDEO(m, portStat)
	got := string(m.Ram[0x2000:0x2004])
	if got != "0002" {
		t.Fatalf("stat = %q, want %q", got, "0002")
	}

	m.DevPoke2(portIOAddr, 0x3000)
	m.DevPoke2(portIOLen, 10)
	fs.AfterDEO(m, portRead)
	if n := m.DevPeek2(portResult); n != 2 {
		t.Fatalf("read result = %d, want 2", n)
	}
	if string(m.Ram[0x3000:0x3002]) != "hi" {
		t.Fatalf("read data = %q, want %q", m.Ram[0x3000:0x3002], "hi")
	}
}

func TestWriteThenRemove(t *testing.T) {
	fs, dir := newTestFS(t)
	m := &uxn.Machine{}
	writeNameAndTrigger(m, "new.txt", 0x1000)
	fs.AfterDEO(m, portOpen)

	copy(m.Ram[0x4000:], "payload")
	m.DevPoke2(portWriteAddr, 0x4000)
	m.DevPoke2(portIOLen, 7)
	fs.AfterDEO(m, portWrite)
	if n := m.DevPeek2(portResult); n != 7 {
		t.Fatalf("write result = %d, want 7", n)
	}

	data, err := os.ReadFile(filepath.Join(dir, "new.txt"))
	if err != nil || string(data) != "payload" {
		t.Fatalf("file contents = %q err=%v, want %q", data, err, "payload")
	}

	fs.AfterDEO(m, portDelete)
	if m.DevPeek2(portResult) != 1 {
		t.Fatalf("delete result = %d, want 1", m.DevPeek2(portResult))
	}
	if _, err := os.Stat(filepath.Join(dir, "new.txt")); !os.IsNotExist(err) {
		t.Fatalf("file should no longer exist, err=%v", err)
	}
}

func TestSandboxRejectsEscape(t *testing.T) {
	fs, _ := newTestFS(t)
	if _, ok := fs.resolve("../../etc/passwd"); ok {
		t.Fatalf("resolve should reject a path climbing above root")
	}
}

func TestStatUnavailableForMissingFile(t *testing.T) {
	fs, _ := newTestFS(t)
	m := &uxn.Machine{}
	writeNameAndTrigger(m, "missing.txt", 0x1000)
	fs.AfterDEO(m, portOpen)

	m.DevPoke2(portStatAddr, 0x2000)
	m.DevPoke2(portIOLen, 4)
	fs.AfterDEO(m, portStat)
	if got := string(m.Ram[0x2000:0x2004]); got != "!!!!" {
		t.Fatalf("stat = %q, want %q", got, "!!!!")
	}
}

func TestListDirForStat(t *testing.T) {
	fs, dir := newTestFS(t)
	os.Mkdir(filepath.Join(dir, "sub"), 0755)
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644)

	entries, err := fs.ListDirForStat(".")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %v, want 2 entries", entries)
	}
}

func TestNormalizePathCollapsesDotDot(t *testing.T) {
	clean, ok := normalizePath("a/b/../c")
	if !ok || clean != "a/c" {
		t.Fatalf("normalizePath = %q, %v, want \"a/c\", true", clean, ok)
	}
	if _, ok := normalizePath("../escape"); ok {
		t.Fatalf("normalizePath should reject climbing above the root")
	}
}
