package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempLibrary(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempLibrary(t)
	content := []byte(`<score-partwise version="4.0"/>`)
	if err := s.Write("etude.musicxml", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("etude.musicxml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempLibrary(t)
	if err := s.Write("bach/inventions/no1.xml", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("bach/inventions/no1.xml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestReadMissingWrapsNotExist(t *testing.T) {
	s := tempLibrary(t)
	_, err := s.Read("nope.xml")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("del.xml", []byte("bye"))
	if err := s.Delete("del.xml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.xml"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestMove(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("old.mxl", []byte("data"))
	if err := s.Move("old.mxl", "sub/new.mxl"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("sub/new.mxl")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.mxl"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestListFiltersScoreFiles(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("a.xml", []byte("a"))
	_ = s.Write("sub/b.MusicXML", []byte("bb"))
	_ = s.Write("c.mxl", []byte("ccc"))
	_ = s.Write("readme.txt", []byte("not a score"))
	_ = os.WriteFile(filepath.Join(s.root, tempPrefix+"1.xml"), []byte("partial"), 0o644)

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	byPath := map[string]int{}
	for i, it := range items {
		byPath[it.Path] = i
	}
	if got := items[byPath["a.xml"]].Checksum; got != Checksum([]byte("a")) {
		t.Errorf("checksum for a.xml = %q", got)
	}
	if got := items[byPath["sub/b.MusicXML"]].Size; got != 2 {
		t.Errorf("size of sub/b.MusicXML = %d, want 2", got)
	}
}

func TestIsScoreFile(t *testing.T) {
	cases := map[string]bool{
		"a.xml":          true,
		"b.MXL":          true,
		"dir/c.musicxml": true,
		"d.mid":          false,
		"e":              false,
	}
	for name, want := range cases {
		if got := IsScoreFile(name); got != want {
			t.Errorf("IsScoreFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempLibrary(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.xml",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("atomic.xml", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.xml", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.xml")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, tempPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestChecksumIsStable(t *testing.T) {
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Checksum(nil); got != want {
		t.Errorf("Checksum(nil) = %q, want %q", got, want)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/partitura-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "partitura-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestStat(t *testing.T) {
	s := tempLibrary(t)
	content := []byte("<score-partwise/>")
	if err := s.Write("suites/no1.xml", content); err != nil {
		t.Fatal(err)
	}
	sf, err := s.Stat("suites/no1.xml")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if sf.Path != "suites/no1.xml" || sf.Size != int64(len(content)) || sf.Checksum != Checksum(content) {
		t.Errorf("stat = %+v", sf)
	}
	if _, err := s.Stat("suites/none.xml"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing stat err = %v", err)
	}
	if _, err := s.Stat("suites"); err == nil {
		t.Error("expected error for directory")
	}
}

func TestWriteUsesReadableMode(t *testing.T) {
	s := tempLibrary(t)
	if err := s.Write("a.xml", []byte("x")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(s.Root(), "a.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != fileMode {
		t.Errorf("mode = %v, want %v", info.Mode().Perm(), os.FileMode(fileMode))
	}
}

func TestMoveKeepsExistingTarget(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("a.xml", []byte("a"))
	_ = s.Write("b.xml", []byte("b"))
	if err := s.Move("a.xml", "b.xml"); !errors.Is(err, os.ErrExist) {
		t.Fatalf("err = %v, want ErrExist", err)
	}
	got, _ := s.Read("b.xml")
	if string(got) != "b" {
		t.Errorf("target overwritten: %q", got)
	}
}

func TestListSkipsHiddenDirs(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write(".git/objects/x.xml", []byte("x"))
	_ = s.Write("visible.xml", []byte("v"))
	files, err := s.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Path != "visible.xml" {
		t.Errorf("files = %+v", files)
	}
}
