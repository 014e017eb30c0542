package tools

import "testing"

func TestFileCacheClearThenAdd(t *testing.T) {
	c := NewFileCache()
	c.AddFile("a", "/out/old.txt")
	c.AddFile("b", "/out/other.txt")

	c.Clear("a")
	c.AddFile("a", "/out/new.txt")

	got := c.Files("a")
	if len(got) != 1 || got[0] != "/out/new.txt" {
		t.Errorf("Files(a) = %v, want [/out/new.txt]", got)
	}

	// Other ids untouched by a's clear.
	if other := c.Files("b"); len(other) != 1 || other[0] != "/out/other.txt" {
		t.Errorf("Files(b) = %v, want [/out/other.txt]", other)
	}
}

func TestFileCacheOrderPreserved(t *testing.T) {
	c := NewFileCache()
	paths := []string{"/r/report.txt", "/r/report_thinking.txt", "/r/extra.txt"}
	for _, p := range paths {
		c.AddFile("tool", p)
	}

	got := c.Files("tool")
	if len(got) != len(paths) {
		t.Fatalf("Files() = %v, want %v", got, paths)
	}
	for i := range paths {
		if got[i] != paths[i] {
			t.Errorf("Files()[%d] = %q, want %q", i, got[i], paths[i])
		}
	}
}

func TestFileCacheEmptyAndCopySemantics(t *testing.T) {
	c := NewFileCache()
	if got := c.Files("missing"); len(got) != 0 {
		t.Errorf("Files(missing) = %v, want empty", got)
	}

	c.AddFile("t", "/one.txt")
	snapshot := c.Files("t")
	c.AddFile("t", "/two.txt")
	if len(snapshot) != 1 {
		t.Error("Files() must return a copy, not the live slice")
	}
}
