package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func buildArchive(t *testing.T, entries [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	p := NewPackager(&buf)
	for _, e := range entries {
		if err := p.Add(e[0], []byte(e[1])); err != nil {
			t.Fatalf("Add(%q) error = %v", e[0], err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func entryNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestPackager_PreservesInsertionOrder(t *testing.T) {
	entries := [][2]string{
		{"frame_0000.png", "aaa"},
		{"frame_0001.png", "bbb"},
		{"zeta.png", "ccc"},
		{"alpha.png", "ddd"},
	}
	names := entryNames(t, buildArchive(t, entries))

	if len(names) != 4 {
		t.Fatalf("entry count = %d, want 4", len(names))
	}
	for i, e := range entries {
		if names[i] != e[0] {
			t.Errorf("entry %d = %q, want %q", i, names[i], e[0])
		}
	}
}

func TestPackager_Deterministic(t *testing.T) {
	entries := [][2]string{
		{"frame_0000.png", "first"},
		{"frame_0001.png", "second"},
	}
	a := buildArchive(t, entries)
	b := buildArchive(t, entries)

	na, nb := entryNames(t, a), entryNames(t, b)
	if len(na) != len(nb) {
		t.Fatalf("entry counts differ: %d vs %d", len(na), len(nb))
	}
	for i := range na {
		if na[i] != nb[i] {
			t.Errorf("entry %d differs: %q vs %q", i, na[i], nb[i])
		}
	}
}

func TestPackager_ContentRoundTrip(t *testing.T) {
	data := buildArchive(t, [][2]string{{"hello.png", "hello bytes"}})

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(content) != "hello bytes" {
		t.Errorf("content = %q, want %q", content, "hello bytes")
	}
}

func TestPackager_AddAfterClose(t *testing.T) {
	var buf bytes.Buffer
	p := NewPackager(&buf)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Add("late.png", []byte("x")); err == nil {
		t.Fatal("Add() after Close() expected error")
	}
}

func TestFrameEntryName(t *testing.T) {
	tests := []struct {
		index int
		ext   string
		want  string
	}{
		{0, "png", "frame_0000.png"},
		{23, "png", "frame_0023.png"},
		{7, "webp", "frame_0007.webp"},
		{12345, "png", "frame_12345.png"},
	}
	for _, tt := range tests {
		if got := FrameEntryName(tt.index, tt.ext); got != tt.want {
			t.Errorf("FrameEntryName(%d, %q) = %q, want %q", tt.index, tt.ext, got, tt.want)
		}
	}
}

func TestAssetEntryName(t *testing.T) {
	if got := AssetEntryName("layer_01"); got != "layer_01.png" {
		t.Errorf("AssetEntryName = %q, want layer_01.png", got)
	}
}
