package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deksmo/deksmo/internal/model"
)

func bytesSource(relPath string) Source {
	return Source{
		Name:         filepath.Base(relPath),
		RelativePath: relPath,
		Data:         []byte{0xff, 0xd8, 0xff},
		MIME:         "image/jpeg",
		Size:         3,
	}
}

func chapterNames(chapters []*model.Chapter) []string {
	names := make([]string, len(chapters))
	for i, c := range chapters {
		names[i] = c.Name
	}
	return names
}

func TestIngestGroupsByFolder(t *testing.T) {
	chapters := Ingest([]Source{
		bytesSource("Ch 10/1.jpg"),
		bytesSource("Ch 2/1.jpg"),
		bytesSource("Ch 2/2.jpg"),
		bytesSource("cover.jpg"),
	})

	got := chapterNames(chapters)
	want := []string{"Ch 2", "Ch 10", "Loose Images"}
	if len(got) != len(want) {
		t.Fatalf("chapters = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chapters = %v, want %v", got, want)
		}
	}
	if n := len(chapters[0].Images); n != 2 {
		t.Fatalf("Ch 2 has %d images, want 2", n)
	}
}

func TestIngestNaturalImageOrder(t *testing.T) {
	chapters := Ingest([]Source{
		bytesSource("ChapterA/10.jpg"),
		bytesSource("ChapterA/1.jpg"),
		bytesSource("ChapterA/3.jpg"),
		bytesSource("ChapterA/2.jpg"),
	})
	if len(chapters) != 1 {
		t.Fatalf("got %d chapters, want 1", len(chapters))
	}

	want := []string{"1.jpg", "2.jpg", "3.jpg", "10.jpg"}
	for i, img := range chapters[0].Images {
		if img.Name != want[i] {
			t.Fatalf("image %d = %s, want %s", i, img.Name, want[i])
		}
	}
}

func TestIngestDeepPathUsesParentFolder(t *testing.T) {
	chapters := Ingest([]Source{bytesSource("series/vol1/ch3/7.png")})
	if len(chapters) != 1 || chapters[0].Name != "ch3" {
		t.Fatalf("chapters = %v, want [ch3]", chapterNames(chapters))
	}
}

func TestIngestFiltersNonImages(t *testing.T) {
	chapters := Ingest([]Source{
		bytesSource("Ch/1.jpg"),
		{Name: "notes.txt", RelativePath: "Ch/notes.txt"},
		{Name: "thumbs.db", RelativePath: "Ch/thumbs.db"},
	})
	if len(chapters) != 1 || len(chapters[0].Images) != 1 {
		t.Fatalf("got %d chapters, want 1 with a single image", len(chapters))
	}
}

func TestIngestIdempotent(t *testing.T) {
	sources := []Source{
		bytesSource("Ch/2.jpg"),
		bytesSource("Ch/10.jpg"),
		bytesSource("Ch/1.jpg"),
	}
	first := Ingest(sources)
	second := Ingest(sources)

	if first[0].Name != second[0].Name {
		t.Fatalf("names differ: %s vs %s", first[0].Name, second[0].Name)
	}
	if len(first[0].Images) != len(second[0].Images) {
		t.Fatalf("image counts differ")
	}
	for i := range first[0].Images {
		if first[0].Images[i].Name != second[0].Images[i].Name {
			t.Fatalf("image %d differs: %s vs %s", i, first[0].Images[i].Name, second[0].Images[i].Name)
		}
	}
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want bool
	}{
		{name: "jpg ext", src: Source{Name: "a.JPG"}, want: true},
		{name: "webp ext", src: Source{Name: "a.webp"}, want: true},
		{name: "gif ext", src: Source{Name: "a.gif"}, want: true},
		{name: "mime only", src: Source{Name: "blob", MIME: "image/png"}, want: true},
		{name: "text file", src: Source{Name: "a.txt"}, want: false},
		{name: "no hint", src: Source{Name: "blob"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accepts(tt.src); got != tt.want {
				t.Errorf("Accepts(%q) = %v, want %v", tt.src.Name, got, tt.want)
			}
		})
	}
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(rel string, data []byte) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("ChapterA/1.jpg", []byte{0xff, 0xd8, 0xff})
	mustWrite("ChapterA/2.jpg", []byte{0xff, 0xd8, 0xff})
	mustWrite("ChapterB/1.png", []byte{0x89, 0x50})
	mustWrite("ChapterB/readme.md", []byte("notes"))

	sources, err := ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("got %d sources, want 3", len(sources))
	}
	for _, src := range sources {
		if src.Path == "" {
			t.Errorf("source %s has no path handle", src.Name)
		}
		if src.RelativePath == "" {
			t.Errorf("source %s has no relative path", src.Name)
		}
	}

	chapters := Ingest(sources)
	got := chapterNames(chapters)
	want := []string{"ChapterA", "ChapterB"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("chapters = %v, want %v", got, want)
	}
}

func TestScanDirRejectsFiles(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.jpg")
	if err := os.WriteFile(file, []byte{0xff}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ScanDir(file); err == nil {
		t.Fatal("ScanDir on a file should fail")
	}
}
