package parser

import (
	"reflect"
	"testing"
)

const sampleNote = "---\ntitle: Sample\ntags:\n  - alpha\n  - \"#beta\"\n---\n# Sample Note\n\nLinks to [[Other]] and [[Other]] twice, tagged #gamma.\n\n## Details\n\nmore words here\n"

func TestIndexNote_Idempotent(t *testing.T) {
	fm, _ := ParseFrontmatter(sampleNote)
	first := IndexNote("notes/sample.md", sampleNote, fm.Tags)
	second := IndexNote("notes/sample.md", sampleNote, fm.Tags)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("IndexNote is not deterministic:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestIndexNote_Fields(t *testing.T) {
	fm, _ := ParseFrontmatter(sampleNote)
	idx := IndexNote("notes/sample.md", sampleNote, fm.Tags)

	if idx.Title != "Sample Note" {
		t.Errorf("title = %q (frontmatter title is overlaid by the caller)", idx.Title)
	}
	if want := []string{"Other", "Other"}; !reflect.DeepEqual(idx.OutgoingLinks, want) {
		t.Errorf("links = %v, want %v", idx.OutgoingLinks, want)
	}
	// Body tags first, then frontmatter tags with "#" prepended when missing.
	if want := []string{"#gamma", "#alpha", "#beta"}; !reflect.DeepEqual(idx.Tags, want) {
		t.Errorf("tags = %v, want %v", idx.Tags, want)
	}
	if len(idx.Headings) != 2 || idx.Headings[0].Text != "Sample Note" || idx.Headings[1].Level != 2 {
		t.Errorf("headings = %+v", idx.Headings)
	}
	if idx.WordCount == 0 {
		t.Error("word count should not be zero")
	}
}

func TestIndexNote_YAMLDoesNotLeakIntoBodyScans(t *testing.T) {
	content := "---\ntitle: X\nnote: '# not a heading #notatag'\n---\nreal body\n"
	idx := IndexNote("x.md", content, nil)
	if len(idx.Headings) != 0 {
		t.Errorf("headings leaked from frontmatter: %+v", idx.Headings)
	}
	if len(idx.Tags) != 0 {
		t.Errorf("tags leaked from frontmatter: %v", idx.Tags)
	}
	if idx.WordCount != 2 {
		t.Errorf("word count = %d, want 2", idx.WordCount)
	}
	if idx.Title != "x" {
		t.Errorf("title = %q, want filename stem", idx.Title)
	}
}
