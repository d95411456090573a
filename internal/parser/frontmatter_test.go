package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/halvard/synapse/internal/apperr"
)

func TestParseFrontmatter_TypedFields(t *testing.T) {
	content := "---\ntitle: Hello\ntags:\n  - go\n  - notes\ncreated: 2025-01-15\nmodified: 2025-02-01\naliases:\n  - hi\n---\n# Hello\nBody.\n"
	fm, err := ParseFrontmatter(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Title != "Hello" {
		t.Errorf("title = %q", fm.Title)
	}
	if !reflect.DeepEqual(fm.Tags, []string{"go", "notes"}) {
		t.Errorf("tags = %v", fm.Tags)
	}
	if fm.Created != "2025-01-15" || fm.Modified != "2025-02-01" {
		t.Errorf("created/modified = %q/%q", fm.Created, fm.Modified)
	}
	if !reflect.DeepEqual(fm.Aliases, []string{"hi"}) {
		t.Errorf("aliases = %v", fm.Aliases)
	}
}

func TestParseFrontmatter_ExtraKeepsOrderAndTypes(t *testing.T) {
	content := "---\nzeta: true\nalpha: 42\nbeta: plain\nlist:\n  - a\n  - b\n---\nbody"
	fm, err := ParseFrontmatter(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fm.Extra) != 4 {
		t.Fatalf("len(extra) = %d, want 4", len(fm.Extra))
	}
	if fm.Extra[0].Key != "zeta" || fm.Extra[0].Value.Kind != ValueBool || !fm.Extra[0].Value.Bool {
		t.Errorf("extra[0] = %+v", fm.Extra[0])
	}
	if fm.Extra[1].Key != "alpha" || fm.Extra[1].Value.Kind != ValueNumber || fm.Extra[1].Value.Num != 42 {
		t.Errorf("extra[1] = %+v", fm.Extra[1])
	}
	if fm.Extra[2].Value.Kind != ValueString || fm.Extra[2].Value.Str != "plain" {
		t.Errorf("extra[2] = %+v", fm.Extra[2])
	}
	if fm.Extra[3].Value.Kind != ValueSequence || len(fm.Extra[3].Value.Seq) != 2 {
		t.Errorf("extra[3] = %+v", fm.Extra[3])
	}
}

func TestParseFrontmatter_NoBlock(t *testing.T) {
	fm, err := ParseFrontmatter("# Just a heading\ntext")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Title != "" || len(fm.Tags) != 0 {
		t.Errorf("expected zero frontmatter, got %+v", fm)
	}
}

func TestParseFrontmatter_InvalidYAMLRecovers(t *testing.T) {
	fm, err := ParseFrontmatter("---\n: invalid: yaml: {{{\n---\nBody\n")
	if !errors.Is(err, apperr.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if fm.Title != "" {
		t.Errorf("expected zero frontmatter on parse error, got %+v", fm)
	}
}

func TestParseFrontmatter_UnclosedBlock(t *testing.T) {
	fm, err := ParseFrontmatter("---\ntitle: never closed\nbody continues")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Title != "" {
		t.Errorf("unclosed block should not parse, got title %q", fm.Title)
	}
}

func TestStripFrontmatter(t *testing.T) {
	content := "---\ntitle: X\n---\n\n# Body\ntext\n"
	body := StripFrontmatter(content)
	if body != "# Body\ntext\n" {
		t.Errorf("body = %q", body)
	}

	plain := "no frontmatter here"
	if got := StripFrontmatter(plain); got != plain {
		t.Errorf("plain content changed: %q", got)
	}
}
