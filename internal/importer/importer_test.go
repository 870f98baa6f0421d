package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTextFile(t *testing.T) {
	path := writeTemp(t, "invoice reminder.txt", "Payment is due on Friday.\n")
	d, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Title != "invoice reminder" {
		t.Errorf("Title = %q", d.Title)
	}
	if d.Body != "Payment is due on Friday." {
		t.Errorf("Body = %q", d.Body)
	}
}

func TestReadMarkdownFile(t *testing.T) {
	path := writeTemp(t, "notes.md", "# Agenda\n\n- review contract\n")
	d, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Title != "notes" {
		t.Errorf("Title = %q", d.Title)
	}
	if !strings.Contains(d.Body, "review contract") {
		t.Errorf("Body = %q", d.Body)
	}
}

func TestReadHTMLStripsMarkup(t *testing.T) {
	doc := `<html><head>
	  <style>body { color: red; }</style>
	  <script>alert("nope");</script>
	</head><body>
	  <h1>Limited offer</h1>
	  <p>Click <a href="http://example.com">here</a> for a discount.</p>
	</body></html>`
	path := writeTemp(t, "spam.html", doc)

	d, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Body != "Limited offer Click here for a discount." {
		t.Errorf("Body = %q", d.Body)
	}
	if strings.Contains(d.Body, "alert") || strings.Contains(d.Body, "color") {
		t.Errorf("script/style leaked into body: %q", d.Body)
	}
}

func TestReadUppercaseExtension(t *testing.T) {
	path := writeTemp(t, "SHOUTING.TXT", "hello")
	d, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Title != "SHOUTING" || d.Body != "hello" {
		t.Errorf("draft = %+v", d)
	}
}

func TestReadUnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "picture.png", "not really")
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "gone.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
