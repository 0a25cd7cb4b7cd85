package carprice

import (
	"io/fs"
	"strings"
	"testing"
)

func TestRuntimeAssetsFSContainsCascadeScript(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), "carprice-cascade.js")
	if err != nil {
		t.Fatalf("expected cascade script to be readable: %v", err)
	}
	if !strings.Contains(string(data), "data-depends-on") {
		t.Fatalf("expected cascade script to target dependent selects")
	}
}

func TestEmbeddedTemplatesContainsPage(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "page.tpl"); err != nil {
		t.Fatalf("expected page template to be readable: %v", err)
	}
}
