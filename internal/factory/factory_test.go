package factory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go-omr-grader/internal/config"
	"go-omr-grader/pkg/template"
)

func TestStorageFactory_HTTP(t *testing.T) {
	f := NewStorageFactory(&config.Config{})
	fetcher, err := f.CreateStorage(HTTPStorage)
	if err != nil {
		t.Fatalf("CreateStorage(http) failed: %v", err)
	}
	if fetcher == nil {
		t.Error("Expected non-nil fetcher")
	}
}

func TestStorageFactory_Local(t *testing.T) {
	f := NewStorageFactory(&config.Config{})
	fetcher, err := f.CreateStorage(LocalStorage)
	if err != nil {
		t.Fatalf("CreateStorage(local) failed: %v", err)
	}
	if fetcher == nil {
		t.Error("Expected non-nil fetcher")
	}
}

func TestStorageFactory_Unsupported(t *testing.T) {
	f := NewStorageFactory(&config.Config{})
	if _, err := f.CreateStorage(StorageType("ftp")); err == nil {
		t.Error("Expected error for unsupported storage type")
	}
}

func TestTemplateFactory_Builtin(t *testing.T) {
	f := NewTemplateFactory("")

	tpl, err := f.CreateTemplate("standard_100q")
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	if tpl.TotalQuestions != 100 {
		t.Errorf("total questions = %d, want 100", tpl.TotalQuestions)
	}

	// Empty name falls back to the default layout.
	if _, err := f.CreateTemplate(""); err != nil {
		t.Errorf("CreateTemplate(\"\") failed: %v", err)
	}
}

func TestTemplateFactory_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	tpl := template.Compact50Q()
	data, err := json.Marshal(tpl)
	if err != nil {
		t.Fatalf("failed to marshal template: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "custom.json"), data, 0o644); err != nil {
		t.Fatalf("failed to write template file: %v", err)
	}

	f := NewTemplateFactory(dir)
	got, err := f.CreateTemplate("custom")
	if err != nil {
		t.Fatalf("CreateTemplate(custom) failed: %v", err)
	}
	if got.TotalQuestions != 50 {
		t.Errorf("total questions = %d, want 50", got.TotalQuestions)
	}
}

func TestTemplateFactory_Unknown(t *testing.T) {
	f := NewTemplateFactory("")
	if _, err := f.CreateTemplate("does_not_exist"); err == nil {
		t.Error("Expected error for unknown template name")
	}
}

func TestNewComponentFactory(t *testing.T) {
	cf := NewComponentFactory(&config.Config{})
	if cf.StorageFactory == nil || cf.TemplateFactory == nil {
		t.Error("Expected all factories to be initialized")
	}
}
