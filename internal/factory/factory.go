package factory

import (
	"fmt"

	"go-omr-grader/internal/config"
	"go-omr-grader/internal/storage"
	"go-omr-grader/pkg/template"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based sheet fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
)

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

// TemplateFactory creates sheet templates
type TemplateFactory interface {
	CreateTemplate(name string) (*template.Template, error)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(), nil
	case AzureStorage:
		return storage.NewAzureImageFetcher(f.cfg.AzureAccountName, f.cfg.AzureAccountKey)
	case LocalStorage:
		return storage.NewLocalImageFetcher(f.cfg.LocalSheetsDir), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// templateFactory implements TemplateFactory
type templateFactory struct {
	templatesDir string
}

// NewTemplateFactory creates a new template factory. When templatesDir is
// non-empty, unknown names are resolved as JSON files inside it.
func NewTemplateFactory(templatesDir string) TemplateFactory {
	return &templateFactory{templatesDir: templatesDir}
}

// CreateTemplate resolves a template by name, trying the built-in layouts
// first and the templates directory second.
func (f *templateFactory) CreateTemplate(name string) (*template.Template, error) {
	tpl, err := template.ByName(name)
	if err == nil {
		return tpl, nil
	}
	if f.templatesDir != "" {
		if tpl, ferr := template.LoadFile(f.templatesDir + "/" + name + ".json"); ferr == nil {
			return tpl, nil
		}
	}
	return nil, err
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	StorageFactory  StorageFactory
	TemplateFactory TemplateFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		StorageFactory:  NewStorageFactory(cfg),
		TemplateFactory: NewTemplateFactory(cfg.TemplatesDir),
	}
}
