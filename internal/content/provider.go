// Package content serves the read-only site documents, from files under the
// public directory when present or from built-in defaults.
package content

import (
	"encoding/json"
	"os"

	"github.com/dentclinicai/dentclinicai-api/pkg/logger"
	"go.uber.org/zap"
)

// Document sources reported in metrics
const (
	SourceFile    = "file"
	SourceDefault = "default"
)

// Document is a content body and where it came from
type Document struct {
	Data   []byte
	Source string
}

// Provider returns a content document. It never fails: implementations
// fall back to a default instead.
type Provider interface {
	Content() Document
}

var (
	_ Provider = (*StaticProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)

// StaticProvider always returns the same bytes
type StaticProvider struct {
	data []byte
}

// NewStaticProvider creates a provider for data
func NewStaticProvider(data []byte) *StaticProvider {
	return &StaticProvider{data: data}
}

// NewStaticJSONProvider marshals v once and serves the result
func NewStaticJSONProvider(v any) (*StaticProvider, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return NewStaticProvider(data), nil
}

func (p *StaticProvider) Content() Document {
	return Document{Data: p.data, Source: SourceDefault}
}

// FileProvider reads a file on every call so edits show up without a
// restart. Unreadable or invalid files yield the fallback document.
type FileProvider struct {
	path     string
	validate func([]byte) bool
	fallback Provider
}

// FileOption configures a FileProvider
type FileOption func(*FileProvider)

// RequireJSON makes the provider reject files that are not valid JSON
func RequireJSON() FileOption {
	return func(p *FileProvider) {
		p.validate = json.Valid
	}
}

// NewFileProvider creates a provider for path backed by fallback
func NewFileProvider(path string, fallback Provider, opts ...FileOption) *FileProvider {
	p := &FileProvider{path: path, fallback: fallback}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *FileProvider) Content() Document {
	data, err := os.ReadFile(p.path)
	if err != nil {
		logger.Debug("Content file unavailable, serving default",
			zap.String("path", p.path),
			zap.Error(err))
		return p.fallback.Content()
	}
	if p.validate != nil && !p.validate(data) {
		logger.Warn("Content file is invalid, serving default", zap.String("path", p.path))
		return p.fallback.Content()
	}
	return Document{Data: data, Source: SourceFile}
}

// Select returns a FileProvider when path exists at startup and the
// fallback otherwise
func Select(path string, fallback Provider, opts ...FileOption) Provider {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return NewFileProvider(path, fallback, opts...)
	}
	return fallback
}
