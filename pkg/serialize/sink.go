package serialize

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Sink persists a fully assembled record at a resolved path. The path carries
// no extension; the sink owns the encoding and the file suffix.
type Sink interface {
	Write(path string, value any) error
}

// YAMLSink writes records as block-style YAML files, creating parent
// directories as needed. Records are encoded fully in memory before the file
// is touched, so a failed encode never leaves a partial file behind.
type YAMLSink struct {
	logger *zap.Logger
}

// NewYAMLSink creates a YAMLSink.
func NewYAMLSink(logger *zap.Logger) *YAMLSink {
	return &YAMLSink{logger: logger.Named("sink")}
}

var _ Sink = (*YAMLSink)(nil)

func (s *YAMLSink) Write(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	target := path + ".yaml"
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	s.logger.Debug("Wrote export file", zap.String("path", target))
	return nil
}
