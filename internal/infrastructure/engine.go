package infrastructure

import (
	"fmt"

	"github.com/yourusername/ytgrab-go/internal/domain"
	"github.com/yourusername/ytgrab-go/pkg/logger"
)

// NewExtractionBackend builds the backend selected by config
func NewExtractionBackend(config *domain.EngineConfig, eventLogger *logger.MultiLogger) (domain.ExtractionBackend, error) {
	switch config.Backend {
	case domain.BackendScript:
		return NewScriptBackend(config.Binary, config.Args, eventLogger), nil
	case domain.BackendYTDLP:
		return NewYTDLPBackend(config.Binary, config.Args, eventLogger), nil
	default:
		return nil, fmt.Errorf("unknown engine backend: %q", config.Backend)
	}
}
