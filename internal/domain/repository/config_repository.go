package repository

import (
	"github.com/diillson/aws-log-remediator/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.FileConfig, error)
	Resolve() (*types.Config, error)
}
