package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

// New builds the process-wide zap logger. Development mode (ENV=dev)
// gets console output; everything else gets production JSON.
func New() (*zap.Logger, error) {
	if strings.EqualFold(os.Getenv("ENV"), "dev") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
