package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/scene2video/internal/system"
)

// GenerateScenarioPath creates a timestamped scenario filename in dir
func GenerateScenarioPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("scenario_%s.yaml", timestamp))
}

// FindLatestScenario finds the most recently modified scenario in dir
func FindLatestScenario(dir string) (string, error) {
	return system.FindLatest(dir, ".yaml", ".yml")
}
