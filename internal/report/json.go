package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vouchercli/internal/estimator"
)

// SaveJSON writes the complete study result to a JSON file with an export
// metadata envelope, pretty printed for human inspection.
func SaveJSON(path string, res *estimator.StudyResult) error {
	if res == nil {
		return fmt.Errorf("no study result to save")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	output := map[string]interface{}{
		"metadata": map[string]interface{}{
			"exported_at": time.Now().Format(time.RFC3339),
			"run_id":      res.RunID,
			"source":      res.Source,
			"students":    res.N,
		},
		"result": res,
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create JSON file %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	return nil
}
