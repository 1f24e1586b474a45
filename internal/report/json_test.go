package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouchercli/internal/estimator"
)

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "study.json")
	require.NoError(t, SaveJSON(path, goldenResult()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var payload struct {
		Metadata struct {
			ExportedAt string `json:"exported_at"`
			RunID      string `json:"run_id"`
			Source     string `json:"source"`
			Students   int    `json:"students"`
		} `json:"metadata"`
		Result estimator.StudyResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.Equal(t, "8d7f2c44-9f13-4a61-b8e2-6a1f3f3d9b10", payload.Metadata.RunID)
	assert.Equal(t, "data/cohort.csv", payload.Metadata.Source)
	assert.Equal(t, 128, payload.Metadata.Students)
	assert.NotEmpty(t, payload.Metadata.ExportedAt)

	assert.Equal(t, 128, payload.Result.N)
	assert.Equal(t, 0.25, payload.Result.Effect.ATE)
	assert.Equal(t, 2.0, payload.Result.Effect.OddsDifference)
	assert.Len(t, payload.Result.Naive.Coefficients, 4)
	assert.Len(t, payload.Result.Insights, 4)

	// The fitted vector stays internal; only its range is published.
	assert.Nil(t, payload.Result.TwoStage.Fitted)
	assert.Equal(t, 0.1406, payload.Result.TwoStage.FittedMin)
}

func TestSaveJSON_NilResult(t *testing.T) {
	err := SaveJSON(filepath.Join(t.TempDir(), "study.json"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no study result")
}
