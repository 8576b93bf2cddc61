package core

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
	"github.com/stretchr/testify/assert"
)

func TestExecuteCheck(t *testing.T) {
	inventory := "name,sql\n" +
		"Orders,SELECT a FROM t\n" +
		"\"Orders Copy\",\"SELECT a FROM t\"\n" +
		"Joined,SELECT a FROM t JOIN u ON t.id = u.id\n"

	tests := []struct {
		name    string
		cfg     contract.Config
		wantErr bool
	}{
		{"limits off", contract.Config{}, false},
		{"within limits", contract.Config{MaxScore: 5, MaxDuplicateRatio: 0.5}, false},
		{"score exceeded", contract.Config{MaxScore: 2}, true},
		{"duplicates exceeded", contract.Config{MaxDuplicateRatio: 0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.InputPath = writeInventory(t, inventory)
			err := ExecuteCheck(context.Background(), &cfg, noStores())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCheckFailed)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExecuteCheckEmptyInventory(t *testing.T) {
	cfg := &contract.Config{InputPath: writeInventory(t, "name,sql\n"), MaxScore: 1}
	assert.NoError(t, ExecuteCheck(context.Background(), cfg, noStores()))
}

func TestExecuteCheckMissingInput(t *testing.T) {
	err := ExecuteCheck(context.Background(), &contract.Config{}, noStores())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCheckFailed)
}

func TestFormatLimit(t *testing.T) {
	assert.Equal(t, "off", formatLimit(0, "%.1f"))
	assert.Equal(t, "30.0", formatLimit(30, "%.1f"))
	assert.Equal(t, "0.25", formatLimit(0.25, "%.2f"))
}

func TestPrintCheckResult(t *testing.T) {
	failed := make([]schema.CheckFailedReport, 7)
	for i := range failed {
		failed[i] = schema.CheckFailedReport{Name: "r", Score: 40, Category: schema.VeryComplexCategory, Threshold: 30}
	}

	assert.NotPanics(t, func() {
		printCheckResult(&schema.CheckResult{Passed: true}, time.Millisecond)
		printCheckResult(&schema.CheckResult{
			Passed: true, TotalReports: 2, MaxScore: 3, MaxScoreReports: []string{"a", "b"}, AvgScore: 2,
		}, time.Millisecond)
		printCheckResult(&schema.CheckResult{
			TotalReports: 9, FailedReports: failed, ScoreThreshold: 30,
			DuplicateRatio: 0.4, DuplicateLimit: 0.2, DuplicateExceeded: true,
		}, time.Millisecond)
	})
}
