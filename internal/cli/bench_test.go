package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/virtuallist/internal/cli"
)

func TestBench_JSON(t *testing.T) {
	setupCLITest(t)

	output, err := execute(t, "bench", "--items", "2000", "--scrolls", "500", "--keeps", "20",
		"--min-size", "5", "--max-size", "5", "--output", "json")
	require.NoError(t, err)

	var report cli.BenchReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	assert.Equal(t, 2000, report.Items)
	assert.Equal(t, 500, report.Scrolls)
	assert.Equal(t, 20, report.Keeps)
	assert.Positive(t, report.RangeChanges)
	assert.GreaterOrEqual(t, report.Measured, 20)
	assert.LessOrEqual(t, report.Measured, 2000)
	// Every item measures 5, so the estimate converges on 5 as well.
	assert.InDelta(t, 10000.0, report.TotalSize, 1e-6)
}

func TestBench_Deterministic(t *testing.T) {
	setupCLITest(t)

	run := func() cli.BenchReport {
		output, err := execute(t, "bench", "--items", "500", "--scrolls", "200", "--seed", "7", "--output", "json")
		require.NoError(t, err)
		var report cli.BenchReport
		require.NoError(t, json.Unmarshal([]byte(output), &report))
		return report
	}

	a, b := run(), run()
	assert.Equal(t, a.RangeChanges, b.RangeChanges)
	assert.Equal(t, a.Measured, b.Measured)
	assert.InDelta(t, a.TotalSize, b.TotalSize, 1e-9)
	assert.Equal(t, 30, a.Keeps, "keeps comes from the configuration")
}

func TestBench_Table(t *testing.T) {
	setupCLITest(t)

	output, err := execute(t, "bench", "--items", "1000", "--scrolls", "10")
	require.NoError(t, err)
	assert.Contains(t, output, "Items:          1,000")
	assert.Contains(t, output, "Throughput:")
}

func TestBench_Empty(t *testing.T) {
	setupCLITest(t)

	output, err := execute(t, "bench", "--items", "0", "--scrolls", "5", "--output", "json")
	require.NoError(t, err)

	var report cli.BenchReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	assert.Zero(t, report.Measured)
	assert.Zero(t, report.TotalSize)
}

func TestBench_InvalidFlags(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "bench", "--min-size", "10", "--max-size", "1")
	require.Error(t, err)

	_, err = execute(t, "bench", "--items", "-1")
	require.Error(t, err)
}

func TestBench_FinalRangeIsMeasured(t *testing.T) {
	setupCLITest(t)

	// Sizes far above the estimate make every measurement move the estimate and the offsets.
	output, err := execute(t, "bench", "--items", "3000", "--scrolls", "300", "--keeps", "12",
		"--estimate", "1", "--min-size", "1", "--max-size", "40", "--output", "json")
	require.NoError(t, err)

	var report cli.BenchReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	assert.Zero(t, report.Unmeasured, "ranges moved by measurements are measured too")
	assert.GreaterOrEqual(t, report.Measured, 12)
}
