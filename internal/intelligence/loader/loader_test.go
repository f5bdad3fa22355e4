package loader_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/loader"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "region,revenue,date\nEast,100,2026-01-01\nWest,200,2026-01-02\n")

	tbl, err := loader.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"region", "revenue", "date"}, tbl.Columns)
	require.Equal(t, 2, tbl.NumRows())
	require.Equal(t, []string{"100", "200"}, tbl.Column("revenue"))
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := loader.Load("data.txt")
	require.Error(t, err)
}

func TestProfileInfersNumericCategoricalDatetime(t *testing.T) {
	path := writeCSV(t, "region,revenue,date\nEast,100,2026-01-01\nWest,200,2026-01-02\nEast,150,2026-01-03\n")
	tbl, err := loader.Load(path)
	require.NoError(t, err)

	profile := loader.Profile(path, tbl, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, [2]int{3, 3}, profile.Shape)

	byName := map[string]domain.ColumnProfile{}
	for _, c := range profile.Columns {
		byName[c.Name] = c
	}
	require.Equal(t, domain.ColumnCategorical, byName["region"].Type)
	require.Equal(t, domain.ColumnNumeric, byName["revenue"].Type)
	require.Equal(t, domain.ColumnDatetime, byName["date"].Type)
	require.InDelta(t, 150.0, byName["revenue"].Mean, 0.01)
}

func TestProfileFlagsConstantColumn(t *testing.T) {
	path := writeCSV(t, "flag\nyes\nyes\nyes\n")
	tbl, err := loader.Load(path)
	require.NoError(t, err)

	profile := loader.Profile(path, tbl, time.Now())
	require.True(t, profile.Columns[0].IsConstant)
	require.NotEmpty(t, profile.QualityWarnings)
}

func TestProfileFlagsHighCardinalityCategorical(t *testing.T) {
	lines := "label\n"
	for i := 0; i < 20; i++ {
		lines += string(rune('a'+i)) + "-unique\n"
	}
	path := writeCSV(t, lines)
	tbl, err := loader.Load(path)
	require.NoError(t, err)

	profile := loader.Profile(path, tbl, time.Now())
	require.True(t, profile.Columns[0].HighCardinality)
}

func TestProfileFlagsMostlyNullColumn(t *testing.T) {
	path := writeCSV(t, "notes\n\"\"\n\"\"\n\"\"\nx\n")
	tbl, err := loader.Load(path)
	require.NoError(t, err)

	profile := loader.Profile(path, tbl, time.Now())
	require.Greater(t, profile.Columns[0].NullFraction, 0.5)
}
