package exporter

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mechprop/internal/errors"
	"mechprop/internal/shared/testutil"
	"mechprop/pkg/contracts/domain"
)

func TestPropertyTable_Append(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	table := NewPropertyTable(logger)
	path := filepath.Join(t.TempDir(), "mechanical property.csv")

	first := domain.ExportRow{
		FileName:          "specimen_a",
		CustomSlope:       100,
		AreaUnderCurve:    0.95,
		YieldDisplacement: 0,
		YieldStrength:     0,
		PeakValue:         14,
	}
	second := domain.ExportRow{
		FileName:          "specimen_b",
		CustomSlope:       math.Inf(1),
		AreaUnderCurve:    1.5,
		YieldDisplacement: 0.01,
		YieldStrength:     2,
		PeakValue:         20.25,
	}

	n, err := table.Append(path, first)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = table.Append(path, second)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, domain.PropertyHeaders, records[0])
	assert.Equal(t, []string{"specimen_a", "100", "0.95", "0", "0", "14"}, records[1])
	assert.Equal(t, []string{"specimen_b", "inf", "1.5", "0.01", "2", "20.25"}, records[2])

	got, err := ParseRow(records[1])
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = ParseRow(records[2])
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.CustomSlope, 1))

	assert.True(t, logs.ContainsMessage("property row appended"))
	assert.True(t, logs.ContainsAttr("rows", int64(2)))
}

func TestPropertyTable_AppendKeepsForeignRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mechanical property.csv")
	existing := "file name,slope,area,yield displacement,yield strength,max strength\nold,1.0,2,3,4,5\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	n, err := NewPropertyTable(nil).Append(path, domain.ExportRow{FileName: "new"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "1.0", "2", "3", "4", "5"}, records[1])
	assert.Equal(t, "new", records[2][0])
}

func TestPropertyTable_AppendUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewPropertyTable(nil).Append(filepath.Join(blocker, "table.csv"), domain.ExportRow{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExportIO))
}

func TestParseRow_Errors(t *testing.T) {
	_, err := ParseRow([]string{"a", "1"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = ParseRow([]string{"a", "1", "x", "3", "4", "5"})
	assert.ErrorContains(t, err, "invalid area")
}

func TestSpecimenName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: filepath.Join("lab", "specimen_a.txt"), want: "specimen_a"},
		{in: "run.2024.01.csv", want: "run"},
		{in: "noext", want: "noext"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, SpecimenName(tt.in))
		})
	}
}
