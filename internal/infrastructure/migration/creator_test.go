package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/dealer/reporting/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add line values index", "add_line_values_index"},
		{"Add-Line-Values", "add_line_values"},
		{"ADD_SUMMARY_POSITION", "add_summary_position"},
		{"add__summary__position", "add_summary_position"},
		{"Add Stores 123", "add_stores_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add report views", "View metadata per report")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_report_views.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_report_views.down.sql"), first.DownPath)

	upContent, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add report views")
	assert.Contains(t, string(upContent), "View metadata per report")

	downContent, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")

	second, err := CreateMigration(dir, "add summary position", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)
}

func TestCreateMigration_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "!!!", "")
	assert.Error(t, err)

	nested := filepath.Join(dir, "nested", "migrations")
	_, err = CreateMigration(nested, "init", "")
	require.NoError(t, err)
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_sources.up.sql":   {Data: []byte("--")},
		"000002_add_sources.down.sql": {Data: []byte("--")},
		"000001_init.up.sql":          {Data: []byte("--")},
		"000010_no_down.up.sql":       {Data: []byte("--")},
		"README.md":                   {Data: []byte("docs")},
		"notaversion_x.up.sql":        {Data: []byte("--")},
		"subdir.up.sql/file":          {Data: []byte("--")},
	}

	got, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, uint(1), got[0].Version)
	assert.Equal(t, "init", got[0].Name)
	assert.False(t, got[0].HasDown)
	assert.Equal(t, "000002_add_sources", got[1].BaseName)
	assert.True(t, got[1].HasDown)
	assert.Equal(t, uint(10), got[2].Version)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	got, err := ListMigrations(os.DirFS("/nonexistent/path/to/migrations"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.True(t, e.HasDown, "%s has no rollback", e.BaseName)
	}
	assert.Equal(t, "create_report_schema", got[0].Name)
	assert.Equal(t, "create_normalized_sources", got[1].Name)
}
