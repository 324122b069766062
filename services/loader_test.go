package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	body := testHeader + "\nEmail,North,Oslo,Dev,IT,Tech,A,1,2,3,4,5,6\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	ds, err := NewLoader(newTestLogger()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Len(t, ds.Columns, 13)
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(newTestLogger()).Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestLoaderStripsBOMAndHeaderQuotes(t *testing.T) {
	body := "\xEF\xBB\xBF\"Source\", Region ,OfferId\nEmail,North,A\n"
	ds, err := NewLoader(newTestLogger()).Read(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Source", "Region", "OfferId"}, ds.Columns)
	assert.True(t, ds.HasColumn("Source"))
}

func TestLoaderNormalisesNullTokens(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"NA", ""},
		{"N/A", ""},
		{"NULL", ""},
		{"null", ""},
		{"NaN", ""},
		{"None", ""},
		{"  ", ""},
		{" North ", "North"},
		{"Nadia", "Nadia"},
	}

	for _, tt := range tests {
		ds, err := NewLoader(newTestLogger()).Read(strings.NewReader("Region\n\"" + tt.raw + "\"\n"))
		require.NoError(t, err)
		require.Equal(t, 1, ds.Len(), "raw %q", tt.raw)
		if got := ds.Cell(0, 0); got != tt.want {
			t.Errorf("cell(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestLoaderPadsShortRecords(t *testing.T) {
	ds, err := NewLoader(newTestLogger()).Read(strings.NewReader("Source,Region,City\nEmail\n"))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, []string{"Email", "", ""}, ds.Records[0])
}

func TestLoaderExtraColumnsAndOrder(t *testing.T) {
	body := "Extra,OfferId,Source\nx,A,Email\n"
	ds, err := NewLoader(newTestLogger()).Read(strings.NewReader(body))
	require.NoError(t, err)

	idx, ok := ds.ColumnIndex("Source")
	require.True(t, ok)
	assert.Equal(t, "Email", ds.Cell(0, idx))
}

func TestLoaderEmptyInput(t *testing.T) {
	_, err := NewLoader(newTestLogger()).Read(strings.NewReader(""))
	assert.Error(t, err)
}
