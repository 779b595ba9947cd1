package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/anicache/internal/ani"
	"github.com/roach88/anicache/internal/store"
)

// seedCache creates a cache holding two measurements.
func seedCache(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ani.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.InsertBatch(context.Background(), []ani.Entry{
		{Key: ani.Pair("a.fna", "b.fna"), Measurement: ani.Measurement{ANI: 97.5, AF: 0.75}},
		{Key: ani.Pair("b.fna", "a.fna"), Measurement: ani.Measurement{ANI: 98, AF: 0.5}},
	}))
	require.NoError(t, st.Close())
	return path
}

func TestDumpCSV(t *testing.T) {
	db := seedCache(t)
	out := filepath.Join(t.TempDir(), "ani.csv")

	stdout, _, err := executeRoot(t, "dump", "--silent", "--db", db, "--output", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 2 row(s)")
	assert.Equal(t,
		"query_id,ref_id,ani,af\na.fna,b.fna,97.5,0.75\nb.fna,a.fna,98,0.5\n",
		readFile(t, out))
}

func TestDumpTSVGzip(t *testing.T) {
	db := seedCache(t)
	out := filepath.Join(t.TempDir(), "ani.tsv.gz")

	stdout, _, err := executeRoot(t, "dump", "--silent", "--format", "json",
		"--db", db, "--output", out, "--delimiter", "tsv")
	require.NoError(t, err)

	var resp struct {
		Data DumpResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 2, resp.Data.Rows)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t,
		"query_id\tref_id\tani\taf\na.fna\tb.fna\t97.5\t0.75\nb.fna\ta.fna\t98\t0.5\n",
		string(got))
}

func TestDumpMissingDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "absent.db")

	_, _, err := executeRoot(t, "dump", "--silent", "--db", db, "--output", filepath.Join(t.TempDir(), "x.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
	assert.NoFileExists(t, db)
}

func TestDumpNotACache(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ani.csv")
	content := "query_id,ref_id,ani,af\na.fna,b.fna,97.5,0.75\n"
	require.NoError(t, os.WriteFile(db, []byte(content), 0644))

	_, _, err := executeRoot(t, "dump", "--silent", "--db", db, "--output", filepath.Join(t.TempDir(), "x.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to open database")
	assert.Equal(t, content, readFile(t, db))
}

func TestDumpInvalidDelimiter(t *testing.T) {
	db := seedCache(t)

	_, _, err := executeRoot(t, "dump", "--silent", "--db", db,
		"--output", filepath.Join(t.TempDir(), "x.csv"), "--delimiter", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDumpMissingFlags(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewDumpCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
