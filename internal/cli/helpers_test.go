package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAligner writes a shell script that answers like FastANI: 100% for a
// genome against itself, 97.5% ANI with 750/1000 fragments otherwise. Every
// comparison appends a line to the returned count file.
func fakeAligner(t *testing.T) (program, countFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-ins require a POSIX shell")
	}
	dir := t.TempDir()
	countFile = filepath.Join(dir, "calls")
	script := `#!/bin/sh
if [ "$1" = "-v" ]; then
	echo "version 1.34" >&2
	exit 0
fi
echo call >> "` + countFile + `"
if [ "$(basename "$2")" = "$(basename "$4")" ]; then
	echo "$2 $4 100 1000 1000"
else
	echo "$2 $4 97.5 750 1000"
fi
`
	program = filepath.Join(dir, "fastANI")
	require.NoError(t, os.WriteFile(program, []byte(script), 0755))
	return program, countFile
}

// failingAligner writes a script that exits 1 for every comparison.
func failingAligner(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-ins require a POSIX shell")
	}
	program := filepath.Join(t.TempDir(), "fastANI")
	script := "#!/bin/sh\necho 'segmentation fault' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(program, []byte(script), 0755))
	return program
}

func alignerCalls(t *testing.T, countFile string) int {
	t.Helper()
	data, err := os.ReadFile(countFile)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return strings.Count(string(data), "\n")
}

// genomeDir creates a directory holding one small FASTA file per name.
func genomeDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(">contig\nACGTACGT\n"), 0644))
	}
	return dir
}

// executeRoot runs the full command tree and returns stdout and stderr.
func executeRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	_, stdout, stderr, err = executeRootOpts(t, args...)
	return stdout, stderr, err
}

// executeRootOpts is executeRoot that also returns the root options used
// for the run.
func executeRootOpts(t *testing.T, args ...string) (opts *RootOptions, stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	opts = &RootOptions{}
	err = execute(context.Background(), opts, args, &out, &errOut)
	return opts, out.String(), errOut.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
