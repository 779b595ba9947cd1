// Package genomes locates genome files and plans the comparisons between them.
package genomes

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shenwei356/util/pathutil"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/anicache/internal/ani"
)

// ErrNoGenomes is returned when an input names no genome files.
var ErrNoGenomes = errors.New("no genomes found")

// Discover returns the genome files named by input.
//
// A directory yields every entry whose name ends with ext, sorted. Any other
// existing file is read as a list: the first tab-separated column of each
// non-blank line is a genome path. With validate set, listed paths that do not
// exist are an error.
func Discover(input, ext string, validate bool) ([]string, error) {
	isDir, err := pathutil.DirExists(input)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", input, err)
	}
	if isDir {
		return fromDir(input, ext)
	}

	exists, err := pathutil.Exists(input)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", input, err)
	}
	if !exists {
		return nil, fmt.Errorf("input file or directory does not exist: %s", input)
	}
	return fromList(input, validate)
}

func fromDir(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in directory %s: check the file extension (%q)", ErrNoGenomes, dir, ext)
	}
	sort.Strings(files)
	return files, nil
}

func fromList(path string, validate bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var files []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		file, _, _ := strings.Cut(line, "\t")
		if validate {
			ok, err := pathutil.Exists(file)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", file, err)
			}
			if !ok {
				return nil, fmt.Errorf("listed genome file does not exist: %s", file)
			}
		}
		files = append(files, file)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in file %s: check that the file has the correct format", ErrNoGenomes, path)
	}
	return files, nil
}

// ID derives a genome id from a file path: its NFC-normalized basename.
func ID(path string) ani.GenomeID {
	return ani.GenomeID(norm.NFC.String(filepath.Base(path)))
}

// Plan pairs every query file with every reference file, in input order.
// With refToQuery set the reverse direction of each pair is planned as well.
//
// Repeated pairs are dropped. Two different paths resolving to the same id are
// an error since results are keyed by id.
func Plan(queryFiles, refFiles []string, refToQuery bool) ([]ani.PairKey, map[ani.GenomeID]string, error) {
	paths := make(map[ani.GenomeID]string, len(queryFiles)+len(refFiles))
	register := func(file string) (ani.GenomeID, error) {
		id := ID(file)
		if prev, ok := paths[id]; ok && prev != file {
			return "", fmt.Errorf("genome id %q is shared by %s and %s", id, prev, file)
		}
		paths[id] = file
		return id, nil
	}

	refIDs := make([]ani.GenomeID, len(refFiles))
	for i, rf := range refFiles {
		id, err := register(rf)
		if err != nil {
			return nil, nil, err
		}
		refIDs[i] = id
	}

	pairs := make([]ani.PairKey, 0, len(queryFiles)*len(refFiles))
	for _, qf := range queryFiles {
		qid, err := register(qf)
		if err != nil {
			return nil, nil, err
		}
		for _, rid := range refIDs {
			pairs = append(pairs, ani.Pair(qid, rid))
			if refToQuery {
				pairs = append(pairs, ani.Pair(rid, qid))
			}
		}
	}
	return ani.Dedup(pairs), paths, nil
}
