// Package snapshot merges converted baseline and update files into a single
// file with the latest version of each article.
//
// PubMed update files carry new versions of articles already contained in
// the baseline. Given the converted files in publication order, a record in a
// later file replaces all earlier records with the same id. Within a file, the
// last record wins.
//
// Two passes: the first reads only the id of each line and notes the
// position of the latest version, the second copies the selected lines to the
// output, in input order. The index is kept in memory.
package snapshot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/miku/pubmedkit/batch"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxLineSize = 1 << 26

var ErrNoInput = errors.New("no input files provided")

// Options for a snapshot.
type Options struct {
	InputFiles []string // in publication order, baseline first
	OutputFile string   // zstd compressed, if it ends with .zst
	Workers    int
}

// Result summarizes a snapshot.
type Result struct {
	Lines      int // lines read
	Records    int // records written
	Superseded int // records replaced by a later version
}

// position of a line in the input.
type position struct {
	file int
	line int
}

// idOnly decodes the id of a record and nothing else.
type idOnly struct {
	ID uint64 `json:"id"`
}

// Create writes a snapshot according to opts.
func Create(ctx context.Context, opts Options) (Result, error) {
	var result Result
	if len(opts.InputFiles) == 0 {
		return result, ErrNoInput
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	// Stage 1: latest line per id, for each file.
	indexes := make([]map[uint64]int, len(opts.InputFiles))
	lines := make([]int, len(opts.InputFiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range opts.InputFiles {
		i, name := i, name
		g.Go(func() error {
			index, n, err := indexFile(gctx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			indexes[i], lines[i] = index, n
			log.WithFields(log.Fields{"file": name, "lines": n}).Debug("indexed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	// Later files win.
	latest := make(map[uint64]position)
	for i, index := range indexes {
		for id, line := range index {
			latest[id] = position{file: i, line: line}
		}
		result.Lines += lines[i]
		indexes[i] = nil
	}
	selected := make([][]int, len(opts.InputFiles))
	for _, pos := range latest {
		selected[pos.file] = append(selected[pos.file], pos.line)
	}
	for _, s := range selected {
		slices.Sort(s)
	}
	// Stage 2: copy selected lines.
	out, err := batch.CreateOutput(opts.OutputFile, strings.HasSuffix(opts.OutputFile, ".zst"))
	if err != nil {
		return result, err
	}
	defer out.Abort()
	bw := bufio.NewWriter(out)
	for i, name := range opts.InputFiles {
		i, name := i, name
		n, err := copyLines(ctx, name, selected[i], bw)
		if err != nil {
			return result, fmt.Errorf("%s: %w", name, err)
		}
		result.Records += n
	}
	if err := bw.Flush(); err != nil {
		return result, err
	}
	if err := out.Commit(); err != nil {
		return result, err
	}
	result.Superseded = result.Lines - result.Records
	return result, nil
}

// indexFile returns the last line number of each id in a file, and the
// number of lines.
func indexFile(ctx context.Context, name string) (map[uint64]int, int, error) {
	rc, err := batch.OpenInput(name)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()
	var (
		index   = make(map[uint64]int)
		scanner = bufio.NewScanner(rc)
		n       int
	)
	scanner.Buffer(make([]byte, 0, 1<<20), maxLineSize)
	for ; scanner.Scan(); n++ {
		if n%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		var doc idOnly
		if err := json.Unmarshal(scanner.Bytes(), &doc); err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", n+1, err)
		}
		index[doc.ID] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return index, n, nil
}

// copyLines writes the lines with the given (sorted) numbers from a file to w.
func copyLines(ctx context.Context, name string, wanted []int, w *bufio.Writer) (int, error) {
	if len(wanted) == 0 {
		return 0, nil
	}
	rc, err := batch.OpenInput(name)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	var (
		scanner = bufio.NewScanner(rc)
		written int
	)
	scanner.Buffer(make([]byte, 0, 1<<20), maxLineSize)
	for n := 0; scanner.Scan() && written < len(wanted); n++ {
		if n != wanted[written] {
			continue
		}
		if written%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return written, err
			}
		}
		w.Write(scanner.Bytes())
		if err := w.WriteByte('\n'); err != nil {
			return written, err
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return written, err
	}
	if written != len(wanted) {
		return written, fmt.Errorf("file changed, found %d of %d lines", written, len(wanted))
	}
	return written, nil
}
