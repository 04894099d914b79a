// Package batch runs a conversion over a range of numbered input files, e.g.
// the yearly PubMed baseline:
//
//	pubmed24n0001.xml.gz -> pubmed24n0001.ndjson
//	pubmed24n0002.xml.gz -> pubmed24n0002.ndjson
//	...
//
// Each file is one job. Jobs run on a fixed pool of workers; a failing job is
// logged and counted, the remaining jobs continue.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/miku/pubmedkit/convert"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoPrefix     = errors.New("missing file prefix")
	ErrInvalidRange = errors.New("invalid job range")
)

// Job is a single input document and the output it is converted to.
type Job struct {
	Index  int
	Input  string
	Output string
}

// Runner converts Count files, starting with number Start.
type Runner struct {
	Prefix    string // path prefix, e.g. "/data/pubmed24n"
	Start     int
	Count     int
	Workers   int  // defaults to the number of CPUs
	Compress  bool // write zstd compressed output
	Converter *convert.Converter
	Progress  io.Writer // defaults to stdout

	mu sync.Mutex // protects Progress
}

// Basename returns the file name of job i without suffix.
func Basename(prefix string, i int) string {
	return fmt.Sprintf("%s%04d", prefix, i)
}

// Jobs returns the jobs of the configured range, in order.
func (r *Runner) Jobs() ([]Job, error) {
	if r.Prefix == "" {
		return nil, ErrNoPrefix
	}
	if r.Start < 0 || r.Count < 1 {
		return nil, fmt.Errorf("%w: start=%d count=%d", ErrInvalidRange, r.Start, r.Count)
	}
	jobs := make([]Job, 0, r.Count)
	for i := r.Start; i < r.Start+r.Count; i++ {
		base := Basename(r.Prefix, i)
		job := Job{Index: i, Input: findInput(base), Output: base + ".ndjson"}
		if r.Compress {
			job.Output += ".zst"
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Run processes all jobs. Failed jobs do not stop the run, they are
// reported through the converter counters. Run returns an error only if the
// range is invalid or the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	jobs, err := r.Jobs()
	if err != nil {
		return err
	}
	if r.Converter == nil {
		r.Converter = convert.New(nil)
	}
	if r.Progress == nil {
		r.Progress = os.Stdout
	}
	workers := r.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	counters := r.Converter.Stats
	counters.SetJobRange(r.Start, r.Count)
	var (
		queue = make(chan Job)
		g     errgroup.Group
	)
	g.Go(func() error {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for worker := 0; worker < workers; worker++ {
		worker := worker
		g.Go(func() error {
			for job := range queue {
				n, err := r.runJob(ctx, job)
				if err != nil {
					counters.FailedJobs.Add(1)
					log.WithFields(log.Fields{
						"file":   job.Input,
						"worker": worker,
						"err":    err,
					}).Error("job failed")
					continue
				}
				done := counters.JobDone()
				r.progress(worker, done, job.Input, n)
			}
			return nil
		})
	}
	return g.Wait()
}

// runJob converts a single document. The output file is only created if the
// whole document converts.
func (r *Runner) runJob(ctx context.Context, job Job) (int, error) {
	log.WithField("file", job.Input).Debug("starting job")
	rc, err := OpenInput(job.Input)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	out, err := CreateOutput(job.Output, r.Compress)
	if err != nil {
		return 0, err
	}
	defer out.Abort()
	n, err := r.Converter.ConvertDocument(ctx, rc, out)
	if err != nil {
		return n, fmt.Errorf("%s: %w", job.Input, err)
	}
	if err := out.Commit(); err != nil {
		return n, err
	}
	return n, nil
}

func (r *Runner) progress(worker, done int, name string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.Progress, "[%3d] (%3d / %3d) %s: %d\n", worker, done, r.Count, name, n)
}
