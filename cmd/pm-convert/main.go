// pm-convert turns PubMed XML into newline delimited JSON, one record per
// article.
//
// Convert files 1 to 1219 of the baseline, in parallel:
//
//	$ pm-convert -p /data/pubmed24n -s 1 -n 1219
//
// Convert a single document from stdin:
//
//	$ zcat pubmed24n0001.xml.gz | pm-convert -stdin > pubmed24n0001.ndjson
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/batch"
	"github.com/miku/pubmedkit/config"
	"github.com/miku/pubmedkit/convert"
	"github.com/miku/pubmedkit/pproc/record"
	"github.com/miku/pubmedkit/stats"
	log "github.com/sirupsen/logrus"
)

var (
	useStdin    = flag.Bool("stdin", false, "read a document from stdin and write records to stdout")
	batchSize   = flag.Int("b", 2000, "articles per batch in stdin mode")
	cpuprofile  = flag.String("cpuprofile", "", "file to write cpu pprof to")
	showVersion = flag.Bool("version", false, "show version")
)

var help = strings.TrimLeft(`
pm-convert reshapes PubMed XML into one JSON document per article

Each job i reads <prefix><i>.xml (or .xml.gz, .xml.zst), with i zero padded
to four digits, and writes <prefix><i>.ndjson next to it. Settings are read
from the config file first (YAML), flags take precedence.

Examples:

    $ pm-convert -p /data/pubmed24n -s 1 -n 1219 -w 16
    $ zstdcat pubmed.xml.zst | pm-convert -stdin

Usage:

`, "\n")

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		flag.PrintDefaults()
	}
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if *showVersion {
		fmt.Println(pubmedkit.Version)
		os.Exit(0)
	}
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	counters := stats.New()
	conv, err := cfg.NewConverter(counters)
	if err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *useStdin {
		if err := runStream(ctx, conv, cfg.Workers, *batchSize); err != nil {
			log.Fatal(err)
		}
		// stdout carries the records
		fmt.Fprintln(os.Stderr, counters.Snapshot())
		return
	}
	if cfg.Prefix == "" {
		log.Fatal("prefix required, use -p or set prefix in config")
	}
	runner := &batch.Runner{
		Prefix:    cfg.Prefix,
		Start:     cfg.Start,
		Count:     cfg.Count,
		Workers:   cfg.Workers,
		Compress:  cfg.CompressOutput,
		Converter: conv,
	}
	log.WithFields(log.Fields{
		"prefix":  cfg.Prefix,
		"start":   cfg.Start,
		"count":   cfg.Count,
		"workers": cfg.Workers,
	}).Debug("starting run")
	if err := runner.Run(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Println(counters.Snapshot())
	if n := counters.FailedJobs.Load(); n > 0 {
		log.Errorf("%d job(s) failed", n)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

// runStream converts batches of articles from stdin in parallel, keeping the
// input order.
func runStream(ctx context.Context, conv *convert.Converter, workers, size int) error {
	proc := record.NewProcessor(func(p []byte) ([]byte, error) {
		var (
			doc = record.WrapElements("PubmedArticleSet", p)
			buf bytes.Buffer
		)
		if _, err := conv.ConvertDocument(ctx, bytes.NewReader(doc), &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	},
		record.WithWorkers(workers),
		record.WithSplitFunc(record.ElementSplitter("PubmedArticle", size)),
	)
	return proc.Process(ctx, os.Stdin, os.Stdout)
}
