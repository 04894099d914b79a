// pm-snapshot merges converted baseline and update files, keeping only the
// latest version of each article. Files must be given in publication order.
//
//	$ pm-snapshot -o pubmed-snapshot.ndjson.zst pubmed24n*.ndjson
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/snapshot"
	log "github.com/sirupsen/logrus"
)

var (
	output      = flag.String("o", "", "output file, if empty, a file name is derived from the current date")
	numWorkers  = flag.Int("w", runtime.NumCPU(), "number of workers")
	verbose     = flag.Bool("v", false, "verbose output")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(pubmedkit.Version)
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if flag.NArg() == 0 {
		log.Fatal("no input files given")
	}
	outputFile := *output
	if outputFile == "" {
		outputFile = fmt.Sprintf("snapshot-pubmed-%s.ndjson.zst", time.Now().Format("2006-01-02"))
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	started := time.Now()
	result, err := snapshot.Create(ctx, snapshot.Options{
		InputFiles: flag.Args(),
		OutputFile: outputFile,
		Workers:    *numWorkers,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{
		"lines":      result.Lines,
		"records":    result.Records,
		"superseded": result.Superseded,
		"elapsed":    time.Since(started).Round(time.Second),
	}).Info("snapshot done")
	fmt.Println(outputFile)
}
