// pm-feed lists and downloads PubMed baseline or update files.
//
//	$ pm-feed -l -since 2025-01-01
//	$ pm-feed -baseline -d /data/pubmed
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/dateutil"
	"github.com/miku/pubmedkit/feeds"
	"github.com/sethgrid/pester"
	log "github.com/sirupsen/logrus"
)

var docs = strings.TrimLeft(`
# pm-feed - fetch PubMed files

Lists the files of the baseline or the update files and downloads the ones
missing from the target directory. The file listing is cached for a day.

## list update files of the last week

$ pm-feed -l -since "$(date -d '7 days ago' +%F)"

## sync baseline

$ pm-feed -baseline -d /data/pubmed -md5

## flags

`, "\n")

var (
	dir         = flag.String("d", ".", "target directory")
	useBaseline = flag.Bool("baseline", false, "use the baseline instead of the update files")
	listOnly    = flag.Bool("l", false, "only list matching files")
	since       = flag.String("since", "", "only files modified on or after this day")
	until       = flag.String("until", "", "only files modified on or before this day")
	verifyMD5   = flag.Bool("md5", false, "verify downloads against the published checksum")
	cacheTTL    = flag.Duration("ttl", feeds.DefaultCacheTTL, "how long to cache the file listing")
	maxRetries  = flag.Int("r", 3, "max retries")
	timeout     = flag.Duration("T", time.Hour, "connection timeout")
	verbose     = flag.Bool("verbose", false, "verbose output")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Usage = func() {
		io.WriteString(os.Stderr, docs)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Println(pubmedkit.Version)
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	window, err := dateutil.Window(*since, *until)
	if err != nil {
		log.Fatal(err)
	}
	baseURL := feeds.UpdateFilesURL
	if *useBaseline {
		baseURL = feeds.BaselineURL
	}
	fetcher, err := feeds.NewPubMedFetcher(baseURL)
	if err != nil {
		log.Fatal(err)
	}
	// HTTP client
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = *maxRetries
	client.RetryOnHTTP429 = true
	client.Timeout = *timeout
	fetcher.Client = client
	fetcher.CacheTTL = *cacheTTL
	fetcher.VerifyMD5 = *verifyMD5

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	files, err := fetcher.FetchFiles(ctx)
	if err != nil {
		log.Fatal(err)
	}
	files = feeds.FilterPubmedFiles(files, func(f feeds.PubMedFile) bool {
		return window.Contains(f.LastModified)
	})
	log.WithFields(log.Fields{"url": baseURL, "files": len(files)}).Debug("listing")
	if *listOnly {
		for _, f := range files {
			fmt.Printf("%s\t%s\t%s\n", f.LastModified.Format("2006-01-02 15:04"), f.Size, f.URL)
		}
		return
	}
	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.Fatal(err)
	}
	var fetched int
	for _, f := range files {
		dst, ok, err := fetcher.Download(ctx, f, *dir)
		if err != nil {
			log.Fatal(err)
		}
		if ok {
			fetched++
			log.WithFields(log.Fields{"file": dst, "size": f.Size}).Info("downloaded")
		}
	}
	log.Infof("%d file(s) downloaded, %d already present", fetched, len(files)-fetched)
}
