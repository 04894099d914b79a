// Package feeds lists and downloads the PubMed baseline and update files.
package feeds

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/adrg/xdg"
	"github.com/miku/pubmedkit"
	log "github.com/sirupsen/logrus"
)

const (
	BaselineURL    = "https://ftp.ncbi.nlm.nih.gov/pubmed/baseline/"
	UpdateFilesURL = "https://ftp.ncbi.nlm.nih.gov/pubmed/updatefiles/"

	DefaultCacheTTL = 24 * time.Hour
)

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")

	xmlPattern = regexp.MustCompile(`^pubmed\d+n\d+\.xml\.gz$`)
)

// Doer abstracts https://pkg.go.dev/net/http#Client.Do.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// PubMedFile represents metadata for a PubMed baseline or update file, cf.
// https://ftp.ncbi.nlm.nih.gov/pubmed/updatefiles/.
type PubMedFile struct {
	Filename     string
	URL          string
	LastModified time.Time
	Size         string
}

// PubMedFetcher handles fetching and parsing PubMed file listings
type PubMedFetcher struct {
	BaseURL  string
	CacheTTL time.Duration
	CacheDir string
	// Client is used for all requests, defaults to http.DefaultClient.
	Client Doer
	// VerifyMD5 compares each download with the published .md5 file.
	VerifyMD5 bool
}

// NewPubMedFetcher creates a new fetcher with default settings
func NewPubMedFetcher(baseURL string) (*PubMedFetcher, error) {
	cacheDir, err := xdg.CacheFile(filepath.Join(pubmedkit.AppName, "pubmed"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	return &PubMedFetcher{
		BaseURL:  baseURL,
		CacheTTL: DefaultCacheTTL,
		CacheDir: cacheDir,
	}, nil
}

func (pf *PubMedFetcher) client() Doer {
	if pf.Client == nil {
		return http.DefaultClient
	}
	return pf.Client
}

// indexCacheFile is the cached listing for the base URL; baseline and update
// listings are cached separately.
func (pf *PubMedFetcher) indexCacheFile() string {
	name := fmt.Sprintf("pubmed_index_%08x.html", crc32.ChecksumIEEE([]byte(pf.BaseURL)))
	return filepath.Join(pf.CacheDir, name)
}

// getCachedIndex returns the cached content if it exists and is not expired
func (pf *PubMedFetcher) getCachedIndex() ([]byte, error) {
	cacheFile := pf.indexCacheFile()
	info, err := os.Stat(cacheFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Since(info.ModTime()) > pf.CacheTTL {
		return nil, nil
	}
	return os.ReadFile(cacheFile)
}

// get issues a GET request and returns the response body, if the status is
// OK.
func (pf *PubMedFetcher) get(ctx context.Context, link string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", pubmedkit.AppName+"/"+pubmedkit.Version)
	resp, err := pf.client().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", link, resp.StatusCode)
	}
	return resp.Body, nil
}

// fetchIndex fetches content from URL or uses cached content if available
func (pf *PubMedFetcher) fetchIndex(ctx context.Context) ([]byte, error) {
	b, err := pf.getCachedIndex()
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}
	body, err := pf.get(ctx, pf.BaseURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	b, err = io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(pf.indexCacheFile(), b, 0644); err != nil {
		return nil, err
	}
	return b, nil
}

// parseLastModified parses date strings like "2025-01-10 14:05" into time.Time
func parseLastModified(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", dateStr)
}

// FetchFiles retrieves and parses the file listing.
func (pf *PubMedFetcher) FetchFiles(ctx context.Context) ([]PubMedFile, error) {
	b, err := pf.fetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	var files []PubMedFile
	doc.Find("pre a").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !xmlPattern.MatchString(href) {
			return
		}
		// The listing is preformatted text: name, date, time, size.
		parts := strings.Fields(s.Parent().Text())
		for j, part := range parts {
			if part != href || j+3 >= len(parts) {
				continue
			}
			lastModified, err := parseLastModified(parts[j+1] + " " + parts[j+2])
			if err != nil {
				log.WithFields(log.Fields{"file": href, "err": err}).Warn("skipping listing entry")
				break
			}
			files = append(files, PubMedFile{
				Filename:     href,
				URL:          pf.BaseURL + href,
				LastModified: lastModified,
				Size:         parts[j+3],
			})
			break
		}
	})
	return files, nil
}

// FilterPubmedFiles returns a list of file filtered by a given filter function.
func FilterPubmedFiles(files []PubMedFile, f func(PubMedFile) bool) (result []PubMedFile) {
	for _, fi := range files {
		if f(fi) {
			result = append(result, fi)
		}
	}
	return
}

// Download saves a file into dir, unless it already exists there. The file is
// written under a temporary name first. Returns the destination path and
// whether a download happened.
func (pf *PubMedFetcher) Download(ctx context.Context, f PubMedFile, dir string) (string, bool, error) {
	dst := filepath.Join(dir, f.Filename)
	if _, err := os.Stat(dst); err == nil {
		log.WithField("file", dst).Debug("already synced")
		return dst, false, nil
	}
	body, err := pf.get(ctx, f.URL)
	if err != nil {
		return dst, false, err
	}
	defer body.Close()
	wip := dst + ".wip"
	out, err := os.Create(wip)
	if err != nil {
		return dst, false, err
	}
	h := md5.New()
	if _, err := io.Copy(io.MultiWriter(out, h), body); err != nil {
		out.Close()
		os.Remove(wip)
		return dst, false, err
	}
	if err := out.Close(); err != nil {
		os.Remove(wip)
		return dst, false, err
	}
	if pf.VerifyMD5 {
		want, err := pf.checksum(ctx, f.URL+".md5")
		if err != nil {
			os.Remove(wip)
			return dst, false, err
		}
		if got := hex.EncodeToString(h.Sum(nil)); got != want {
			os.Remove(wip)
			return dst, false, fmt.Errorf("%s: %w: got %s, want %s", f.Filename, ErrChecksumMismatch, got, want)
		}
	}
	if err := os.Rename(wip, dst); err != nil {
		return dst, false, err
	}
	return dst, true, nil
}

// checksum fetches an md5 file, formatted like "MD5(name.xml.gz)= 0a1b...".
func (pf *PubMedFetcher) checksum(ctx context.Context, link string) (string, error) {
	body, err := pf.get(ctx, link)
	if err != nil {
		return "", err
	}
	defer body.Close()
	b, err := io.ReadAll(io.LimitReader(body, 1024))
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file: %s", link)
	}
	return strings.ToLower(fields[len(fields)-1]), nil
}
