// Package config holds the settings of a conversion run. Values come from
// built-in defaults, an optional YAML file and command line flags, in that
// order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/author"
	"github.com/miku/pubmedkit/convert"
	"github.com/miku/pubmedkit/reference"
	"github.com/miku/pubmedkit/stats"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the config file name under the XDG config directory.
const ConfigFile = "config.yml"

// Config for a conversion run.
type Config struct {
	// Prefix is the path prefix of the numbered input files, e.g.
	// "/data/pubmed24n" for /data/pubmed24n0001.xml.gz.
	Prefix string `yaml:"prefix"`
	Start  int    `yaml:"start"`
	Count  int    `yaml:"count"`
	// Workers, number of documents converted in parallel.
	Workers          int    `yaml:"workers"`
	Vocabulary       string `yaml:"vocabulary"`
	MaxReferenceID   uint64 `yaml:"max_reference_id"`
	ReferencePolicy  string `yaml:"reference_policy"` // skip or strict
	AuthorPolicy     string `yaml:"author_policy"`    // strict or lenient
	NestedReferences bool   `yaml:"nested_references"`
	IsolateArticles  bool   `yaml:"isolate_articles"`
	CompressOutput   bool   `yaml:"compress_output"`
	Verbose          bool   `yaml:"verbose"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Start:           1,
		Count:           1,
		Workers:         runtime.NumCPU(),
		Vocabulary:      reference.DefaultVocabulary,
		MaxReferenceID:  reference.DefaultMaxID,
		ReferencePolicy: reference.Skip.String(),
		AuthorPolicy:    author.Strict.String(),
	}
}

// DefaultPath returns the path of the config file, respecting
// XDG_CONFIG_HOME.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, pubmedkit.AppName, ConfigFile)
}

// LoadFile overlays values from a YAML file. Keys missing from the file keep
// their current value. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// RegisterFlags binds flags to the fields of c, using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Prefix, "p", c.Prefix, "input file prefix, e.g. /data/pubmed24n")
	fs.IntVar(&c.Start, "s", c.Start, "first file number")
	fs.IntVar(&c.Count, "n", c.Count, "number of files")
	fs.IntVar(&c.Workers, "w", c.Workers, "number of workers")
	fs.StringVar(&c.Vocabulary, "vocabulary", c.Vocabulary, "reference id vocabulary to keep")
	fs.Uint64Var(&c.MaxReferenceID, "max-ref-id", c.MaxReferenceID, "largest reference id to keep")
	fs.StringVar(&c.ReferencePolicy, "ref-policy", c.ReferencePolicy, "malformed reference ids: skip or strict")
	fs.StringVar(&c.AuthorPolicy, "author-policy", c.AuthorPolicy, "ambiguous authors: strict or lenient")
	fs.BoolVar(&c.NestedReferences, "nested-refs", c.NestedReferences, "include nested reference lists")
	fs.BoolVar(&c.IsolateArticles, "isolate", c.IsolateArticles, "skip articles rejected by the author or reference policy instead of failing the file")
	fs.BoolVar(&c.CompressOutput, "z", c.CompressOutput, "write zstd compressed output")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "verbose output")
}

// Parse builds a configuration from defaults, the config file named by the
// -config flag and the flags in args. Flags take precedence over the file,
// so args are parsed again after the file has been read. Other flags defined
// on fs are parsed as usual.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	c := Default()
	c.RegisterFlags(fs)
	path := fs.String("config", DefaultPath(), "path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := c.LoadFile(*path); err != nil {
		return nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges and policy names.
func (c *Config) Validate() error {
	if c.Count < 1 {
		return fmt.Errorf("count must be positive, got %d", c.Count)
	}
	if c.Start < 0 {
		return fmt.Errorf("start must not be negative, got %d", c.Start)
	}
	if c.Vocabulary == "" {
		return errors.New("empty vocabulary")
	}
	if _, err := reference.ParsePolicy(c.ReferencePolicy); err != nil {
		return err
	}
	if _, err := author.ParsePolicy(c.AuthorPolicy); err != nil {
		return err
	}
	return nil
}

// NewConverter returns a converter set up according to c, updating the given
// counters.
func (c *Config) NewConverter(counters *stats.Counters) (*convert.Converter, error) {
	refPolicy, err := reference.ParsePolicy(c.ReferencePolicy)
	if err != nil {
		return nil, err
	}
	authorPolicy, err := author.ParsePolicy(c.AuthorPolicy)
	if err != nil {
		return nil, err
	}
	conv := convert.New(counters)
	conv.Authors.Policy = authorPolicy
	conv.References = &reference.Extractor{
		Vocabulary: c.Vocabulary,
		MaxID:      c.MaxReferenceID,
		Policy:     refPolicy,
		Nested:     c.NestedReferences,
	}
	conv.IsolateArticles = c.IsolateArticles
	return conv, nil
}
