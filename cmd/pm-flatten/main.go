// pm-flatten prints the plain text of XML elements with inline markup, one
// line per element. Useful to check titles or citations of a single file.
//
//	$ pm-flatten -p './/Citation' pubmed24n0001.xml.gz
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
	"github.com/miku/pubmedkit"
	"github.com/miku/pubmedkit/batch"
	"github.com/miku/pubmedkit/mixed"
	"github.com/miku/pubmedkit/normal"
	log "github.com/sirupsen/logrus"
)

var (
	elementPath = flag.String("p", ".//ArticleTitle", "etree path of elements to flatten")
	skipEmpty   = flag.Bool("e", false, "skip elements without text")
	keysOnly    = flag.Bool("k", false, "print a normalized key instead of the text")
	showVersion = flag.Bool("version", false, "show version")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(pubmedkit.Version)
		os.Exit(0)
	}
	path, err := etree.CompilePath(*elementPath)
	if err != nil {
		log.Fatal(err)
	}
	bw := bufio.NewWriter(os.Stdout)
	defer bw.Flush()
	if flag.NArg() == 0 {
		if err := flatten(os.Stdin, path, bw); err != nil {
			log.Fatal(err)
		}
		return
	}
	for _, name := range flag.Args() {
		rc, err := batch.OpenInput(name)
		if err != nil {
			log.Fatal(err)
		}
		if err := flatten(rc, path, bw); err != nil {
			log.WithField("file", name).Fatal(err)
		}
		rc.Close()
	}
}

func flatten(r io.Reader, path etree.Path, w io.Writer) error {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return err
	}
	for _, el := range doc.FindElementsPath(path) {
		s := mixed.FromElement(el).String()
		if s == "" && *skipEmpty {
			continue
		}
		if *keysOnly {
			s = normal.TitleKey.Normalize(s)
		}
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}
