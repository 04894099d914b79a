// Package pubmedkit turns MEDLINE/PubMed XML article sets into flat JSON lines.
package pubmedkit

const (
	// AppName is used for cache and config directories.
	AppName = "pubmedkit"
	// Version of the tools.
	Version = "0.1.0"
)
