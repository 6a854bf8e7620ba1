// Package sitemap builds the SKU → product URL index from a vendor's
// sitemaps.org XML document.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Namespace is the sitemaps.org protocol namespace. Only elements in this
// namespace are read.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// document covers both <urlset> and <sitemapindex> roots.
type document struct {
	XMLName  xml.Name
	URLs     []locEntry `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 url"`
	Sitemaps []locEntry `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 sitemap"`
}

type locEntry struct {
	Loc string `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 loc"`
}

// Document is a parsed sitemap: page locations for a <urlset>, child
// sitemap locations for a <sitemapindex>. Order follows the document.
type Document struct {
	URLs     []string
	Sitemaps []string
}

// IsIndex reports whether the document is a sitemap index.
func (d *Document) IsIndex() bool {
	return len(d.Sitemaps) > 0
}

// ErrNoRoot is returned when the body holds no XML element at all.
var ErrNoRoot = errors.New("sitemap: no root element")

// Parse decodes a sitemap document. It fails on malformed XML.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var raw document
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRoot
		}
		return nil, fmt.Errorf("sitemap: parse: %w", err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}

	doc := &Document{
		URLs:     locations(raw.URLs),
		Sitemaps: locations(raw.Sitemaps),
	}
	return doc, nil
}

// expectEOF rejects anything after the root element other than whitespace,
// comments and processing instructions.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("sitemap: parse: after root element: %w", err)
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return fmt.Errorf("sitemap: parse: text after root element")
			}
		default:
			return fmt.Errorf("sitemap: parse: content after root element")
		}
	}
}

func locations(entries []locEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}
