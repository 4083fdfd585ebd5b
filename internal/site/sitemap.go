package site

import (
	"encoding/xml"
	"io"
	"time"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	NS      string   `xml:"xmlns,attr"`
	XHTML   string   `xml:"xmlns:xhtml,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc     string    `xml:"loc"`
	LastMod string    `xml:"lastmod,omitempty"`
	Links   []xmlLink `xml:"xhtml:link"`
}

type xmlLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// WriteSitemap encodes urls as a sitemap with hreflang alternates.
func WriteSitemap(w io.Writer, urls []SitemapURL) error {
	set := xmlURLSet{NS: sitemapNS, XHTML: xhtmlNS, URLs: make([]xmlURL, 0, len(urls))}
	for _, entry := range urls {
		item := xmlURL{Loc: entry.Loc}
		if entry.LastMod != nil && !entry.LastMod.IsZero() {
			item.LastMod = entry.LastMod.UTC().Format(time.RFC3339)
		}
		for _, alt := range entry.Alternates {
			item.Links = append(item.Links, xmlLink{Rel: "alternate", Hreflang: alt.Locale, Href: alt.URL})
		}
		set.URLs = append(set.URLs, item)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	return enc.Flush()
}
