package export

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/codeGROOVE-dev/companyfinder/pkg/record"
)

// Channel metadata of the RSS export.
const (
	FeedTitle       = "LinkedIn Company URL Feed"
	FeedLink        = "https://www.linkedin.com/"
	FeedDescription = "Feed of LinkedIn company URLs discovered by the scraper."
)

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

func writeRSS(path string, records []record.Record) error {
	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{Title: FeedTitle, Link: FeedLink, Description: FeedDescription},
	}
	for i := range records {
		r := &records[i]
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       r.CompanyName,
			Link:        r.LinkedInURL,
			Description: r.Extra[record.KeyResultTitle],
			PubDate:     r.Timestamp,
		})
	}

	return writeFile(path, func(f *os.File) error {
		if _, err := f.WriteString(xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(f)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode rss: %w", err)
		}
		return enc.Close()
	})
}

// writeXML emits <companies><company><key>value</key>...</company></companies>.
// Keys vary per record, so elements are written token by token.
func writeXML(path string, records []record.Record) error {
	return writeFile(path, func(f *os.File) error {
		if _, err := f.WriteString(xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(f)
		root := xml.StartElement{Name: xml.Name{Local: "companies"}}
		if err := enc.EncodeToken(root); err != nil {
			return err
		}
		for i := range records {
			r := &records[i]
			company := xml.StartElement{Name: xml.Name{Local: "company"}}
			if err := enc.EncodeToken(company); err != nil {
				return err
			}
			for _, k := range r.Keys() {
				el := xml.StartElement{Name: xml.Name{Local: k}}
				if err := enc.EncodeElement(r.Get(k), el); err != nil {
					return fmt.Errorf("encode %s: %w", k, err)
				}
			}
			if err := enc.EncodeToken(company.End()); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(root.End()); err != nil {
			return err
		}
		return enc.Close()
	})
}
