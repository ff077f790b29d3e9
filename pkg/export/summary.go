package export

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/codeGROOVE-dev/companyfinder/pkg/record"
)

// Summary renders a table of company, URL, and info to w.
func Summary(w io.Writer, records []record.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Company", "LinkedIn URL", "Info"})

	found := 0
	for i := range records {
		r := &records[i]
		if r.LinkedInURL != "" {
			found++
		}
		t.AppendRow(table.Row{r.CompanyName, r.LinkedInURL, r.Info})
	}

	t.AppendFooter(table.Row{"", "Found", fmt.Sprintf("%d/%d", found, len(records))})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
