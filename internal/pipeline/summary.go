package pipeline

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary reports what a run did.
type Summary struct {
	Sitemaps          int // Drug sitemaps listed in the index
	SitemapsProcessed int
	SitemapsSkipped   int
	PagesDiscovered   int // URLs listed across processed sitemaps
	PagesAttempted    int
	PagesFailed       int
	RowsWritten       int
	OutputPath        string
	Duration          time.Duration
}

// Render writes the summary as a table.
func (s Summary) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Drug sitemaps", humanize.Comma(int64(s.Sitemaps))},
		{"Sitemaps processed", humanize.Comma(int64(s.SitemapsProcessed))},
		{"Sitemaps skipped", humanize.Comma(int64(s.SitemapsSkipped))},
		{"Pages discovered", humanize.Comma(int64(s.PagesDiscovered))},
		{"Pages attempted", humanize.Comma(int64(s.PagesAttempted))},
		{"Pages failed", humanize.Comma(int64(s.PagesFailed))},
		{"Rows written", humanize.Comma(int64(s.RowsWritten))},
		{"Output", s.OutputPath},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
