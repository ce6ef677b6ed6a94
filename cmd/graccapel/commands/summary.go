package commands

import (
	"cmp"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/graccapel/internal/apel"
)

// secondsPerHour converts summed durations for the summary table.
const secondsPerHour = 3600

type siteTotals struct {
	records int64
	jobs    int64
	wall    int64
	cpu     int64
}

// writeSummary renders a per-site totals table of the merged records.
func writeSummary(w io.Writer, records apel.RecordSet) {
	totals := map[string]*siteTotals{}

	for key, rec := range records {
		t, ok := totals[key.Site]
		if !ok {
			t = &siteTotals{}
			totals[key.Site] = t
		}

		t.records++
		t.jobs += rec.Jobs
		t.wall += rec.WallDur
		t.cpu += rec.CPUDur
	}

	sites := make([]string, 0, len(totals))
	for site := range totals {
		sites = append(sites, site)
	}

	slices.SortFunc(sites, cmp.Compare)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Site", "Records", "Jobs", "Wall (h)", "CPU (h)"})

	for _, site := range sites {
		t := totals[site]
		tw.AppendRow(table.Row{
			site,
			t.records,
			humanize.Comma(t.jobs),
			humanize.Comma(t.wall / secondsPerHour),
			humanize.Comma(t.cpu / secondsPerHour),
		})
	}

	tw.Render()
}
