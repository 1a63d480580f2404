package templates

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/darshan-rambhia/whm/internal/model"
)

// IndexData is everything the chart index page shows.
type IndexData struct {
	Tables     []TableEntry
	Recordings map[model.Scope]model.Recording
	Report     *model.Snapshot // latest full report, may be nil
	Now        time.Time
}

const indexStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
h1{font-size:1.4rem}h2{font-size:1.1rem;margin-top:1.5rem}
table{border-collapse:collapse}td,th{padding:.25rem .75rem;text-align:left;border-bottom:1px solid #ddd}
.muted{color:#777}.status-ok{color:#1a7f37}.status-warning{color:#9a6700}
.status-critical{color:#cf222e}.status-unknown{color:#777}`

// Index renders the chart index: one section per scope linking to each
// chart, plus the disk health of the latest full report.
func Index(data IndexData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>WHM charts</title><style>")
		b.WriteString(indexStyle)
		b.WriteString("</style></head><body><h1>WHM charts</h1>")

		byScope := GroupByScope(data.Tables)
		for _, scope := range model.Scopes {
			rec, ok := data.Recordings[scope]
			var last time.Time
			if ok {
				last = rec.RecordedAt
			}
			fmt.Fprintf(&b, "<h2>%s</h2><p class=\"muted\">last recorded %s &middot; %s</p>",
				templ.EscapeString(string(scope)),
				templ.EscapeString(FormatAge(last, data.Now)),
				templ.EscapeString(RecordingSummary(rec, ok)))

			entries := byScope[scope]
			if len(entries) == 0 {
				b.WriteString("<p class=\"muted\">no chart tables</p>")
				continue
			}
			b.WriteString("<table><tr><th>group</th><th>columns</th></tr>")
			for _, e := range entries {
				fmt.Fprintf(&b, "<tr><td><a href=\"%s\">%s</a></td><td>%d</td></tr>",
					templ.EscapeString(string(templ.URL("/charts/"+e.Table))),
					templ.EscapeString(e.Group), e.Columns)
			}
			b.WriteString("</table>")
		}

		if data.Report != nil {
			if disks := Disks(data.Report.Drives); len(disks) > 0 {
				fmt.Fprintf(&b, "<h2>disks</h2><p class=\"muted\">report %s</p><table><tr><th>disk</th><th>size</th><th>health</th><th>status</th></tr>",
					templ.EscapeString(FormatTime(data.Report.CollectedAt)))
				for _, d := range disks {
					fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td class=\"%s\">%s</td></tr>",
						templ.EscapeString(d.Name), templ.EscapeString(d.Size),
						templ.EscapeString(d.SmartHealth),
						StatusClass(d.SmartStatus), StatusLabel(d.SmartStatus))
				}
				b.WriteString("</table>")
			}
		}

		b.WriteString("</body></html>")
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
