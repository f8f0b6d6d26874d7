package preflight

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nguyentantai21042004/video-comprehend/internal/extract"
)

// Table renders results as a rounded table. Status cells are colored only
// when colorize is set.
func Table(results []Result, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Dependency", "Status", "Tiers", "Version", "Detail"})

	for _, r := range results {
		status := "OK"
		colors := text.Colors{text.FgGreen}
		if !r.Passed {
			status = "MISSING"
			colors = text.Colors{text.FgRed}
			if len(r.Tiers) == 0 {
				status = "WARN"
				colors = text.Colors{text.FgYellow}
			}
		}
		if colorize {
			status = colors.Sprint(status)
		}
		tw.AppendRow(table.Row{r.Name, status, tierList(r.Tiers), r.Version, r.Detail})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 60},
	})
	return tw.Render()
}

func tierList(tiers []extract.Tier) string {
	parts := make([]string, len(tiers))
	for i, t := range tiers {
		parts[i] = strconv.Itoa(int(t))
	}
	return strings.Join(parts, ",")
}
