package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"codeberg.org/snonux/kikitori/internal/anki"
	"codeberg.org/snonux/kikitori/internal/pipeline"
)

// RenderTable writes a rounded table. aligns may be shorter than headers;
// missing columns align left.
func RenderTable(w io.Writer, headers []string, rows [][]string, aligns []text.Align) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, c := range r {
			row[i] = c
		}
		tw.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align})
	}
	tw.SetColumnConfigs(configs)
	tw.Render()
}

// RenderPreview prints the vocabulary preview of a run.
func RenderPreview(w io.Writer, rows []pipeline.PreviewRow) {
	out := make([][]string, len(rows))
	for i, r := range rows {
		tr := r.Translation
		if tr == "" {
			tr = "(missing)"
		}
		out[i] = []string{fmt.Sprint(i + 1), r.Word, r.Reading, tr}
	}
	RenderTable(w, []string{"#", "Word", "Reading", "Translation"}, out,
		[]text.Align{text.AlignRight})
}

// Summary describes a written deck in one line.
func Summary(res *anki.Result, size int64) string {
	missing := 0
	for _, n := range res.Notes {
		if n.Translation == "" {
			missing++
		}
	}
	s := fmt.Sprintf("Deck written: %s (%d notes, %d audio clips, %s)",
		res.Path, len(res.Notes), res.Media, humanize.Bytes(uint64(size)))
	if missing > 0 {
		s += fmt.Sprintf(", %d without translation", missing)
	}
	return s
}
