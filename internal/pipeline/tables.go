package pipeline

import (
	"regexp"
	"strings"
)

// DefaultTableCaption is used when no caption marker precedes a table.
const DefaultTableCaption = "Technical Specifications"

// captionLookback is how many preceding lines may hold a caption marker.
const captionLookback = 3

var captionMarker = regexp.MustCompile(`^\*\*(?:Table|Tabla)\s+\d+:\s*([^*]+?)\s*\*\*$`)

// table is the transient model built from a pipe-table run.
type table struct {
	header []string
	rows   [][]string
}

func tableStage(defaultCaption string) func(Document) Document {
	if defaultCaption == "" {
		defaultCaption = DefaultTableCaption
	}
	return func(doc Document) Document {
		lines := splitLines(doc)
		out := make([]line, 0, len(lines))

		for i := 0; i < len(lines); {
			if !isPipeLine(lines[i]) || i+1 >= len(lines) || !isPipeLine(lines[i+1]) {
				out = append(out, lines[i])
				i++
				continue
			}

			rows, end := collectTableRun(lines, i)
			tbl, ok := parseTable(rows)
			if !ok {
				out = append(out, lines[i])
				i++
				continue
			}

			caption := defaultCaption
			if idx, text, found := findCaption(out); found {
				caption = text
				out = append(out[:idx], out[idx+1:]...)
			}
			out = append(out, tbl.render(caption))
			i = end
		}
		return joinLines(out)
	}
}

// isPipeLine reports whether l is body prose containing a pipe.
func isPipeLine(l line) bool {
	return len(l) > 0 && l.isProse() && strings.Contains(l.text(), "|")
}

// collectTableRun gathers the pipe lines starting at start. Blank lines are
// skipped only when another pipe line follows them. It returns the row texts
// and the index just past the run.
func collectTableRun(lines []line, start int) ([]string, int) {
	rows := []string{lines[start].text()}
	end := start + 1
	for j := start + 1; j < len(lines); {
		if isPipeLine(lines[j]) {
			rows = append(rows, lines[j].text())
			j++
			end = j
			continue
		}
		if lines[j].isBlank() {
			k := j
			for k < len(lines) && lines[k].isBlank() {
				k++
			}
			if k < len(lines) && isPipeLine(lines[k]) {
				j = k
				continue
			}
		}
		break
	}
	return rows, end
}

// parseTable builds the table model. It reports false when the run is not a
// usable table: fewer than three lines, no header cells or no data rows.
func parseTable(rows []string) (table, bool) {
	if len(rows) < 3 {
		return table{}, false
	}

	var header []string
	for _, cell := range splitPipes(rows[0]) {
		if cell = strings.TrimSpace(cell); cell != "" {
			header = append(header, cell)
		}
	}
	if len(header) == 0 {
		return table{}, false
	}

	tbl := table{header: header}
	for _, row := range rows[2:] {
		cells := splitRow(row)
		empty := true
		for _, c := range cells {
			if c != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		tbl.rows = append(tbl.rows, fitRow(cells, len(header)))
	}
	if len(tbl.rows) == 0 {
		return table{}, false
	}
	return tbl, true
}

// splitRow strips one leading and one trailing pipe and trims every cell.
// Interior empty cells are kept.
func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	cells := splitPipes(row)
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// splitPipes splits on cell pipes. Pipes inside backtick code and escaped
// pipes (\|) belong to the cell; an escaped pipe loses its backslash.
func splitPipes(row string) []string {
	var (
		cells []string
		cur   strings.Builder
		ticks int
	)
	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == '`':
			n := 1
			for i+n < len(row) && row[i+n] == '`' {
				n++
			}
			switch {
			case ticks == 0 && strings.Contains(row[i+n:], row[i:i+n]):
				ticks = n
			case ticks == n:
				ticks = 0
			}
			cur.WriteString(row[i : i+n])
			i += n - 1
		case c == '\\' && i+1 < len(row) && row[i+1] == '|':
			cur.WriteByte('|')
			i++
		case c == '|' && ticks == 0:
			cells = append(cells, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(cells, cur.String())
}

func fitRow(cells []string, n int) []string {
	if len(cells) >= n {
		return cells[:n]
	}
	padded := make([]string, n)
	copy(padded, cells)
	return padded
}

// columnSpec centres narrow tables and left-aligns wider ones.
func columnSpec(n int) string {
	align := "l"
	if n <= 3 {
		align = "c"
	}
	return "|" + strings.Repeat(align+"|", n)
}

// findCaption looks at the last lines already emitted for a caption marker.
func findCaption(out []line) (int, string, bool) {
	from := len(out) - captionLookback
	if from < 0 {
		from = 0
	}
	for j := from; j < len(out); j++ {
		if !out[j].isProse() {
			continue
		}
		if m := captionMarker.FindStringSubmatch(strings.TrimSpace(out[j].text())); m != nil {
			return j, m[1], true
		}
	}
	return 0, "", false
}

func (t table) render(caption string) line {
	l := line{markup("\\begin{table}[H]\n\\centering\n\\small\n" +
		`\begin{tabular}{` + columnSpec(len(t.header)) + "}\n\\hline\n")}
	l = append(l, t.row(t.header)...)
	l = append(l, markup(" \\\\\n\\hline\n"))
	for _, r := range t.rows {
		l = append(l, t.row(r)...)
		l = append(l, markup(" \\\\\n"))
	}
	l = append(l,
		markup("\\hline\n\\end{tabular}\n\\caption{"),
		argProse(caption),
		markup("}\n\\end{table}"),
	)
	return l
}

// row indents every tabular row so cell text never starts a line.
func (t table) row(cells []string) []Span {
	spans := make([]Span, 0, len(cells)*2+1)
	spans = append(spans, markup("  "))
	for i, c := range cells {
		if i > 0 {
			spans = append(spans, markup(" & "))
		}
		spans = append(spans, prose(c))
	}
	return spans
}
