package debug

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"
)

// ParamRow is one line of a parameter dump.
type ParamRow struct {
	ID        uint32
	Name      string
	Kind      string
	Owner     string
	Persisted bool
	Shared    bool
	Value     string
}

// ParamTable collects parameter rows for a diagnostic dump.
type ParamTable struct {
	Title string
	Rows  []ParamRow
}

// Add appends a row.
func (t *ParamTable) Add(row ParamRow) {
	t.Rows = append(t.Rows, row)
}

// WriteTo renders the table as aligned columns.
func (t *ParamTable) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	if t.Title != "" {
		fmt.Fprintf(&buf, "%s\n", t.Title)
	}
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tOWNER\tSAVED\tSHARED\tVALUE")
	for _, r := range t.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.Kind, r.Owner, yesNo(r.Persisted), yesNo(r.Shared), r.Value)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// String renders the table.
func (t *ParamTable) String() string {
	var buf bytes.Buffer
	t.WriteTo(&buf)
	return buf.String()
}

// Log writes the table to l, one line per message.
func (t *ParamTable) Log(l *Logger) {
	sc := bufio.NewScanner(bytes.NewBufferString(t.String()))
	for sc.Scan() {
		l.Info("%s", sc.Text())
	}
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "-"
}
