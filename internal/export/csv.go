package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/windrose"
)

// CSV headers for the renamed columns.
const (
	HeaderDate      = "Fecha"
	HeaderUV        = "UV (W/m²)"
	HeaderDirection = "Dirección"
	HeaderShare     = "% Dirección"
)

// TimestampLayout is how timestamps are written to delimited text.
const TimestampLayout = "2006-01-02 15:04:05"

// WriteUVCSV writes Fecha, UV (W/m²) and the derived MED columns.
func WriteUVCSV(w io.Writer, res *med.Result) error {
	cw := csv.NewWriter(w)
	header := []string{HeaderDate, HeaderUV}
	for _, c := range res.Columns {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, o := range res.Rows {
		rec := []string{o.Time.Format(TimestampLayout), formatFloat(res.UV[i])}
		for _, c := range res.Columns {
			rec = append(rec, formatFloat(c.Values[i]))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWindCSV writes the sector share table.
func WriteWindCSV(w io.Writer, rose *windrose.Rose) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{HeaderDirection, HeaderShare}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for k, s := range windrose.Sectors {
		if err := cw.Write([]string{s, strconv.FormatFloat(rose.Percent[k], 'f', 1, 64)}); err != nil {
			return fmt.Errorf("write csv row %d: %w", k+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
