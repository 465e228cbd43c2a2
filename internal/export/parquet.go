package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/KaramelBytes/uvmed-cli/internal/med"
)

// MEDRecord is one row of the long-format Parquet export: one value per
// observation and derived column.
type MEDRecord struct {
	Timestamp int64   `parquet:"timestamp"`
	Fecha     string  `parquet:"fecha"`
	UV        float64 `parquet:"uv"`
	Column    string  `parquet:"column"`
	Skin      string  `parquet:"skin"`
	Threshold float64 `parquet:"threshold"`
	Value     float64 `parquet:"value"`
}

// Records flattens a conversion result in row-major order.
func Records(res *med.Result) []MEDRecord {
	out := make([]MEDRecord, 0, len(res.Rows)*len(res.Columns))
	for i, o := range res.Rows {
		for _, c := range res.Columns {
			out = append(out, MEDRecord{
				Timestamp: o.Time.UnixMilli(),
				Fecha:     o.Time.Format(TimestampLayout),
				UV:        res.UV[i],
				Column:    c.Name,
				Skin:      c.Skin,
				Threshold: c.Threshold,
				Value:     c.Values[i],
			})
		}
	}
	return out
}

// WriteUVParquet writes the conversion result as Parquet.
func WriteUVParquet(w io.Writer, res *med.Result) error {
	pw := parquet.NewGenericWriter[MEDRecord](w)
	if _, err := pw.Write(Records(res)); err != nil {
		_ = pw.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
