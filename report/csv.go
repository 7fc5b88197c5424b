package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// csvHeader are the CSV columns
var csvHeader = []string{
	"frame", "time_ms", "left", "top", "right", "bottom",
	"face_id", "face_detect_conf", "face_track_conf",
}

// CSVWriter writes rows as CSV records
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
	closed bool
}

// NewCSVWriter writes CSV to w, the header is written straight away
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {

	c := &CSVWriter{
		w: csv.NewWriter(w),
	}

	if err := c.w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("error writing CSV header: %w", err)
	}

	return c, nil
}

// CreateCSV creates the file at path and returns a CSVWriter writing to it
func CreateCSV(path string) (*CSVWriter, error) {

	f, err := os.Create(path)

	if err != nil {
		return nil, fmt.Errorf("error creating CSV file: %w", err)
	}

	c, err := NewCSVWriter(f)

	if err != nil {
		_ = f.Close()
		return nil, err
	}

	c.closer = f

	return c, nil
}

func formatFloat(v float64, bits int) string {
	return strconv.FormatFloat(v, 'f', -1, bits)
}

// WriteRows writes one record per row
func (c *CSVWriter) WriteRows(ctx context.Context, rows []Row) error {

	for _, row := range rows {

		detConf := ""

		if row.DetectConf != nil {
			detConf = formatFloat(float64(*row.DetectConf), 32)
		}

		err := c.w.Write([]string{
			strconv.Itoa(row.Frame),
			formatFloat(row.TimeMs, 64),
			formatFloat(float64(row.Box.Left), 32),
			formatFloat(float64(row.Box.Top), 32),
			formatFloat(float64(row.Box.Right), 32),
			formatFloat(float64(row.Box.Bottom), 32),
			strconv.Itoa(row.FaceID),
			detConf,
			strconv.FormatFloat(row.TrackConf, 'f', 4, 64),
		})

		if err != nil {
			return fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	c.w.Flush()

	return c.w.Error()
}

// Close flushes buffered records and closes the underlying file.  Closing
// again does nothing.
func (c *CSVWriter) Close() error {

	if c.closed {
		return nil
	}

	c.closed = true
	c.w.Flush()
	err := c.w.Error()

	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}

	return err
}
