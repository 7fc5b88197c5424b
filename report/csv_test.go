package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-facetrack/tracker"
)

func TestFromResults(t *testing.T) {

	conf := float32(0.9)
	results := []tracker.Result{
		{Box: tracker.NewBox(1, 2, 3, 4), TrackID: 2, DetectConf: &conf, TrackQuality: 8},
		{Box: tracker.NewBox(5, 6, 7, 8), TrackID: 5, TrackQuality: 9},
	}

	rows := FromResults(12, 480, results)

	require.Len(t, rows, 2)
	assert.Equal(t, Row{Frame: 12, TimeMs: 480, Box: tracker.NewBox(1, 2, 3, 4),
		FaceID: 2, DetectConf: &conf, TrackConf: 8}, rows[0])
	assert.Nil(t, rows[1].DetectConf)
}

func TestCSVWriter(t *testing.T) {

	var buf bytes.Buffer

	w, err := NewCSVWriter(&buf)
	require.NoError(t, err)

	conf := float32(0.75)
	rows := []Row{
		{Frame: 0, TimeMs: 0, Box: tracker.NewBox(10, 20, 50, 60), FaceID: 0,
			DetectConf: &conf, TrackConf: 12.5},
		{Frame: 1, TimeMs: 33.5, Box: tracker.NewBox(11.5, 20, 51, 60), FaceID: 0,
			TrackConf: 9.25},
	}

	require.NoError(t, w.WriteRows(context.Background(), rows))
	require.NoError(t, w.Close())

	want := "frame,time_ms,left,top,right,bottom,face_id,face_detect_conf,face_track_conf\n" +
		"0,0,10,20,50,60,0,0.75,12.5000\n" +
		"1,33.5,11.5,20,51,60,0,,9.2500\n"

	assert.Equal(t, want, buf.String())
}

func TestCreateCSV(t *testing.T) {

	path := filepath.Join(t.TempDir(), "faces.csv")

	w, err := CreateCSV(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"frame,time_ms,left,top,right,bottom,face_id,face_detect_conf,face_track_conf\n",
		string(data))

	_, err = CreateCSV(filepath.Join(t.TempDir(), "missing", "faces.csv"))
	assert.Error(t, err)
}

// failWriter fails every write
type failWriter struct {
	err error
}

func (f failWriter) Write(p []byte) (int, error) {
	return 0, f.err
}

func TestCSVWriterCloseError(t *testing.T) {

	errDisk := errors.New("disk full")

	w, err := NewCSVWriter(failWriter{err: errDisk})
	require.NoError(t, err)

	// the header is only flushed on close
	assert.ErrorIs(t, w.Close(), errDisk)
	assert.NoError(t, w.Close())
}
