package report

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/foamcheck/pkg/residual"
	"github.com/ja7ad/foamcheck/pkg/termination"
)

var fields = []string{"p_rgh", "omega", "k"}

func sampleRecords(t *testing.T) []residual.Record {
	t.Helper()
	log := strings.Join([]string{
		"Time = 0.300024",
		"GAMG:  Solving for p_rgh, Initial residual = 1e-05, Final residual = 111, No Iterations 3",
		"smoothSolver:  Solving for omega, Initial residual = 1e-05, Final residual = 222, No Iterations 3",
		"smoothSolver:  Solving for k, Initial residual = 1e-05, Final residual = 333, No Iterations 3",
		"Time = 0.300048",
		"GAMG:  Solving for p_rgh, Initial residual = 1e-05, Final residual = 2.0084695e-11, No Iterations 3",
		"smoothSolver:  Solving for omega, Initial residual = 1e-05, Final residual = 2.6502596e-09, No Iterations 3",
		"smoothSolver:  Solving for k, Initial residual = 1e-05, Final residual = 1.4049786e-08, No Iterations 3",
		"",
	}, "\n")
	recs, err := residual.Extract(strings.NewReader(log), residual.Config{Fields: fields})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	return recs
}

func partialRecord() residual.Record {
	return residual.Record{
		Time:      "0.4",
		Residuals: []residual.Residual{{}, {Text: "5e-07", Value: 5e-07, Observed: true}, {}},
	}
}

func TestWriteCSV(t *testing.T) {
	recs := append(sampleRecords(t), partialRecord())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fields, recs, 0))

	want := "Time;p_rgh;omega;k\n" +
		"0.300024;111;222;333\n" +
		"0.300048;2.0084695e-11;2.6502596e-09;1.4049786e-08\n" +
		"0.4;;5e-07;\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, fields, recs[:1], ','))
	assert.Equal(t, "Time,p_rgh,omega,k\n0.300024,111,222,333\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	recs := append(sampleRecords(t), partialRecord())

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, fields, recs))

	var got []struct {
		Time      string              `json:"time"`
		Residuals map[string]*float64 `json:"residuals"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)

	assert.Equal(t, "0.300024", got[0].Time)
	require.NotNil(t, got[0].Residuals["k"])
	assert.Equal(t, 333.0, *got[0].Residuals["k"])
	assert.InDelta(t, 2.0084695e-11, *got[1].Residuals["p_rgh"], 1e-20)

	assert.Nil(t, got[2].Residuals["p_rgh"])
	assert.Nil(t, got[2].Residuals["k"])
	require.NotNil(t, got[2].Residuals["omega"])
}

func TestJSONWriter_EmptyAndClosed(t *testing.T) {
	var buf bytes.Buffer
	jw, err := NewJSONWriter(&buf, fields)
	require.NoError(t, err)
	require.NoError(t, jw.Close())
	require.NoError(t, jw.Close())

	var got []any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Empty(t, got)

	assert.ErrorIs(t, jw.Write(partialRecord()), ErrClosed)
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTableWriter(&buf, fields)
	for _, r := range append(sampleRecords(t), partialRecord()) {
		require.NoError(t, tw.Write(r))
	}
	require.NoError(t, tw.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "TIME"))
	assert.Contains(t, lines[3], "2.0084695e-11")
	assert.Equal(t, []string{"0.4", "-", "5e-07", "-"}, strings.Fields(lines[4]))
}

func TestSummarize(t *testing.T) {
	recs := append(sampleRecords(t), partialRecord())
	sums := Summarize(fields, recs)

	p := sums[0]
	assert.Equal(t, 2, p.Observed)
	assert.InDelta(t, 2.0084695e-11, p.Min, 1e-20)
	assert.Equal(t, 111.0, p.Max)
	assert.Equal(t, "0.300048", p.LastTime)

	o := sums[1]
	assert.Equal(t, 3, o.Observed)
	assert.Equal(t, 5e-07, o.Last)
	assert.Equal(t, "0.4", o.LastTime)

	empty := Summarize([]string{"nut"}, recs)[0]
	assert.Equal(t, 0, empty.Observed)
	assert.True(t, math.IsNaN(empty.Min))

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, append(sums, empty)))
	assert.Contains(t, buf.String(), "p_rgh")
	assert.Contains(t, buf.String(), "nut")
}

func TestResidualXYs(t *testing.T) {
	recs := append(sampleRecords(t), partialRecord(), residual.Record{
		Time:      "bad",
		Residuals: []residual.Residual{{Text: "1", Value: 1, Observed: true}},
	})

	xys := ResidualXYs(recs, 0)
	require.Len(t, xys, 2)
	assert.Equal(t, 0.300024, xys[0].X)
	assert.Equal(t, 111.0, xys[0].Y)

	assert.Len(t, ResidualXYs(recs, 1), 3)
}

func TestPlot(t *testing.T) {
	t.Run("nothing_to_plot", func(t *testing.T) {
		_, err := Plot(fields, []residual.Record{partialRecord()}, PlotOptions{})
		require.NoError(t, err, "omega has one point")

		_, err = Plot([]string{"p_rgh"}, []residual.Record{partialRecord()}, PlotOptions{})
		require.ErrorIs(t, err, ErrNothingToPlot)

		_, err = Plot(fields, nil, PlotOptions{})
		require.ErrorIs(t, err, ErrNothingToPlot)
	})

	t.Run("save_png_and_svg", func(t *testing.T) {
		recs := sampleRecords(t)
		dir := t.TempDir()
		for _, name := range []string{"residuals.png", "residuals.svg"} {
			path := filepath.Join(dir, name)
			require.NoError(t, SavePlot(path, fields, recs, PlotOptions{Width: 400, Height: 300}))
			st, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, st.Size(), int64(0))
		}
	})
}

func TestWriteHTML(t *testing.T) {
	recs := append(sampleRecords(t), partialRecord())
	rows := []termination.Row{{Time: 0, Value: 0.9}, {Time: 1, Value: 0.4}, {Time: 2, Value: 0.41}}
	res := &termination.Result{Index: 2, Time: 2}

	var buf bytes.Buffer
	err := WriteHTML(&buf, "run 42",
		ResidualChart("residuals", fields, recs),
		SeriesChart("alpha.water", rows, termination.Config{LevelThreshold: 0.5}, res),
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "echarts")
	assert.Contains(t, out, "run 42")
	for _, f := range fields {
		assert.Contains(t, out, f)
	}
	assert.Contains(t, out, "0.300048")
	assert.Contains(t, out, `"log"`)
	assert.Contains(t, out, "trend")
}

func TestSeriesChart_NaN(t *testing.T) {
	rows := []termination.Row{{Time: 0, Value: math.NaN()}, {Time: 1, Value: 0.4}}

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "nan", SeriesChart("alpha", rows, termination.Config{LevelThreshold: 0.5}, nil)))
	assert.Contains(t, buf.String(), `"-"`)
}
