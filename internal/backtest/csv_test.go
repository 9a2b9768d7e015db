package backtest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCandlesCSV(t *testing.T) {
	in := `time,open,high,low,close,volume
2024-03-01T00:00:00Z,100,101,99,100.5,12.5
2024-03-01 00:01:00, 100.5,102,100,101,3
`
	candles, err := ReadCandlesCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, t0, candles[0].Time)
	assert.Equal(t, 100.5, candles[0].Close)
	assert.Equal(t, t0.Add(time.Minute), candles[1].Time)
	assert.Equal(t, 3.0, candles[1].Volume)
}

func TestReadCandlesCSVRejectsBadRows(t *testing.T) {
	_, err := ReadCandlesCSV(strings.NewReader("2024-03-01T00:00:00Z,100,101,99,abc,1\n"))
	assert.ErrorContains(t, err, "close")

	_, err = ReadCandlesCSV(strings.NewReader("yesterday,100,101,99,100,1\n"))
	assert.Error(t, err)

	_, err = ReadCandlesCSV(strings.NewReader("2024-03-01T00:00:00Z,100\n"))
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	res, err := Replay(DefaultParams(), scenarioSetting(), bars(100, 95))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res.Rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(resultHeader, ","), lines[0])
	assert.Equal(t, "2024-03-01T00:00:00Z,KRW-BTC,100,100,100,100,buy initial,10000,5,100.05,-0.05,10000,0,9990000,5,9999995", lines[1])
}
