package sink_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfdecode/internal/journal"
	"sfdecode/internal/sink"
)

func TestJSONLWriterFieldNamesAndOrder(t *testing.T) {
	var buf bytes.Buffer
	w := sink.NewJSONLWriter(&buf)

	require.NoError(t, w.Accept(journal.Event{
		Host:         "hostA",
		Source:       "src/1",
		Sourcetype:   "st_1",
		IndexTime:    10000005,
		Message:      "hello",
		StreamID:     0,
		StreamOffset: 0,
	}))

	line := bytes.TrimRight(buf.Bytes(), "\n")
	assert.Equal(t,
		`{"host":"hostA","source":"src/1","sourcetype":"st_1","index_time":10000005,"message":"hello","stream_id":0,"stream_offset":0}`,
		string(line),
	)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(line, &decoded))
	assert.Equal(t, "hostA", decoded["host"])
}

func TestJSONLWriterOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	w := sink.NewJSONLWriter(&buf)

	require.NoError(t, w.Accept(journal.Event{Host: "a", Message: "one"}))
	require.NoError(t, w.Accept(journal.Event{Host: "b", Message: "two"}))

	scanner := bufio.NewScanner(&buf)
	var lines int
	for scanner.Scan() {
		lines++
	}
	assert.Equal(t, 2, lines)
}

func TestNopSinkCountsWithoutRetaining(t *testing.T) {
	n := sink.NewNopSink()
	for i := 0; i < 5; i++ {
		require.NoError(t, n.Accept(journal.Event{Message: "x"}))
	}
	assert.EqualValues(t, 5, n.Count())
}
