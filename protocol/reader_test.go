package protocol

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderDeliversUntilEOF(t *testing.T) {
	pr, pw := io.Pipe()
	r := NewReader(pr, 8)

	go func() {
		for _, f := range frames(
			Record{Clock: 0, Level: 1, Task: "blink", Text: "blink"},
			Record{Clock: 1000, Level: 1, Task: "blink", Text: "blink"},
		) {
			// Split every frame to exercise reassembly.
			pw.Write(f[:3])
			pw.Write(f[3:])
		}
		pw.Close()
	}()

	var got []Record
	for rec := range r.Records() {
		got = append(got, rec)
	}
	require.Len(t, got, 2)
	assert.Equal(t, uint32(1000), got[1].Clock)
	assert.NoError(t, r.Err())
}

func TestReaderDropsOldestWhenBehind(t *testing.T) {
	r := &Reader{records: make(chan Record, 2)}
	for _, text := range []string{"1", "2", "3", "4"} {
		r.deliver(Record{Task: "c", Text: text})
	}
	close(r.records)

	var got []string
	for rec := range r.Records() {
		got = append(got, rec.Text)
	}
	assert.Equal(t, []string{"3", "4"}, got)
}

func TestReaderClose(t *testing.T) {
	pr, _ := io.Pipe()
	r := NewReader(pr, 1)
	require.NoError(t, r.Close())

	_, open := <-r.Records()
	assert.False(t, open)
	assert.NoError(t, r.Close())
}
