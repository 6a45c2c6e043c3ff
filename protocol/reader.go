package protocol

import (
	"errors"
	"io"
	"sync"
	"time"
)

// Reader pulls frames from a port on a background goroutine and delivers
// the decoded records on a channel. When the consumer falls behind, the
// oldest undelivered record is dropped.
type Reader struct {
	port     io.ReadCloser
	fifo     *FifoBuffer
	deframer *Deframer
	records  chan Record

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
	err      error
}

// NewReader starts reading port. depth sizes the record channel.
func NewReader(port io.ReadCloser, depth int) *Reader {
	if depth <= 0 {
		depth = 64
	}
	r := &Reader{
		port:     port,
		fifo:     NewFifoBuffer(4 * FrameMax),
		records:  make(chan Record, depth),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	r.deframer = NewDeframer(r.deliver)
	go r.readLoop()
	return r
}

// Records is closed when the port reaches EOF or the reader is closed.
func (r *Reader) Records() <-chan Record {
	return r.records
}

// Stats returns the deframer counters.
func (r *Reader) Stats() *Stats {
	return r.deframer.Stats()
}

// Err returns the error that ended the read loop, if any. Valid once
// Records is closed.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) readLoop() {
	defer close(r.doneChan)
	defer close(r.records)

	buf := make([]byte, FrameMax)
	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		n, err := r.port.Read(buf)
		if n > 0 {
			r.feed(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case <-r.stopChan:
				return
			default:
			}
			r.err = err
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (r *Reader) feed(data []byte) {
	for len(data) > 0 {
		n := r.fifo.Write(data)
		data = data[n:]
		r.deframer.Receive(r.fifo)
		if n == 0 && r.fifo.Free() == 0 {
			// A full ring with no frame in it is garbage.
			r.fifo.Reset()
		}
	}
}

func (r *Reader) deliver(rec Record) {
	select {
	case r.records <- rec:
		return
	default:
	}
	select {
	case <-r.records:
	default:
	}
	select {
	case r.records <- rec:
	default:
	}
}

// Close stops the loop and closes the port.
func (r *Reader) Close() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.stopChan)
		err = r.port.Close()
		<-r.doneChan
	})
	return err
}
