package protocol

import "sync/atomic"

// Stats counts what the deframer saw. Safe to read from another goroutine.
type Stats struct {
	Frames  atomic.Uint32 // good frames
	Lost    atomic.Uint32 // frames missing from the sequence
	Corrupt atomic.Uint32 // bad length, sync, CRC or payload
	Unknown atomic.Uint32 // good frames with an unknown message id
}

// Deframer finds frames in a byte stream, checks them and hands decoded
// records to the handler. After any framing error it drops bytes up to the
// next sync byte and carries on from there.
type Deframer struct {
	handler func(Record)

	synced  bool
	haveSeq bool
	expect  uint8

	stats Stats
}

func NewDeframer(handler func(Record)) *Deframer {
	return &Deframer{handler: handler, synced: true}
}

// Stats returns the running counters.
func (d *Deframer) Stats() *Stats {
	return &d.stats
}

// Receive consumes every complete frame in input. A trailing partial frame
// is left for the next call.
func (d *Deframer) Receive(input InputBuffer) {
	data := input.Data()

	for len(data) > 0 {
		if !d.synced {
			i := 0
			for i < len(data) && data[i] != SyncByte {
				i++
			}
			if i == len(data) {
				data = nil
				break
			}
			data = data[i+1:]
			d.synced = true
			continue
		}

		if data[0] == SyncByte {
			data = data[1:]
			continue
		}
		if len(data) < FrameMin {
			break
		}

		n := int(data[framePosLen])
		seq := data[framePosSeq]
		if n < FrameMin || seq&^SeqMask != SeqDest {
			d.desync()
			continue
		}
		if len(data) < n {
			break
		}
		if data[n-frameTrailerEnd] != SyncByte {
			d.desync()
			continue
		}
		crc := uint16(data[n-frameTrailerCRC])<<8 | uint16(data[n-frameTrailerCRC+1])
		if crc != CRC16(data[:n-FrameTrailerSize]) {
			d.desync()
			continue
		}

		payload := data[FrameHeaderSize : n-FrameTrailerSize]
		data = data[n:]
		d.sequence(seq & SeqMask)
		d.dispatch(payload)
	}

	if consumed := input.Available() - len(data); consumed > 0 {
		input.Pop(consumed)
	}
}

func (d *Deframer) desync() {
	d.synced = false
	d.stats.Corrupt.Add(1)
}

func (d *Deframer) sequence(seq uint8) {
	if d.haveSeq && seq != d.expect {
		d.stats.Lost.Add(uint32((seq - d.expect) & SeqMask))
	}
	d.haveSeq = true
	d.expect = (seq + 1) & SeqMask
}

func (d *Deframer) dispatch(payload []byte) {
	id, err := DecodeVLQUint(&payload)
	if err != nil {
		d.stats.Corrupt.Add(1)
		return
	}
	switch id {
	case MsgLog:
		r, err := DecodeRecord(&payload)
		if err != nil {
			d.stats.Corrupt.Add(1)
			return
		}
		d.stats.Frames.Add(1)
		if d.handler != nil {
			d.handler(r)
		}
	default:
		d.stats.Unknown.Add(1)
	}
}
