package protocol

// Framer builds outgoing frames. It is used from a single goroutine, the
// log worker on the firmware side.
type Framer struct {
	seq     uint8
	scratch ScratchOutput
}

func NewFramer() *Framer {
	return &Framer{}
}

// EncodeFrame assembles one frame around whatever fields writes and returns
// it. The slice is reused by the next call.
func (f *Framer) EncodeFrame(fields func(output OutputBuffer)) []byte {
	out := &f.scratch
	out.Reset()

	out.Output([]byte{0, SeqDest | f.seq&SeqMask})
	fields(out)

	// Space for the trailer is always left free.
	if out.CurPosition() > FrameMax-FrameTrailerSize {
		out.pos = FrameMax - FrameTrailerSize
	}
	out.Update(framePosLen, uint8(out.CurPosition()+FrameTrailerSize))

	crc := CRC16(out.DataSince(0))
	out.Output([]byte{
		uint8(crc >> 8),
		uint8(crc & 0xFF),
		SyncByte,
	})

	f.seq = (f.seq + 1) & SeqMask
	return out.Result()
}

// EncodeRecord frames one log record.
func (f *Framer) EncodeRecord(r Record) []byte {
	return f.EncodeFrame(func(output OutputBuffer) {
		EncodeRecord(output, r)
	})
}
