// Package protocol frames telemetry records on the link between the firmware
// and the host monitor.
//
// A frame is
//
//	len | seq | payload ... | crc hi | crc lo | 0x7E
//
// len counts the whole frame. seq has 0x10 in the high nibble and a rolling
// counter in the low nibble so the host can count lost frames. The CRC covers
// len, seq and the payload. The payload is a VLQ message id followed by the
// message fields.
package protocol

// Version is the telemetry format version reported by the host tools.
const Version = "0.1.0"

const (
	FrameHeaderSize  = 2
	FrameTrailerSize = 3
	FrameMin         = FrameHeaderSize + FrameTrailerSize
	FrameMax         = 255
	PayloadMax       = FrameMax - FrameMin

	framePosLen     = 0
	framePosSeq     = 1
	frameTrailerCRC = 3
	frameTrailerEnd = 1

	SyncByte = 0x7E
	SeqDest  = 0x10
	SeqMask  = 0x0F
)

// Message ids.
const (
	MsgLog uint32 = 1
)

// TaskNameMax bounds the task name carried in a record.
const TaskNameMax = 32

// Record is one log line on the wire.
type Record struct {
	Clock uint32
	Level uint8
	Task  string
	Text  string
}

// EncodeRecord writes r's fields, truncating the text so the payload stays
// within PayloadMax.
func EncodeRecord(output OutputBuffer, r Record) {
	start := output.CurPosition()
	EncodeVLQUint(output, MsgLog)
	EncodeVLQUint(output, r.Clock)
	EncodeVLQUint(output, uint32(r.Level))

	task := r.Task
	if len(task) > TaskNameMax {
		task = task[:TaskNameMax]
	}
	EncodeVLQString(output, task)

	// Two bytes cover any length prefix up to PayloadMax.
	room := PayloadMax - (output.CurPosition() - start) - 2
	text := r.Text
	if room < 0 {
		room = 0
	}
	if len(text) > room {
		text = text[:room]
	}
	EncodeVLQString(output, text)
}

// DecodeRecord reads the fields written by EncodeRecord after the message id.
func DecodeRecord(data *[]byte) (Record, error) {
	var r Record
	var err error
	if r.Clock, err = DecodeVLQUint(data); err != nil {
		return r, err
	}
	level, err := DecodeVLQUint(data)
	if err != nil {
		return r, err
	}
	r.Level = uint8(level)
	if r.Task, err = DecodeVLQString(data); err != nil {
		return r, err
	}
	if r.Text, err = DecodeVLQString(data); err != nil {
		return r, err
	}
	return r, nil
}
