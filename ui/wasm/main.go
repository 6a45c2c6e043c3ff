//go:build js && wasm
// +build js,wasm

// Command wasm exposes the telemetry decoder to a browser page, so a capture
// pasted as hex (or read over WebSerial) can be turned into log lines.
package main

import (
	"encoding/hex"
	"syscall/js"

	"tinyco/core"
	"tinyco/protocol"
)

// Decoder state survives between decodeTelemetry calls so a stream can be
// fed in chunks.
var (
	pending  *protocol.FifoBuffer
	deframer *protocol.Deframer
	lines    []interface{}
)

func main() {
	resetDecoder()

	js.Global().Set("tinycoWasm", js.ValueOf(map[string]interface{}{
		"decodeTelemetry": js.FuncOf(decodeTelemetryWrapper),
		"resetDecoder":    js.FuncOf(resetWrapper),
		"crc16":           js.FuncOf(crc16Wrapper),
		"version":         protocol.Version,
	}))

	// Keep the program running
	select {}
}

func resetDecoder() {
	pending = protocol.NewFifoBuffer(4 * protocol.FrameMax)
	deframer = protocol.NewDeframer(func(r protocol.Record) {
		lines = append(lines, core.FormatRecord(core.Record{
			Clock: core.Time(r.Clock),
			Level: core.Level(r.Level),
			Task:  r.Task,
			Text:  r.Text,
		}))
	})
}

func resetWrapper(this js.Value, args []js.Value) interface{} {
	resetDecoder()
	return js.Undefined()
}

// decodeTelemetryWrapper feeds a chunk of the byte stream
// Args: hexString (string)
// Returns: {lines: string[], frames, lost, corrupt: number, error: string}
func decodeTelemetryWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeResult("missing hex string argument")
	}
	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return makeResult("invalid hex string: " + err.Error())
	}

	lines = lines[:0]
	for len(data) > 0 {
		n := pending.Write(data)
		data = data[n:]
		deframer.Receive(pending)
		if n == 0 && pending.Free() == 0 {
			pending.Reset()
		}
	}
	return makeResult("")
}

func makeResult(errMsg string) js.Value {
	st := deframer.Stats()
	return js.ValueOf(map[string]interface{}{
		"lines":   lines,
		"frames":  int(st.Frames.Load()),
		"lost":    int(st.Lost.Load()),
		"corrupt": int(st.Corrupt.Load()),
		"error":   errMsg,
	})
}

// crc16Wrapper calculates CRC16 of hex data
// Args: hexString (string)
// Returns: number
func crc16Wrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}
	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(int(protocol.CRC16(data)))
}
