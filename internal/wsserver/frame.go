package wsserver

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/leslieo2/go-hot-reload/internal/constants"
)

var (
	ErrFrameTooShort = errors.New("truncated websocket frame")
	ErrFrameTooLarge = errors.New("websocket frame payload too large")
)

// Frame is one decoded websocket frame.
type Frame struct {
	Opcode  byte
	Payload []byte
}

// EncodeTextFrame builds a single unmasked FIN=1 text frame around a UTF-8
// payload, selecting the 7-bit, 16-bit, or 64-bit length form per RFC 6455.
func EncodeTextFrame(payload []byte) []byte {
	return EncodeFrame(constants.OpcodeText, payload)
}

// EncodeCloseFrame builds an empty close frame.
func EncodeCloseFrame() []byte {
	return EncodeFrame(constants.OpcodeClose, nil)
}

// EncodePongFrame builds a pong control frame echoing the ping payload.
func EncodePongFrame(payload []byte) []byte {
	return EncodeFrame(constants.OpcodePong, payload)
}

// EncodeFrame builds a single unmasked FIN=1 frame with the given opcode.
// Server-to-client frames are not masked.
func EncodeFrame(opcode byte, payload []byte) []byte {
	n := len(payload)

	var header []byte
	switch {
	case n < 126:
		header = []byte{0x80 | opcode, byte(n)}
	case n <= 0xFFFF:
		header = make([]byte, 4)
		header[0] = 0x80 | opcode
		header[1] = 126
		binary.BigEndian.PutUint16(header[2:], uint16(n))
	default:
		header = make([]byte, 10)
		header[0] = 0x80 | opcode
		header[1] = 127
		binary.BigEndian.PutUint64(header[2:], uint64(n))
	}

	frame := make([]byte, 0, len(header)+n)
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return frame
}

// DecodeFrame reads one frame, unmasking the payload when the client set the
// mask bit (client-to-server frames are always masked per RFC 6455).
func DecodeFrame(r io.Reader) (Frame, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Frame{}, fmt.Errorf("%w: %s", ErrFrameTooShort, "header")
	}

	opcode := head[0] & 0x0F
	masked := head[1]&0x80 != 0
	length := uint64(head[1] & 0x7F)

	switch length {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Frame{}, fmt.Errorf("%w: %s", ErrFrameTooShort, "16-bit length")
		}
		length = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Frame{}, fmt.Errorf("%w: %s", ErrFrameTooShort, "64-bit length")
		}
		length = binary.BigEndian.Uint64(ext[:])
	}
	if length > constants.MaxFramePayloadBytes {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	var maskKey [4]byte
	if masked {
		if _, err := io.ReadFull(r, maskKey[:]); err != nil {
			return Frame{}, fmt.Errorf("%w: %s", ErrFrameTooShort, "mask key")
		}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, fmt.Errorf("%w: %s", ErrFrameTooShort, "payload")
	}
	if masked {
		for i := range payload {
			payload[i] ^= maskKey[i%4]
		}
	}

	return Frame{Opcode: opcode, Payload: payload}, nil
}
