package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/ugorji/go/codec"
)

var msgpackHandle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.Canonical = true
	return h
}()

// EncodeRecord serializes a record as msgpack.
func EncodeRecord(v any) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, msgpackHandle).Encode(v); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return out, nil
}

// DecodeRecord deserializes a record produced by EncodeRecord.
func DecodeRecord(data []byte, v any) error {
	if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	return nil
}

func encodeAmount(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func decodeAmount(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: amount of %d bytes", ErrCorruptEntry, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
