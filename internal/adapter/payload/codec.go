// Package payload compresses raw provider responses before they are stored
// in the nutrition cache.
package payload

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstd frame magic number, little endian.
var magic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	initOnce sync.Once
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
	initErr  error
)

func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	initOnce.Do(func() {
		encoder, initErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if initErr != nil {
			return
		}
		decoder, initErr = zstd.NewReader(nil)
	})
	return encoder, decoder, initErr
}

// Compress returns raw as a zstd frame. Nil and empty input yield nil.
func Compress(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	enc, _, err := codecs()
	if err != nil {
		return nil, fmt.Errorf("payload: init zstd: %w", err)
	}
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Decompress reverses Compress. Input that is not a zstd frame is returned
// unchanged, so rows written before compression was enabled stay readable.
func Decompress(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, nil
	}
	if !bytes.HasPrefix(stored, magic) {
		return stored, nil
	}
	_, dec, err := codecs()
	if err != nil {
		return nil, fmt.Errorf("payload: init zstd: %w", err)
	}
	out, err := dec.DecodeAll(stored, nil)
	if err != nil {
		return nil, fmt.Errorf("payload: decode: %w", err)
	}
	return out, nil
}

// Codec encodes payloads on the way into a cache store. With compression off
// payloads are stored as received; Decode reads both forms.
type Codec struct {
	compress bool
}

// NewCodec returns a Codec that compresses when compress is set.
func NewCodec(compress bool) Codec {
	return Codec{compress: compress}
}

// Encode prepares raw for storage.
func (c Codec) Encode(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if !c.compress {
		return raw, nil
	}
	return Compress(raw)
}

// Decode returns the payload as received from the provider.
func (Codec) Decode(stored []byte) ([]byte, error) {
	return Decompress(stored)
}
