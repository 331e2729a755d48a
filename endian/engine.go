// Package endian provides byte order utilities for raster headers and samples.
//
// Two byte orders matter to petfill:
//
//   - Raster and archive headers are always big-endian on the wire, so that the
//     produced data files can be read by consumers on any platform.
//   - Raw MOD16A3 samples are stored in the byte order of the host that exported
//     them, which is read back with the native engine.
//
// # Basic Usage
//
//	engine := endian.GetBigEndianEngine()
//	engine.PutUint32(buf[1:5], width)
//
//	native := endian.GetNativeEngine()
//	endian.DecodeUint16s(native, row, samples)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	if IsNativeBigEndian() {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// DecodeUint16s decodes len(dst) 16-bit samples from src using engine.
//
// src must hold at least 2*len(dst) bytes; the function panics otherwise,
// the same way the binary.ByteOrder methods do.
func DecodeUint16s(engine EndianEngine, src []byte, dst []uint16) {
	if len(dst) == 0 {
		return
	}

	_ = src[2*len(dst)-1]
	for i := range dst {
		dst[i] = engine.Uint16(src[2*i:])
	}
}
