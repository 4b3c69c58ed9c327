package snmp

import (
	"encoding/binary"
	"fmt"
)

// The agent speaks a minimal BER subset: definite lengths only, plus the value
// types the OID table serves and the SNMPv2c exception markers.

const (
	tagInteger        byte = 0x02
	tagOctetString    byte = 0x04
	tagNull           byte = 0x05
	tagObjectID       byte = 0x06
	tagSequence       byte = 0x30
	tagGauge32        byte = 0x42
	tagNoSuchObject   byte = 0x80
	tagNoSuchInstance byte = 0x81
	tagEndOfMibView   byte = 0x82
)

// ValueType discriminates the wire representation of a varbind value
type ValueType int

const (
	// ValueTypeNull is the placeholder carried by request varbinds
	ValueTypeNull ValueType = iota
	// ValueTypeInteger is a signed INTEGER
	ValueTypeInteger
	// ValueTypeGauge32 is an unsigned Gauge32
	ValueTypeGauge32
	// ValueTypeOctetString is an OCTET STRING
	ValueTypeOctetString
	// ValueTypeNoSuchObject marks a read against an object the table does not serve
	ValueTypeNoSuchObject
	// ValueTypeNoSuchInstance marks a read against a missing instance of a served object
	ValueTypeNoSuchInstance
	// ValueTypeEndOfMibView marks a walk that ran past the end of the table
	ValueTypeEndOfMibView
)

// Value is one varbind value in decoded form
type Value struct {
	Type ValueType
	Int  int64
	Uint uint64
	Str  []byte
}

// IntegerValue wraps a signed integer as a varbind value
func IntegerValue(value int64) Value {
	return Value{Type: ValueTypeInteger, Int: value}
}

// GaugeValue wraps an unsigned gauge as a varbind value
func GaugeValue(value uint64) Value {
	return Value{Type: ValueTypeGauge32, Uint: value}
}

// StringValue wraps an octet string as a varbind value
func StringValue(value string) Value {
	return Value{Type: ValueTypeOctetString, Str: []byte(value)}
}

// NullValue returns the request placeholder value
func NullValue() Value {
	return Value{Type: ValueTypeNull}
}

// NoSuchObjectValue returns the v2c missing-object exception value
func NoSuchObjectValue() Value {
	return Value{Type: ValueTypeNoSuchObject}
}

// EndOfMibViewValue returns the v2c end-of-view exception value
func EndOfMibViewValue() Value {
	return Value{Type: ValueTypeEndOfMibView}
}

// --- encoding ---

func appendTLV(dst []byte, tag byte, content []byte) []byte {
	dst = append(dst, tag)
	dst = appendLength(dst, len(content))

	return append(dst, content...)
}

func appendLength(dst []byte, length int) []byte {
	if length < 0x80 {
		return append(dst, byte(length))
	}

	numBytes := 0
	for l := length; l > 0; l >>= 8 {
		numBytes++
	}
	dst = append(dst, 0x80|byte(numBytes))
	for i := numBytes - 1; i >= 0; i-- {
		dst = append(dst, byte(length>>(8*i)))
	}

	return dst
}

// intContent yields the minimal two's complement big endian form
func intContent(value int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(value))

	start := 0
	for start < 7 {
		if buf[start] == 0x00 && buf[start+1]&0x80 == 0 {
			start++
			continue
		}
		if buf[start] == 0xff && buf[start+1]&0x80 != 0 {
			start++
			continue
		}
		break
	}

	return buf[start:]
}

// uintContent yields the minimal unsigned big endian form, zero padded when the
// leading bit would flip the sign
func uintContent(value uint64) []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf[1:], value)

	start := 0
	for start < 8 && buf[start] == 0 && buf[start+1]&0x80 == 0 {
		start++
	}

	return buf[start:]
}

func appendBase128(dst []byte, value uint32) []byte {
	if value == 0 {
		return append(dst, 0)
	}

	var chunks [5]byte
	numChunks := 0
	for v := value; v > 0; v >>= 7 {
		chunks[numChunks] = byte(v & 0x7f)
		numChunks++
	}
	for i := numChunks - 1; i >= 0; i-- {
		b := chunks[i]
		if i > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}

	return dst
}

func oidContent(oid []uint32) ([]byte, error) {
	if len(oid) < 2 {
		return nil, fmt.Errorf("%w: needs at least two arcs", ErrInvalidOID)
	}
	if oid[0] > 2 || (oid[0] < 2 && oid[1] > 39) {
		return nil, fmt.Errorf("%w: bad leading arcs %d.%d", ErrInvalidOID, oid[0], oid[1])
	}

	content := appendBase128(nil, oid[0]*40+oid[1])
	for _, arc := range oid[2:] {
		content = appendBase128(content, arc)
	}

	return content, nil
}

func appendValue(dst []byte, value Value) ([]byte, error) {
	switch value.Type {
	case ValueTypeNull:
		return appendTLV(dst, tagNull, nil), nil
	case ValueTypeInteger:
		return appendTLV(dst, tagInteger, intContent(value.Int)), nil
	case ValueTypeGauge32:
		return appendTLV(dst, tagGauge32, uintContent(value.Uint)), nil
	case ValueTypeOctetString:
		return appendTLV(dst, tagOctetString, value.Str), nil
	case ValueTypeNoSuchObject:
		return appendTLV(dst, tagNoSuchObject, nil), nil
	case ValueTypeNoSuchInstance:
		return appendTLV(dst, tagNoSuchInstance, nil), nil
	case ValueTypeEndOfMibView:
		return appendTLV(dst, tagEndOfMibView, nil), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedValue, value.Type)
	}
}

// --- decoding ---

type berReader struct {
	data []byte
	pos  int
}

func (reader *berReader) remaining() int {
	return len(reader.data) - reader.pos
}

func (reader *berReader) readTLV() (byte, []byte, error) {
	if reader.remaining() < 2 {
		return 0, nil, fmt.Errorf("%w: truncated TLV header", ErrMalformedPacket)
	}

	tag := reader.data[reader.pos]
	reader.pos++

	length := int(reader.data[reader.pos])
	reader.pos++
	if length&0x80 != 0 {
		numBytes := length & 0x7f
		if numBytes == 0 || numBytes > 4 || reader.remaining() < numBytes {
			return 0, nil, fmt.Errorf("%w: bad long form length", ErrMalformedPacket)
		}

		length = 0
		for i := 0; i < numBytes; i++ {
			length = length<<8 | int(reader.data[reader.pos])
			reader.pos++
		}
	}

	if length < 0 || reader.remaining() < length {
		return 0, nil, fmt.Errorf("%w: declared length %d exceeds packet", ErrMalformedPacket, length)
	}

	content := reader.data[reader.pos : reader.pos+length]
	reader.pos += length

	return tag, content, nil
}

func decodeInt(content []byte) (int64, error) {
	if len(content) == 0 || len(content) > 8 {
		return 0, fmt.Errorf("%w: integer of %d bytes", ErrMalformedPacket, len(content))
	}

	value := int64(0)
	if content[0]&0x80 != 0 {
		value = -1
	}
	for _, b := range content {
		value = value<<8 | int64(b)
	}

	return value, nil
}

func decodeUint(content []byte) (uint64, error) {
	tooLong := len(content) > 9 || (len(content) == 9 && content[0] != 0)
	if len(content) == 0 || tooLong {
		return 0, fmt.Errorf("%w: unsigned of %d bytes", ErrMalformedPacket, len(content))
	}

	value := uint64(0)
	for _, b := range content {
		value = value<<8 | uint64(b)
	}

	return value, nil
}

func decodeOID(content []byte) ([]uint32, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidOID)
	}

	arcs := make([]uint32, 0, len(content)+1)
	value := uint64(0)
	for i, b := range content {
		value = value<<7 | uint64(b&0x7f)
		if value > 0xffffffff {
			return nil, fmt.Errorf("%w: arc overflow", ErrInvalidOID)
		}
		if b&0x80 != 0 {
			if i == len(content)-1 {
				return nil, fmt.Errorf("%w: truncated arc", ErrInvalidOID)
			}
			continue
		}

		if len(arcs) == 0 {
			switch {
			case value < 40:
				arcs = append(arcs, 0, uint32(value))
			case value < 80:
				arcs = append(arcs, 1, uint32(value-40))
			default:
				arcs = append(arcs, 2, uint32(value-80))
			}
		} else {
			arcs = append(arcs, uint32(value))
		}
		value = 0
	}

	return arcs, nil
}

func decodeValue(tag byte, content []byte) (Value, error) {
	switch tag {
	case tagNull:
		return NullValue(), nil
	case tagInteger:
		value, err := decodeInt(content)
		if err != nil {
			return Value{}, err
		}
		return IntegerValue(value), nil
	case tagGauge32:
		value, err := decodeUint(content)
		if err != nil {
			return Value{}, err
		}
		return GaugeValue(value), nil
	case tagOctetString:
		return StringValue(string(content)), nil
	case tagNoSuchObject:
		return NoSuchObjectValue(), nil
	case tagNoSuchInstance:
		return Value{Type: ValueTypeNoSuchInstance}, nil
	case tagEndOfMibView:
		return EndOfMibViewValue(), nil
	default:
		// values of read requests are placeholders, anything unknown is treated as one
		return NullValue(), nil
	}
}
