package snmp

import "errors"

var (
	// ErrMalformedPacket signals a datagram that does not parse as an SNMP message
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrInvalidOID signals an object identifier that can not be encoded
	ErrInvalidOID = errors.New("invalid object identifier")

	// ErrUnsupportedValue signals a value type the wire codec can not encode
	ErrUnsupportedValue = errors.New("unsupported value type")

	// ErrUnknownEntry signals a table entry pointing at a server the registry does not hold
	ErrUnknownEntry = errors.New("unknown table entry")
)
