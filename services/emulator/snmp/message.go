package snmp

import (
	"fmt"
)

// Protocol versions carried in the message header
const (
	Version1  = 0
	Version2c = 1
)

// PDU type tags
const (
	PDUGetRequest     byte = 0xa0
	PDUGetNextRequest byte = 0xa1
	PDUGetResponse    byte = 0xa2
	PDUSetRequest     byte = 0xa3
	PDUGetBulkRequest byte = 0xa5
)

// Error status codes used by the agent
const (
	StatusNoError            = 0
	StatusTooBig             = 1
	StatusNoSuchName         = 2
	StatusReadOnly           = 4
	StatusGenErr             = 5
	StatusAuthorizationError = 16
	StatusNotWritable        = 17
)

// VarBind pairs one object identifier with its value
type VarBind struct {
	OID   []uint32
	Value Value
}

// Message is a decoded SNMP v1/v2c packet. For GetBulk requests ErrorStatus
// carries non-repeaters and ErrorIndex carries max-repetitions
type Message struct {
	Version     int
	Community   string
	PDUType     byte
	RequestID   int32
	ErrorStatus int
	ErrorIndex  int
	VarBinds    []VarBind
}

func isKnownPDUType(tag byte) bool {
	switch tag {
	case PDUGetRequest, PDUGetNextRequest, PDUGetResponse, PDUSetRequest, PDUGetBulkRequest:
		return true
	default:
		return false
	}
}

// DecodeMessage parses one datagram into a message
func DecodeMessage(packet []byte) (*Message, error) {
	outer := &berReader{data: packet}
	tag, content, err := outer.readTLV()
	if err != nil {
		return nil, err
	}
	if tag != tagSequence {
		return nil, fmt.Errorf("%w: message is not a sequence", ErrMalformedPacket)
	}

	header := &berReader{data: content}

	tag, versionContent, err := header.readTLV()
	if err != nil {
		return nil, err
	}
	if tag != tagInteger {
		return nil, fmt.Errorf("%w: version is not an integer", ErrMalformedPacket)
	}
	version, err := decodeInt(versionContent)
	if err != nil {
		return nil, err
	}

	tag, communityContent, err := header.readTLV()
	if err != nil {
		return nil, err
	}
	if tag != tagOctetString {
		return nil, fmt.Errorf("%w: community is not an octet string", ErrMalformedPacket)
	}

	pduType, pduContent, err := header.readTLV()
	if err != nil {
		return nil, err
	}
	if !isKnownPDUType(pduType) {
		return nil, fmt.Errorf("%w: unknown pdu type 0x%02x", ErrMalformedPacket, pduType)
	}

	msg := &Message{
		Version:   int(version),
		Community: string(communityContent),
		PDUType:   pduType,
	}

	pdu := &berReader{data: pduContent}
	requestID, err := readIntField(pdu, "request-id")
	if err != nil {
		return nil, err
	}
	msg.RequestID = int32(requestID)

	errorStatus, err := readIntField(pdu, "error-status")
	if err != nil {
		return nil, err
	}
	msg.ErrorStatus = int(errorStatus)

	errorIndex, err := readIntField(pdu, "error-index")
	if err != nil {
		return nil, err
	}
	msg.ErrorIndex = int(errorIndex)

	tag, varBindsContent, err := pdu.readTLV()
	if err != nil {
		return nil, err
	}
	if tag != tagSequence {
		return nil, fmt.Errorf("%w: varbind list is not a sequence", ErrMalformedPacket)
	}

	list := &berReader{data: varBindsContent}
	for list.remaining() > 0 {
		varBind, errVarBind := readVarBind(list)
		if errVarBind != nil {
			return nil, errVarBind
		}
		msg.VarBinds = append(msg.VarBinds, varBind)
	}

	return msg, nil
}

func readIntField(reader *berReader, field string) (int64, error) {
	tag, content, err := reader.readTLV()
	if err != nil {
		return 0, err
	}
	if tag != tagInteger {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrMalformedPacket, field)
	}

	return decodeInt(content)
}

func readVarBind(reader *berReader) (VarBind, error) {
	tag, content, err := reader.readTLV()
	if err != nil {
		return VarBind{}, err
	}
	if tag != tagSequence {
		return VarBind{}, fmt.Errorf("%w: varbind is not a sequence", ErrMalformedPacket)
	}

	inner := &berReader{data: content}
	tag, oidBytes, err := inner.readTLV()
	if err != nil {
		return VarBind{}, err
	}
	if tag != tagObjectID {
		return VarBind{}, fmt.Errorf("%w: varbind name is not an oid", ErrMalformedPacket)
	}
	oid, err := decodeOID(oidBytes)
	if err != nil {
		return VarBind{}, err
	}

	tag, valueContent, err := inner.readTLV()
	if err != nil {
		return VarBind{}, err
	}
	value, err := decodeValue(tag, valueContent)
	if err != nil {
		return VarBind{}, err
	}

	return VarBind{OID: oid, Value: value}, nil
}

// EncodeMessage serializes a message into a datagram
func EncodeMessage(msg *Message) ([]byte, error) {
	varBindList := make([]byte, 0, 64)
	for _, varBind := range msg.VarBinds {
		oidBytes, err := oidContent(varBind.OID)
		if err != nil {
			return nil, err
		}

		entry := appendTLV(nil, tagObjectID, oidBytes)
		entry, err = appendValue(entry, varBind.Value)
		if err != nil {
			return nil, err
		}

		varBindList = appendTLV(varBindList, tagSequence, entry)
	}

	pdu := appendTLV(nil, tagInteger, intContent(int64(msg.RequestID)))
	pdu = appendTLV(pdu, tagInteger, intContent(int64(msg.ErrorStatus)))
	pdu = appendTLV(pdu, tagInteger, intContent(int64(msg.ErrorIndex)))
	pdu = appendTLV(pdu, tagSequence, varBindList)

	body := appendTLV(nil, tagInteger, intContent(int64(msg.Version)))
	body = appendTLV(body, tagOctetString, []byte(msg.Community))
	body = appendTLV(body, msg.PDUType, pdu)

	return appendTLV(nil, tagSequence, body), nil
}
