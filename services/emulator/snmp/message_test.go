package snmp

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a v2c GetRequest for 1.3.6.1.2.1.1.1.0 with community "public", captured byte by byte
func goldenGetRequest() []byte {
	return []byte{
		0x30, 0x27,
		0x02, 0x01, 0x01, // version v2c
		0x04, 0x06, 'p', 'u', 'b', 'l', 'i', 'c',
		0xa0, 0x1a, // GetRequest PDU
		0x02, 0x02, 0x12, 0x34, // request-id
		0x02, 0x01, 0x00, // error-status
		0x02, 0x01, 0x00, // error-index
		0x30, 0x0e, // varbind list
		0x30, 0x0c, // varbind
		0x06, 0x08, 0x2b, 0x06, 0x01, 0x02, 0x01, 0x01, 0x01, 0x00, // 1.3.6.1.2.1.1.1.0
		0x05, 0x00, // null placeholder
	}
}

func TestDecodeMessage(t *testing.T) {
	t.Parallel()

	msg, err := DecodeMessage(goldenGetRequest())
	require.Nil(t, err)

	assert.Equal(t, Version2c, msg.Version)
	assert.Equal(t, "public", msg.Community)
	assert.Equal(t, PDUGetRequest, msg.PDUType)
	assert.Equal(t, int32(0x1234), msg.RequestID)
	assert.Equal(t, 0, msg.ErrorStatus)
	assert.Equal(t, 0, msg.ErrorIndex)
	require.Equal(t, 1, len(msg.VarBinds))
	assert.Equal(t, []uint32{1, 3, 6, 1, 2, 1, 1, 1, 0}, msg.VarBinds[0].OID)
	assert.Equal(t, NullValue(), msg.VarBinds[0].Value)
}

func TestEncodeMessage(t *testing.T) {
	t.Parallel()

	msg := &Message{
		Version:   Version2c,
		Community: "public",
		PDUType:   PDUGetRequest,
		RequestID: 0x1234,
		VarBinds: []VarBind{
			{OID: []uint32{1, 3, 6, 1, 2, 1, 1, 1, 0}, Value: NullValue()},
		},
	}

	encoded, err := EncodeMessage(msg)
	require.Nil(t, err)
	assert.Equal(t, goldenGetRequest(), encoded)
}

func TestMessageRoundTrip(t *testing.T) {
	t.Parallel()

	// multi-byte arcs (674 and 10892) cover the base-128 encoding paths
	powerOID := []uint32{1, 3, 6, 1, 4, 1, 674, 10892, 5, 4, 600, 30, 1, 6, 1, 3}

	tests := []struct {
		name  string
		value Value
	}{
		{name: "null", value: NullValue()},
		{name: "integer zero", value: IntegerValue(0)},
		{name: "integer small", value: IntegerValue(42)},
		{name: "integer boundary 127", value: IntegerValue(127)},
		{name: "integer boundary 128", value: IntegerValue(128)},
		{name: "integer boundary 256", value: IntegerValue(256)},
		{name: "integer negative", value: IntegerValue(-1)},
		{name: "integer negative boundary", value: IntegerValue(-129)},
		{name: "integer large", value: IntegerValue(1<<40 + 5)},
		{name: "gauge zero", value: GaugeValue(0)},
		{name: "gauge boundary 128", value: GaugeValue(128)},
		{name: "gauge max", value: GaugeValue(math.MaxUint32)},
		{name: "octet string", value: StringValue("PowerEdge R740")},
		{name: "octet string empty", value: StringValue("")},
		{name: "octet string long form length", value: StringValue(strings.Repeat("x", 300))},
		{name: "no such object", value: NoSuchObjectValue()},
		{name: "no such instance", value: Value{Type: ValueTypeNoSuchInstance}},
		{name: "end of mib view", value: EndOfMibViewValue()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := &Message{
				Version:   Version2c,
				Community: "private",
				PDUType:   PDUGetResponse,
				RequestID: 77,
				VarBinds:  []VarBind{{OID: powerOID, Value: tt.value}},
			}

			encoded, err := EncodeMessage(original)
			require.Nil(t, err)

			decoded, err := DecodeMessage(encoded)
			require.Nil(t, err)
			assert.Equal(t, original, decoded)
		})
	}
}

func TestMessageRoundTrip_MultipleVarBinds(t *testing.T) {
	t.Parallel()

	original := &Message{
		Version:     Version1,
		Community:   "private",
		PDUType:     PDUSetRequest,
		RequestID:   -12345,
		ErrorStatus: StatusAuthorizationError,
		ErrorIndex:  2,
		VarBinds: []VarBind{
			{OID: []uint32{1, 3, 6, 1, 4, 1, 674, 10892, 5, 1, 3, 2, 1, 1}, Value: StringValue("7FK2Q1X")},
			{OID: []uint32{0, 39, 17}, Value: IntegerValue(3)},
			{OID: []uint32{2, 100, 4}, Value: GaugeValue(8000)},
		},
	}

	encoded, err := EncodeMessage(original)
	require.Nil(t, err)

	decoded, err := DecodeMessage(encoded)
	require.Nil(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeMessage_MalformedPackets(t *testing.T) {
	t.Parallel()

	t.Run("every truncation should error", func(t *testing.T) {
		golden := goldenGetRequest()
		for cut := 0; cut < len(golden); cut++ {
			msg, err := DecodeMessage(golden[:cut])
			require.Nil(t, msg, "prefix of %d bytes decoded", cut)
			require.ErrorIs(t, err, ErrMalformedPacket)
		}
	})
	t.Run("garbage should error", func(t *testing.T) {
		msg, err := DecodeMessage([]byte{0xff, 0x00, 0x12})
		assert.Nil(t, msg)
		assert.Error(t, err)
	})
	t.Run("not a sequence should error", func(t *testing.T) {
		packet := goldenGetRequest()
		packet[0] = 0x31

		msg, err := DecodeMessage(packet)
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, ErrMalformedPacket)
		assert.Contains(t, err.Error(), "not a sequence")
	})
	t.Run("version with a wrong tag should error", func(t *testing.T) {
		packet := goldenGetRequest()
		packet[2] = 0x04

		msg, err := DecodeMessage(packet)
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, ErrMalformedPacket)
		assert.Contains(t, err.Error(), "version")
	})
	t.Run("unknown pdu tag should error", func(t *testing.T) {
		packet := goldenGetRequest()
		packet[13] = 0xa4

		msg, err := DecodeMessage(packet)
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, ErrMalformedPacket)
		assert.Contains(t, err.Error(), "unknown pdu type")
	})
	t.Run("truncated oid arc should error", func(t *testing.T) {
		packet := goldenGetRequest()
		packet[38] = 0x80 // continuation bit on the last arc byte

		msg, err := DecodeMessage(packet)
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, ErrInvalidOID)
	})
}
