package snmp

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("snmp")

const maxDatagramSize = 65507

// maxBulkRepetitions caps GetBulk expansion so one datagram can not request an
// unbounded response
const maxBulkRepetitions = 64

type server struct {
	conn           net.PacketConn
	registry       Registry
	table          *oidTable
	readCommunity  string
	writeCommunity string
	listenAddr     string
	closed         atomic.Bool
	wg             sync.WaitGroup
}

// ArgsSNMPServer defines the SNMP agent arguments
type ArgsSNMPServer struct {
	ListenAddress  string
	ReadCommunity  string
	WriteCommunity string
	V3User         string
	Registry       Registry
}

// NewSNMPServer creates the agent and builds its OID table from the registry
func NewSNMPServer(args ArgsSNMPServer) (*server, error) {
	if check.IfNil(args.Registry) {
		return nil, errors.New("registry is required")
	}
	if len(args.ReadCommunity) == 0 {
		return nil, errors.New("empty read community")
	}
	if len(args.WriteCommunity) == 0 {
		return nil, errors.New("empty write community")
	}

	if len(args.V3User) > 0 {
		log.Warn("SNMPv3 user configured but v3 message processing is not served, "+
			"falling back to v1/v2c communities", "user", args.V3User)
	}

	s := &server{
		registry:       args.Registry,
		table:          newOIDTable(args.Registry),
		readCommunity:  args.ReadCommunity,
		writeCommunity: args.WriteCommunity,
		listenAddr:     args.ListenAddress,
	}

	log.Debug("SNMP table built", "objects", s.table.size())

	return s, nil
}

// Start binds the UDP socket and serves datagrams
func (s *server) Start() {
	conn, err := net.ListenPacket("udp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.conn = conn
	s.listenAddr = conn.LocalAddr().String()

	s.wg.Add(1)
	go s.readLoop()
}

func (s *server) readLoop() {
	defer s.wg.Done()
	log.Info("starting SNMP agent", "address", s.listenAddr)

	buff := make([]byte, maxDatagramSize)
	for {
		n, addr, err := s.conn.ReadFrom(buff)
		if err != nil {
			if !s.closed.Load() {
				log.Error("udp read failed", "error", err)
			}
			return
		}

		packet := make([]byte, n)
		copy(packet, buff[:n])

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handlePacket(packet, addr)
		}()
	}
}

func (s *server) handlePacket(packet []byte, addr net.Addr) {
	request, err := DecodeMessage(packet)
	if err != nil {
		log.Debug("dropping malformed datagram", "sender", addr.String(), "error", err)
		return
	}

	response := s.respond(request)
	if response == nil {
		return
	}

	encoded, err := EncodeMessage(response)
	if err != nil {
		log.Error("failed to encode response", "error", err)
		return
	}

	_, err = s.conn.WriteTo(encoded, addr)
	if err != nil {
		log.Debug("failed to send response", "sender", addr.String(), "error", err)
	}
}

// respond builds the answer for one decoded request, or nil when the request
// must be dropped silently
func (s *server) respond(request *Message) *Message {
	if request.Version != Version1 && request.Version != Version2c {
		log.Debug("dropping request with unsupported version", "version", request.Version)
		return nil
	}

	switch request.PDUType {
	case PDUGetRequest, PDUGetNextRequest:
	case PDUGetBulkRequest:
		if request.Version != Version2c {
			log.Debug("dropping GetBulk on protocol version 1")
			return nil
		}
	case PDUSetRequest:
	default:
		log.Debug("dropping request with unexpected pdu type", "type", request.PDUType)
		return nil
	}

	// credentials gate everything: no registry access happens on a community
	// mismatch, and the answer is distinguishable from a missing object
	if !s.authorized(request) {
		log.Debug("rejected request", "community", request.Community, "pdu", request.PDUType)
		return errorResponse(request, StatusAuthorizationError, 0)
	}

	switch request.PDUType {
	case PDUGetRequest:
		return s.respondGet(request)
	case PDUGetNextRequest:
		return s.respondGetNext(request)
	case PDUGetBulkRequest:
		return s.respondGetBulk(request)
	default:
		return s.respondSet(request)
	}
}

// authorized verifies the community of the request: reads accept the read or
// the write community, writes accept the write community alone
func (s *server) authorized(request *Message) bool {
	if request.PDUType == PDUSetRequest {
		return request.Community == s.writeCommunity
	}

	return request.Community == s.readCommunity || request.Community == s.writeCommunity
}

func (s *server) respondGet(request *Message) *Message {
	varBinds := make([]VarBind, 0, len(request.VarBinds))
	for i, requested := range request.VarBinds {
		entry, found := s.table.get(requested.OID)
		if !found {
			if request.Version == Version1 {
				return errorResponse(request, StatusNoSuchName, i+1)
			}

			varBinds = append(varBinds, VarBind{OID: requested.OID, Value: NoSuchObjectValue()})
			continue
		}

		value, err := resolve(entry, s.registry)
		if err != nil {
			log.Warn("failed to resolve table entry", "server", entry.serverID, "error", err)
			return errorResponse(request, StatusGenErr, i+1)
		}

		varBinds = append(varBinds, VarBind{OID: requested.OID, Value: value})
	}

	return successResponse(request, varBinds)
}

func (s *server) respondGetNext(request *Message) *Message {
	varBinds := make([]VarBind, 0, len(request.VarBinds))
	for i, requested := range request.VarBinds {
		entry, found := s.table.next(requested.OID)
		if !found {
			if request.Version == Version1 {
				return errorResponse(request, StatusNoSuchName, i+1)
			}

			varBinds = append(varBinds, VarBind{OID: requested.OID, Value: EndOfMibViewValue()})
			continue
		}

		value, err := resolve(entry, s.registry)
		if err != nil {
			log.Warn("failed to resolve table entry", "server", entry.serverID, "error", err)
			return errorResponse(request, StatusGenErr, i+1)
		}

		varBinds = append(varBinds, VarBind{OID: entry.oid, Value: value})
	}

	return successResponse(request, varBinds)
}

func (s *server) respondGetBulk(request *Message) *Message {
	nonRepeaters := request.ErrorStatus
	if nonRepeaters < 0 {
		nonRepeaters = 0
	}
	if nonRepeaters > len(request.VarBinds) {
		nonRepeaters = len(request.VarBinds)
	}
	maxRepetitions := request.ErrorIndex
	if maxRepetitions < 0 {
		maxRepetitions = 0
	}
	if maxRepetitions > maxBulkRepetitions {
		maxRepetitions = maxBulkRepetitions
	}

	varBinds := make([]VarBind, 0, len(request.VarBinds))
	for i := 0; i < nonRepeaters; i++ {
		varBind, err := s.stepNext(request.VarBinds[i].OID)
		if err != nil {
			return errorResponse(request, StatusGenErr, i+1)
		}
		varBinds = append(varBinds, varBind)
	}

	cursors := make([][]uint32, 0, len(request.VarBinds)-nonRepeaters)
	for i := nonRepeaters; i < len(request.VarBinds); i++ {
		cursors = append(cursors, request.VarBinds[i].OID)
	}
	for r := 0; r < maxRepetitions; r++ {
		for c := range cursors {
			varBind, err := s.stepNext(cursors[c])
			if err != nil {
				return errorResponse(request, StatusGenErr, 0)
			}
			varBinds = append(varBinds, varBind)
			cursors[c] = varBind.OID
		}
	}

	return successResponse(request, varBinds)
}

// stepNext advances one walk cursor, yielding endOfMibView past the table
func (s *server) stepNext(oid []uint32) (VarBind, error) {
	entry, found := s.table.next(oid)
	if !found {
		return VarBind{OID: oid, Value: EndOfMibViewValue()}, nil
	}

	value, err := resolve(entry, s.registry)
	if err != nil {
		return VarBind{}, err
	}

	return VarBind{OID: entry.oid, Value: value}, nil
}

// respondSet rejects the write: every served object is read-only
func (s *server) respondSet(request *Message) *Message {
	if request.Version == Version1 {
		return errorResponse(request, StatusReadOnly, 1)
	}

	return errorResponse(request, StatusNotWritable, 1)
}

func successResponse(request *Message, varBinds []VarBind) *Message {
	return &Message{
		Version:   request.Version,
		Community: request.Community,
		PDUType:   PDUGetResponse,
		RequestID: request.RequestID,
		VarBinds:  varBinds,
	}
}

// errorResponse echoes the request varbinds, as agents do for error answers
func errorResponse(request *Message, status int, index int) *Message {
	return &Message{
		Version:     request.Version,
		Community:   request.Community,
		PDUType:     PDUGetResponse,
		RequestID:   request.RequestID,
		ErrorStatus: status,
		ErrorIndex:  index,
		VarBinds:    request.VarBinds,
	}
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close stops the read loop and waits for the in-flight handlers
func (s *server) Close() error {
	s.closed.Store(true)

	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	s.wg.Wait()

	return err
}
