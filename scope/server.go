package scope

import (
	"log"
	"net"
	"sync"
)

// ScopeServer is a scope that serves frames over a network connection to remote clients.
type ScopeServer struct {
	address string

	server     *grpcServer
	serverLock *sync.Mutex
}

// NewScopeServer creates a new scope server that listens on the given address.
func NewScopeServer(address string) *ScopeServer {
	return &ScopeServer{
		address:    address,
		server:     nil,
		serverLock: &sync.Mutex{},
	}
}

func (s *ScopeServer) Active() bool {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	return s.server != nil
}

// Addr of the running server, nil if the server is not listening (yet).
func (s *ScopeServer) Addr() net.Addr {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	if s.server != nil {
		return s.server.Addr()
	}
	return nil
}

func (s *ScopeServer) Start() error {
	if s.Active() {
		return ErrAlreadyStarted
	}

	server, err := newGRPCServer(s.address, defaultOutBufferSize)
	if err != nil {
		return err
	}

	s.serverLock.Lock()
	s.server = server
	s.serverLock.Unlock()

	go func() {
		err := server.Start()
		if err != nil {
			log.Printf("Scope server failed: %v", err)
		}

		s.serverLock.Lock()
		if s.server == server {
			s.server = nil
		}
		s.serverLock.Unlock()
	}()

	return nil
}

func (s *ScopeServer) Stop() {
	s.serverLock.Lock()
	server := s.server
	s.serverLock.Unlock()

	if server == nil {
		return
	}
	server.Stop()
}

func (s *ScopeServer) currentServer() *grpcServer {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	return s.server
}

func (s *ScopeServer) ShowTraceFrame(traceFrame *TraceFrame) {
	server := s.currentServer()
	if server == nil {
		return
	}

	frame, err := encodeTraceFrame(traceFrame)
	if err != nil {
		log.Printf("cannot encode trace frame: %v", err)
		return
	}
	server.SendFrame(frame)
}

func (s *ScopeServer) ShowSpectralFrame(spectralFrame *SpectralFrame) {
	server := s.currentServer()
	if server == nil {
		return
	}

	frame, err := encodeSpectralFrame(spectralFrame)
	if err != nil {
		log.Printf("cannot encode spectral frame: %v", err)
		return
	}
	server.SendFrame(frame)
}
