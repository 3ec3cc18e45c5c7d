package scope

import (
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultOutBufferSize = 10

	serviceName     = "touchdso.scope.Scope"
	getFramesMethod = "/" + serviceName + "/GetFrames"
)

// frameServer is the server side of the scope service. The service streams frames as protobuf structs,
// it is registered by hand since it consists of a single server stream.
type frameServer interface {
	GetFrames(*emptypb.Empty, grpc.ServerStream) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*frameServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetFrames",
			Handler:       getFramesHandler,
			ServerStreams: true,
		},
	},
}

func getFramesHandler(srv any, stream grpc.ServerStream) error {
	request := new(emptypb.Empty)
	if err := stream.RecvMsg(request); err != nil {
		return err
	}
	return srv.(frameServer).GetFrames(request, stream)
}

type grpcServer struct {
	address *net.TCPAddr

	serverLock *sync.Mutex
	server     *grpc.Server
	listener   net.Listener

	outBufferSize int
	in            chan *structpb.Struct
	register      chan chan *structpb.Struct
	out           []chan *structpb.Struct
	shutdown      chan struct{}
}

func newGRPCServer(address string, outBufferSize int) (*grpcServer, error) {
	result := &grpcServer{
		serverLock:    &sync.Mutex{},
		outBufferSize: outBufferSize,
		in:            make(chan *structpb.Struct),
		register:      make(chan chan *structpb.Struct),
		shutdown:      make(chan struct{}),
	}

	localAddress, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve address %s: %w", address, err)
	}
	result.address = localAddress

	return result, nil
}

func (s *grpcServer) run() {
	for {
		select {
		case <-s.shutdown:
			for _, out := range s.out {
				close(out)
			}
			s.out = nil
			return
		case out := <-s.register:
			s.out = append(s.out, out)
		case frame := <-s.in:
			s.sendFrameToStreams(frame)
		}
	}
}

// sendFrameToStreams closes and drops all streams that cannot keep up.
func (s *grpcServer) sendFrameToStreams(frame *structpb.Struct) {
	kept := s.out[:0]
	for _, out := range s.out {
		select {
		case out <- frame:
			kept = append(kept, out)
		default:
			close(out)
		}
	}
	for i := len(kept); i < len(s.out); i++ {
		s.out[i] = nil
	}
	s.out = kept
}

func (s *grpcServer) getFrameStream() chan *structpb.Struct {
	result := make(chan *structpb.Struct, s.outBufferSize)
	select {
	case s.register <- result:
	case <-s.shutdown:
		close(result)
	}
	return result
}

// Start serves until Stop is called.
func (s *grpcServer) Start() error {
	s.serverLock.Lock()
	if s.server != nil {
		s.serverLock.Unlock()
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.address.String())
	if err != nil {
		s.serverLock.Unlock()
		close(s.shutdown)
		return fmt.Errorf("cannot listen on address %s: %w", s.address, err)
	}

	go s.run()

	server := grpc.NewServer()
	server.RegisterService(&serviceDesc, s)
	s.server = server
	s.listener = listener
	s.serverLock.Unlock()

	err = server.Serve(listener)
	close(s.shutdown)
	return err
}

func (s *grpcServer) Stop() {
	s.serverLock.Lock()
	server := s.server
	s.server = nil
	s.serverLock.Unlock()

	if server == nil {
		return
	}
	server.Stop()
}

// Addr of the listener, nil if the server is not running.
func (s *grpcServer) Addr() net.Addr {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	if s.server == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *grpcServer) GetFrames(_ *emptypb.Empty, stream grpc.ServerStream) error {
	frames := s.getFrameStream()
	for {
		select {
		case frame, open := <-frames:
			if !open {
				return nil
			}
			if err := stream.SendMsg(frame); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

// SendFrame hands the frame over to all registered streams. It returns immediately if the server is shut down.
func (s *grpcServer) SendFrame(frame *structpb.Struct) {
	select {
	case s.in <- frame:
	case <-s.shutdown:
	}
}
