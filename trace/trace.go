// Package trace writes diagnostic records of the display loop to a file or a UDP destination.
// Records are tagged with a context (render, dso), a tracer only writes the contexts it was created for.
package trace

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"slices"
	"strings"
)

var ErrUnknownProtocol = errors.New("unknown trace protocol")

type Tracer interface {
	Start()
	Trace(context string, format string, args ...any)
	Stop()
}

// New creates a tracer for the given destination, either file:<filename> or udp:<host:port>.
// The contexts are separated by commas.
func New(contexts string, destination string) (Tracer, error) {
	protocol, target, found := strings.Cut(destination, ":")
	if !found {
		return nil, fmt.Errorf("invalid trace destination %q, use file:<filename> or udp:<host:port>", destination)
	}

	switch strings.ToLower(protocol) {
	case "file":
		return NewFileTracer(contexts, target), nil
	case "udp":
		return NewUDPTracer(contexts, target), nil
	default:
		return nil, fmt.Errorf("%s: %w", protocol, ErrUnknownProtocol)
	}
}

type NoTracer struct{}

func (t *NoTracer) Start()                       {}
func (t *NoTracer) Trace(string, string, ...any) {}
func (t *NoTracer) Stop()                        {}

// StreamTracer writes the records of its contexts into the stream it opens on Start.
// Records before Start and after Stop are dropped.
type StreamTracer struct {
	contexts    []string
	destination string
	open        func() (io.WriteCloser, error)
	out         io.WriteCloser
}

func NewFileTracer(contexts string, filename string) *StreamTracer {
	return &StreamTracer{
		contexts:    splitContexts(contexts),
		destination: "file:" + filename,
		open: func() (io.WriteCloser, error) {
			return os.Create(filename)
		},
	}
}

func NewUDPTracer(contexts string, destination string) *StreamTracer {
	return &StreamTracer{
		contexts:    splitContexts(contexts),
		destination: "udp:" + destination,
		open: func() (io.WriteCloser, error) {
			addr, err := net.ResolveUDPAddr("udp", destination)
			if err != nil {
				return nil, fmt.Errorf("cannot parse UDP destination: %w", err)
			}
			return net.DialUDP("udp", nil, addr)
		},
	}
}

func splitContexts(contexts string) []string {
	var result []string
	for _, context := range strings.Split(contexts, ",") {
		context = strings.TrimSpace(context)
		if context != "" {
			result = append(result, context)
		}
	}
	return result
}

func (t *StreamTracer) Contexts() []string {
	return slices.Clone(t.contexts)
}

func (t *StreamTracer) Destination() string {
	return t.destination
}

func (t *StreamTracer) Start() {
	if t.out != nil {
		return
	}

	out, err := t.open()
	if err != nil {
		log.Printf("cannot start trace to %s: %v", t.destination, err)
		return
	}
	t.out = out
}

func (t *StreamTracer) Trace(context string, format string, args ...any) {
	if t.out == nil || !slices.Contains(t.contexts, context) {
		return
	}
	fmt.Fprintf(t.out, format, args...)
}

func (t *StreamTracer) Stop() {
	if t.out == nil {
		return
	}
	t.out.Close()
	t.out = nil
}
