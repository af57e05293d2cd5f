package ctlfs

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"9fans.net/go/plan9/client"
	"github.com/fhs/mux9p"
)

// Post makes the server reachable as the named service in the current
// name space and serves until the service is torn down.
func (s *Server) Post(name string) error {
	if name == "" {
		return fmt.Errorf("ctlfs: empty service name")
	}
	ns := client.Namespace()
	if ns == "" {
		return fmt.Errorf("ctlfs: no name space")
	}
	if err := os.MkdirAll(ns, 0700); err != nil {
		return err
	}
	addr := filepath.Join(ns, name)

	p0, p1 := net.Pipe()
	errc := make(chan error, 1)
	go func() {
		errc <- mux9p.Listen("unix", addr, p0, nil)
		p1.Close()
	}()
	err := s.Serve(p1)
	p0.Close()
	select {
	case lerr := <-errc:
		if lerr != nil {
			return fmt.Errorf("ctlfs: 9P multiplexer failed: %w", lerr)
		}
	default:
	}
	return err
}
