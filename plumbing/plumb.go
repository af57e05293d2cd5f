// Package plumbing receives file:line references from the plumber.
package plumbing

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"9fans.net/go/plan9"
	"9fans.net/go/plan9/client"
	"9fans.net/go/plumb"
)

// DefaultPort is the port editors listen on.
const DefaultPort = "edit"

// retry is how long Listen waits before trying the plumber again.
var retry = 2 * time.Second

// Target is a line in a file that a plumb message asked to show.
type Target struct {
	File string
	Line int
}

// Listen sends a Target for every plumbed file:line reference on port
// until ctx is done. It reconnects when the plumber goes away so that
// the plumber can be restarted underneath it.
func Listen(ctx context.Context, port string, out chan<- Target) error {
	for {
		err := session(ctx, port, out)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil && err != io.EOF {
			log.Printf("plumbing: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}

// dial connects to the plumber.
var dial = func() (*client.Conn, error) {
	return client.DialService("plumb")
}

// session reads port over one plumber connection. The connection is
// closed before it returns.
func session(ctx context.Context, port string, out chan<- Target) error {
	conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	fsys, err := conn.Attach(nil, os.Getenv("USER"), "")
	if err != nil {
		return err
	}
	fid, err := fsys.Open(port, plan9.OREAD)
	if err != nil {
		return err
	}
	return receive(ctx, fid, out)
}

// receive reads messages from r until it fails or ctx is done. r is
// closed when ctx is done to unblock the read.
func receive(ctx context.Context, r io.ReadCloser, out chan<- Target) error {
	stop := context.AfterFunc(ctx, func() { r.Close() })
	defer stop()
	defer r.Close()

	br := bufio.NewReader(r)
	for {
		var m plumb.Message
		if err := m.Recv(br); err != nil {
			return err
		}
		t, ok := ParseMessage(&m)
		if !ok {
			continue
		}
		select {
		case out <- t:
		case <-ctx.Done():
			return nil
		}
	}
}

// ParseMessage extracts the target of a text message asking to show a
// file. The line comes from the addr attribute or from a :line suffix
// on the data. Messages without a line are not targets.
func ParseMessage(m *plumb.Message) (Target, bool) {
	if m.Type != "text" {
		return Target{}, false
	}
	if act := findattr(m.Attr, "action"); act != "" && act != "showfile" {
		return Target{}, false
	}

	file := strings.TrimSpace(string(m.Data))
	addr := findattr(m.Attr, "addr")
	if addr == "" {
		if i := strings.LastIndexByte(file, ':'); i >= 0 {
			file, addr = file[:i], file[i+1:]
		}
	}
	line, ok := parseline(addr)
	if !ok || file == "" {
		return Target{}, false
	}
	if !filepath.IsAbs(file) && m.Dir != "" {
		file = filepath.Join(m.Dir, file)
	}
	return Target{File: filepath.Clean(file), Line: line}, true
}

// parseline accepts the simple line addresses "12" and ":12".
func parseline(addr string) (int, bool) {
	addr = strings.TrimPrefix(strings.TrimSpace(addr), ":")
	n, err := strconv.Atoi(addr)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func findattr(attr *plumb.Attribute, s string) string {
	for ; attr != nil; attr = attr.Next {
		if attr.Name == s {
			return attr.Value
		}
	}
	return ""
}
