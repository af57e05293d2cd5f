// Package ctlfs serves a small 9P file tree for controlling a gutter
// from outside the program:
//
//	ctl    write commands, one per line
//	mark   the marked line, empty when none
//	lines  the line count
//	mode   "dark" or "light", then "focused" or "unfocused"
package ctlfs

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os/user"
	"sync"
	"time"

	"9fans.net/go/plan9"
	"github.com/jesedit/gutter/internal/ninep"
)

var (
	ErrPermission = errors.New("permission denied")
	errNotFound   = errors.New("file does not exist")
	errFidInUse   = errors.New("fid already in use")
	errUnknownFid = errors.New("fid not in use")
)

const (
	Qdir = iota
	Qctl
	Qmark
	Qlines
	Qmode
)

type dirtab struct {
	name string
	t    uint8
	qid  uint64
	perm plan9.Perm
}

var dirtabs = []*dirtab{
	{".", plan9.QTDIR, Qdir, plan9.DMDIR | 0500},
	{"ctl", plan9.QTAPPEND, Qctl, plan9.DMAPPEND | 0200},
	{"mark", plan9.QTFILE, Qmark, 0400},
	{"lines", plan9.QTFILE, Qlines, 0400},
	{"mode", plan9.QTFILE, Qmode, 0400},
}

type fid struct {
	open bool
	dir  *dirtab
	data []byte // contents as of open
}

// Server answers 9P requests on one connection at a time.
type Server struct {
	ctl   Controller
	user  string
	clock func() int64

	mu    sync.Mutex
	fids  map[uint32]*fid
	msize uint32
}

// NewServer returns a server passing ctl writes to ctl.
func NewServer(ctl Controller) *Server {
	return &Server{
		ctl:   ctl,
		user:  getuser(),
		clock: func() int64 { return time.Now().Unix() },
	}
}

type handler func(s *Server, fc *plan9.Fcall) (*plan9.Fcall, error)

var handlers = map[uint8]handler{
	plan9.Tversion: (*Server).version,
	plan9.Tauth:    (*Server).auth,
	plan9.Tflush:   (*Server).flush,
	plan9.Tattach:  (*Server).attach,
	plan9.Twalk:    (*Server).walk,
	plan9.Topen:    (*Server).open,
	plan9.Tcreate:  (*Server).deny,
	plan9.Tread:    (*Server).read,
	plan9.Twrite:   (*Server).write,
	plan9.Tclunk:   (*Server).clunk,
	plan9.Tremove:  (*Server).deny,
	plan9.Tstat:    (*Server).stat,
	plan9.Twstat:   (*Server).deny,
}

// Serve reads requests from conn until it is closed. Requests are
// answered in order.
func (s *Server) Serve(conn io.ReadWriter) error {
	s.mu.Lock()
	s.fids = make(map[uint32]*fid)
	s.mu.Unlock()
	for {
		fc, err := plan9.ReadFcall(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return fmt.Errorf("ctlfs: read request: %w", err)
		}
		h, ok := handlers[fc.Type]
		var t *plan9.Fcall
		if ok {
			t, err = h(s, fc)
		} else {
			err = fmt.Errorf("unknown message type %d", fc.Type)
		}
		if err := respond(conn, fc, t, err); err != nil {
			return fmt.Errorf("ctlfs: write reply: %w", err)
		}
	}
}

func respond(w io.Writer, fc, t *plan9.Fcall, err error) error {
	if t == nil {
		t = &plan9.Fcall{}
	}
	if err != nil {
		t.Type = plan9.Rerror
		t.Ename = err.Error()
	} else {
		t.Type = fc.Type + 1
	}
	t.Fid = fc.Fid
	t.Tag = fc.Tag
	return plan9.WriteFcall(w, t)
}

func (s *Server) version(fc *plan9.Fcall) (*plan9.Fcall, error) {
	if fc.Version != "9P2000" {
		return nil, fmt.Errorf("unrecognized 9P version %q", fc.Version)
	}
	s.mu.Lock()
	s.msize = fc.Msize
	s.fids = make(map[uint32]*fid)
	s.mu.Unlock()
	return &plan9.Fcall{Msize: fc.Msize, Version: "9P2000"}, nil
}

func (s *Server) auth(fc *plan9.Fcall) (*plan9.Fcall, error) {
	return nil, errors.New("authentication not required")
}

// flush has nothing to cancel: every request is answered before the
// next is read.
func (s *Server) flush(fc *plan9.Fcall) (*plan9.Fcall, error) {
	return nil, nil
}

func (s *Server) attach(fc *plan9.Fcall) (*plan9.Fcall, error) {
	if fc.Uname != s.user {
		log.Printf("ctlfs: attach from uname %q does not match %q but allowing anyway", fc.Uname, s.user)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fids[fc.Fid]; ok {
		return nil, errFidInUse
	}
	f := &fid{dir: dirtabs[0]}
	s.fids[fc.Fid] = f
	return &plan9.Fcall{Qid: f.dir.qidof()}, nil
}

func (s *Server) lookup(n uint32) (*fid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fids[n]
	if !ok {
		return nil, errUnknownFid
	}
	return f, nil
}

func (s *Server) walk(fc *plan9.Fcall) (*plan9.Fcall, error) {
	f, err := s.lookup(fc.Fid)
	if err != nil {
		return nil, err
	}
	if f.open {
		return nil, errors.New("walk of open file")
	}
	if fc.Newfid != fc.Fid {
		if _, err := s.lookup(fc.Newfid); err == nil {
			return nil, errFidInUse
		}
	}

	dir := f.dir
	t := &plan9.Fcall{}
	for _, name := range fc.Wname {
		next, err := walk1(dir, name)
		if err != nil {
			if len(t.Wqid) == 0 {
				return nil, err
			}
			// A partial walk leaves newfid unset.
			return t, nil
		}
		dir = next
		t.Wqid = append(t.Wqid, dir.qidof())
	}

	s.mu.Lock()
	if fc.Newfid == fc.Fid {
		f.dir = dir
	} else {
		s.fids[fc.Newfid] = &fid{dir: dir}
	}
	s.mu.Unlock()
	return t, nil
}

func walk1(dir *dirtab, name string) (*dirtab, error) {
	if dir.qid != Qdir {
		return nil, errors.New("walk in non-directory")
	}
	if name == ".." || name == "." {
		return dirtabs[0], nil
	}
	for _, d := range dirtabs[1:] {
		if d.name == name {
			return d, nil
		}
	}
	return nil, errNotFound
}

func (s *Server) open(fc *plan9.Fcall) (*plan9.Fcall, error) {
	f, err := s.lookup(fc.Fid)
	if err != nil {
		return nil, err
	}
	mode := fc.Mode &^ (plan9.OTRUNC | plan9.OCEXEC)
	var m plan9.Perm
	switch mode {
	case plan9.OREAD:
		m = 0400
	case plan9.OWRITE:
		m = 0200
	case plan9.ORDWR:
		m = 0600
	default:
		return nil, ErrPermission
	}
	if (f.dir.perm&^(plan9.DMDIR|plan9.DMAPPEND))&m != m {
		return nil, ErrPermission
	}

	st := s.ctl.State()
	switch f.dir.qid {
	case Qmark:
		f.data = []byte(st.mark())
	case Qlines:
		f.data = []byte(st.lines())
	case Qmode:
		f.data = []byte(st.mode())
	}
	f.open = true
	return &plan9.Fcall{Qid: f.dir.qidof()}, nil
}

func (s *Server) deny(fc *plan9.Fcall) (*plan9.Fcall, error) {
	return nil, ErrPermission
}

func (s *Server) read(fc *plan9.Fcall) (*plan9.Fcall, error) {
	f, err := s.lookup(fc.Fid)
	if err != nil {
		return nil, err
	}
	if !f.open {
		return nil, errors.New("read of unopened file")
	}
	var t plan9.Fcall
	if f.dir.qid == Qdir {
		clock := s.clock()
		var dirs []*plan9.Dir
		for _, d := range dirtabs[1:] {
			dirs = append(dirs, d.stat(s.user, clock))
		}
		ninep.DirRead(&t, fc, dirs)
		return &t, nil
	}
	ninep.ReadBuffer(&t, fc, f.data)
	return &t, nil
}

func (s *Server) write(fc *plan9.Fcall) (*plan9.Fcall, error) {
	f, err := s.lookup(fc.Fid)
	if err != nil {
		return nil, err
	}
	if !f.open || f.dir.qid != Qctl {
		return nil, ErrPermission
	}
	cmds, err := ParseCommands(string(fc.Data))
	if err != nil {
		return nil, err
	}
	for _, c := range cmds {
		if err := s.ctl.Do(c); err != nil {
			return nil, err
		}
	}
	return &plan9.Fcall{Count: uint32(len(fc.Data))}, nil
}

func (s *Server) clunk(fc *plan9.Fcall) (*plan9.Fcall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fids[fc.Fid]; !ok {
		return nil, errUnknownFid
	}
	delete(s.fids, fc.Fid)
	return nil, nil
}

func (s *Server) stat(fc *plan9.Fcall) (*plan9.Fcall, error) {
	f, err := s.lookup(fc.Fid)
	if err != nil {
		return nil, err
	}
	b, err := f.dir.stat(s.user, s.clock()).Bytes()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	msize := s.msize
	s.mu.Unlock()
	if msize > 0 && len(b) > int(msize)-plan9.IOHDRSZ {
		return nil, errors.New("msize too small")
	}
	return &plan9.Fcall{Stat: b}, nil
}

func (d *dirtab) qidof() plan9.Qid {
	return plan9.Qid{Path: d.qid, Type: d.t}
}

func (d *dirtab) stat(user string, clock int64) *plan9.Dir {
	return &plan9.Dir{
		Qid:   d.qidof(),
		Mode:  d.perm,
		Atime: uint32(clock),
		Mtime: uint32(clock),
		Name:  d.name,
		Uid:   user,
		Gid:   user,
		Muid:  user,
	}
}

func getuser() string {
	u, err := user.Current()
	if err != nil {
		return "none"
	}
	return u.Username
}
