// Package ninep has reply helpers for a 9P2000 file server.
package ninep

import (
	"errors"

	"9fans.net/go/plan9"
)

// ErrPartialDir is returned by UnmarshalDirs when b ends inside an
// entry.
var ErrPartialDir = errors.New("partial directory entry")

// ReadBuffer fills in ofcall.Data and ofcall.Count with the part of src
// that ifcall asks for. Data aliases src.
func ReadBuffer(ofcall, ifcall *plan9.Fcall, src []byte) {
	ofcall.Count = 0
	ofcall.Data = nil
	if ifcall.Offset >= uint64(len(src)) {
		return
	}
	end := ifcall.Offset + uint64(ifcall.Count)
	if end > uint64(len(src)) {
		end = uint64(len(src))
	}
	ofcall.Data = src[ifcall.Offset:end]
	ofcall.Count = uint32(len(ofcall.Data))
}

// ReadString is ReadBuffer for a string. It may split a rune; readers
// keep reading until they get an empty reply.
func ReadString(ofcall, ifcall *plan9.Fcall, src string) {
	ReadBuffer(ofcall, ifcall, []byte(src))
}

// DirRead fills in ofcall.Data with whole encoded entries of dirs
// starting at byte offset ifcall.Offset of the directory and fitting in
// ifcall.Count bytes. It returns the number of entries sent.
func DirRead(ofcall, ifcall *plan9.Fcall, dirs []*plan9.Dir) int {
	var (
		data []byte
		off  uint64
		sent int
	)
	for _, d := range dirs {
		b, err := d.Bytes()
		if err != nil {
			break
		}
		if off >= ifcall.Offset {
			if len(data)+len(b) > int(ifcall.Count) {
				break
			}
			data = append(data, b...)
			sent++
		}
		off += uint64(len(b))
	}
	ofcall.Data = data
	ofcall.Count = uint32(len(data))
	return sent
}

// UnmarshalDirs decodes the concatenated directory entries in b.
// plan9.UnmarshalDir only handles one.
func UnmarshalDirs(b []byte) ([]*plan9.Dir, error) {
	var dirs []*plan9.Dir
	for len(b) >= 2 {
		n := 2 + (int(b[0]) | int(b[1])<<8)
		if n > len(b) {
			return nil, ErrPartialDir
		}
		d, err := plan9.UnmarshalDir(b[:n])
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
		b = b[n:]
	}
	if len(b) != 0 {
		return nil, ErrPartialDir
	}
	return dirs, nil
}
