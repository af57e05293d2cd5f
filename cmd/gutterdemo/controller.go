package main

import (
	"errors"

	"github.com/jesedit/gutter/ctlfs"
)

var errClosed = errors.New("window closed")

// request carries a ctl command, or a state query when cmd is nil, to
// the UI goroutine.
type request struct {
	cmd   *ctlfs.Command
	reply chan<- reply
}

type reply struct {
	st  ctlfs.State
	err error
}

// controller implements ctlfs.Controller by handing every call to the
// UI loop, which owns the gutter.
type controller struct {
	requests chan<- request
	done     <-chan struct{}
}

func (c *controller) call(cmd *ctlfs.Command) reply {
	ch := make(chan reply, 1)
	select {
	case c.requests <- request{cmd: cmd, reply: ch}:
	case <-c.done:
		return reply{err: errClosed}
	}
	select {
	case r := <-ch:
		return r
	case <-c.done:
		return reply{err: errClosed}
	}
}

func (c *controller) Do(cmd ctlfs.Command) error {
	return c.call(&cmd).err
}

func (c *controller) State() ctlfs.State {
	return c.call(nil).st
}
