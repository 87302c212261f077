//go:build linux

// File: hw/host/timer_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux platform timer via timerfd. A dedicated reader goroutine
// blocks on the descriptor and invokes the expiration callback; this
// goroutine is the host analogue of the timer interrupt.

package host

import (
	"time"

	"golang.org/x/sys/unix"
)

type timerfdPlatform struct {
	fd     int
	expire func()
}

func newPlatform(expire func()) (platform, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	p := &timerfdPlatform{fd: fd, expire: expire}
	go p.read()
	return p, nil
}

// read blocks on the descriptor until armed expirations arrive or the
// descriptor is closed.
func (p *timerfdPlatform) read() {
	var buf [8]byte
	for {
		n, err := unix.Read(p.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil || n == 0 {
			return
		}
		p.expire()
	}
}

func (p *timerfdPlatform) set(d time.Duration) {
	if d <= 0 {
		// Zero disarms a timerfd; one nanosecond means "immediately".
		d = time.Nanosecond
	}
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(d.Nanoseconds())}
	_ = unix.TimerfdSettime(p.fd, 0, &spec, nil)
}

func (p *timerfdPlatform) stop() {
	_ = unix.TimerfdSettime(p.fd, 0, &unix.ItimerSpec{}, nil)
}

func (p *timerfdPlatform) close() error {
	return unix.Close(p.fd)
}
