//go:build !linux

// File: hw/host/timer_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable platform timer for non-Linux hosts, built on time.Timer.
// The runtime's timer goroutine plays the interrupt context here.

package host

import (
	"sync"
	"time"
)

type stdPlatform struct {
	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	expire func()
}

func newPlatform(expire func()) (platform, error) {
	return &stdPlatform{expire: expire}, nil
}

func (p *stdPlatform) fire() {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if !closed {
		p.expire()
	}
}

func (p *stdPlatform) set(d time.Duration) {
	if d <= 0 {
		d = time.Nanosecond
	}
	p.mu.Lock()
	if p.timer == nil {
		p.timer = time.AfterFunc(d, p.fire)
	} else {
		p.timer.Reset(d)
	}
	p.mu.Unlock()
}

func (p *stdPlatform) stop() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()
}

func (p *stdPlatform) close() error {
	p.mu.Lock()
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()
	return nil
}
