// File: irq/bridge.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handler helpers wiring hardware events to task wakes. These are the
// whole of what interrupt handlers are allowed to do: flip a ready
// flag through a waker, nothing else.

package irq

import "github.com/momentics/nanoloop/api"

// BindWake attaches a handler that wakes w each time the line fires.
// The waker's generation check makes a late interrupt against a
// completed task a harmless no-op, so drivers may bind long-lived
// lines well before the awaited event occurs.
func BindWake(l api.Interrupt, w api.Waker) {
	l.SetHandler(w.Wake)
}

// BindFunc attaches fn directly. fn runs in interrupt dispatch context
// and must obey its restrictions: bounded work, wake/schedule calls
// only.
func BindFunc(l api.Interrupt, fn func()) {
	l.SetHandler(fn)
}
