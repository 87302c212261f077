// File: cmd/nanoloop/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The run command: assemble the runtime over the hosted timer, spawn
// the demo task set (a periodic heartbeat plus an interrupt-driven
// mailbox consumer), drive it for the requested duration, and report
// the scheduling counters.

package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/nanoloop/api"
	"github.com/momentics/nanoloop/control"
	"github.com/momentics/nanoloop/facade"
	"github.com/momentics/nanoloop/hw/host"
	"github.com/momentics/nanoloop/ipc"
	"github.com/momentics/nanoloop/irq"
	"github.com/momentics/nanoloop/timerq"
)

var (
	runConfigPath string
	runDuration   time.Duration
	runTraceOut   string
	runBeats      int
)

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "TOML config file (defaults apply when empty)")
	runCmd.Flags().DurationVar(&runDuration, "duration", 3*time.Second, "how long to host the firmware")
	runCmd.Flags().StringVar(&runTraceOut, "trace-out", "", "write the msgpack trace journal to this file")
	runCmd.Flags().IntVar(&runBeats, "beats", 5, "heartbeat count before the heartbeat task completes")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demo task set on the hosted timer backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := control.DefaultConfig()
		if runConfigPath != "" {
			loaded, err := control.LoadConfig(runConfigPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if runTraceOut != "" && cfg.TraceDepth == 0 {
			cfg.TraceDepth = 4096
		}

		hw, err := host.NewTimer(cfg.Frequency())
		if err != nil {
			return err
		}
		defer hw.Close()

		rt, err := facade.New(cfg, hw)
		if err != nil {
			return err
		}

		line, err := spawnDemo(rt, cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), runDuration)
		defer cancel()
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return rt.Run(ctx) })
		g.Go(func() error { return pendPeripheral(ctx, line) })
		if err := g.Wait(); err != nil && ctx.Err() == nil {
			return err
		}

		reportStats(cmd, rt)
		if runTraceOut != "" {
			if err := writeTrace(rt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "trace written to %s\n", runTraceOut)
		}
		return nil
	},
}

// spawnDemo installs the demo task set: a heartbeat sleeping on the
// alarm driver and a consumer fed by a simulated peripheral interrupt.
func spawnDemo(rt *facade.Runtime, cmd *cobra.Command) (*irq.Line, error) {
	out := cmd.OutOrStdout()
	beat := color.New(color.FgGreen)
	recv := color.New(color.FgCyan)

	hb := &heartbeat{
		rt:        rt,
		remaining: runBeats,
		interval:  uint64(rt.Timer().Clock().Frequency()) / 2,
		report:    func(n int) { beat.Fprintf(out, "heartbeat %d\n", n) },
	}
	if _, err := rt.Spawn(hb.poll); err != nil {
		return nil, err
	}

	mb := ipc.NewMailbox[uint64](8)
	line := rt.IRQ().Line(3)
	line.SetPriority(1)
	var seq uint64
	irq.BindFunc(line, func() {
		seq++
		mb.TryPush(seq)
	})
	line.Enable()

	consumer := func(cx *api.Context) api.Poll {
		for {
			v, res := mb.Pop(cx)
			if res == api.Pending {
				return api.Pending
			}
			recv.Fprintf(out, "peripheral event %d\n", v)
		}
	}
	if _, err := rt.Spawn(consumer); err != nil {
		return nil, err
	}
	return line, nil
}

// heartbeat is a periodic task: sleep half a second of timer time,
// report, repeat, then complete.
type heartbeat struct {
	rt        *facade.Runtime
	remaining int
	interval  uint64
	next      api.Instant
	started   bool
	count     int
	report    func(n int)
}

func (h *heartbeat) poll(cx *api.Context) api.Poll {
	for {
		if !h.started {
			h.next = h.rt.Now().Add(h.interval)
			h.started = true
		}
		if timerq.SleepUntil(h.rt.Timer(), cx, h.next) == api.Pending {
			return api.Pending
		}
		h.count++
		if h.report != nil {
			h.report(h.count)
		}
		h.remaining--
		if h.remaining <= 0 {
			return api.Done
		}
		h.next = h.next.Add(h.interval)
	}
}

// pendPeripheral plays the external peripheral: it pends the demo line
// every 400ms until the run context ends.
func pendPeripheral(ctx context.Context, line *irq.Line) error {
	tick := time.NewTicker(400 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			line.Pend()
		}
	}
}

// reportStats prints the merged scheduler counters, sorted by key.
func reportStats(cmd *cobra.Command, rt *facade.Runtime) {
	out := cmd.OutOrStdout()
	head := color.New(color.Bold)
	head.Fprintln(out, "scheduler counters:")
	stats := rt.Control().Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-28s %v\n", k, stats[k])
	}
}

// writeTrace dumps the journal to the requested file.
func writeTrace(rt *facade.Runtime) error {
	j := rt.Journal()
	if j == nil {
		return nil
	}
	f, err := os.Create(runTraceOut)
	if err != nil {
		return err
	}
	if err := j.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
