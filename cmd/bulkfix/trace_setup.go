package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bulkfix/internal/trace"
)

type traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	fs := cmd.Root().PersistentFlags()
	var (
		tf   traceFlags
		errs = make([]error, 5)
	)
	tf.output, errs[0] = fs.GetString("trace")
	tf.level, errs[1] = fs.GetString("trace-level")
	tf.mode, errs[2] = fs.GetString("trace-mode")
	tf.ringSize, errs[3] = fs.GetInt("trace-ring-size")
	tf.heartbeat, errs[4] = fs.GetDuration("trace-heartbeat")
	return tf, errors.Join(errs...)
}

// config turns flags into a tracer config. An output without an explicit
// level traces phases; an output with ring mode also keeps the ring.
func (tf traceFlags) config() (trace.Config, error) {
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return trace.Config{}, err
	}
	if level == trace.LevelOff && tf.output != "" {
		level = trace.LevelPhase
	}
	mode, err := trace.ParseMode(tf.mode)
	if err != nil {
		return trace.Config{}, err
	}
	if mode == trace.ModeRing && tf.output != "" {
		mode = trace.ModeBoth
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
		Heartbeat:  tf.heartbeat,
	}, nil
}

// setupTracing attaches the tracer described by the trace flags to the
// command context. The returned func stops the heartbeat and flushes.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := tf.config()
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	if cfg.Level == trace.LevelOff {
		return func() {}, nil
	}

	beat := trace.StartHeartbeat(tracer, cfg.Heartbeat)
	return func() {
		beat.Stop()
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}

// dumpTraceOnPanic writes the ring buffer to stderr before re-panicking.
func dumpTraceOnPanic(cmd *cobra.Command) {
	r := recover()
	if r == nil {
		return
	}
	if ring := ringOf(trace.FromContext(cmd.Context())); ring != nil {
		fmt.Fprintf(os.Stderr, "panic: %v\n--- last trace events ---\n", r)
		_ = ring.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}

func ringOf(t trace.Tracer) *trace.RingTracer {
	switch t := t.(type) {
	case *trace.RingTracer:
		return t
	case *trace.MultiTracer:
		for _, inner := range t.Tracers() {
			if ring := ringOf(inner); ring != nil {
				return ring
			}
		}
	}
	return nil
}
