package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gdl90rx/internal/gdl90"
	"gdl90rx/internal/metrics"
	"gdl90rx/internal/traffic"
	"gdl90rx/internal/web"
)

// chunkWriter hands byte chunks from a source goroutine to the decode loop.
// Sources may reuse their read buffer, so every chunk is copied.
type chunkWriter struct {
	ctx context.Context
	ch  chan<- []byte
}

func (w chunkWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	cp := append([]byte(nil), p...)
	select {
	case w.ch <- cp:
		return len(p), nil
	case <-w.ctx.Done():
		return 0, w.ctx.Err()
	}
}

// pipeline owns the gdl90.Stream. Everything downstream of a decoded message
// is fanned out from here on a single goroutine.
type pipeline struct {
	stream  *gdl90.Stream
	traffic *traffic.Store
	hub     *web.Hub
	status  *web.Status
	metrics *metrics.Sink
	logger  zerolog.Logger
	now     func() time.Time

	// counters, when set, is polled with the stats ticker.
	counters   inputCounters
	statsEvery time.Duration
}

func newPipeline(store *traffic.Store, hub *web.Hub, status *web.Status, sink *metrics.Sink, logger zerolog.Logger) *pipeline {
	p := &pipeline{
		traffic:    store,
		hub:        hub,
		status:     status,
		metrics:    sink,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		statsEvery: 10 * time.Second,
	}
	p.stream = gdl90.NewStream(p.onMessage, p.onError, gdl90.WithLogger(logger))
	return p
}

func (p *pipeline) onMessage(m gdl90.Message) {
	now := p.now()
	if e := p.logger.Debug(); e.Enabled() {
		e.Str("id", m.MessageID().String()).Interface("msg", m).Msg("gdl90 message")
	}
	p.traffic.Apply(now, m)
	p.status.MarkMessage(now)
	p.hub.Publish(web.MessageEvent(now, m))
	p.metrics.Message(now, m)
}

func (p *pipeline) onError(err error) {
	now := p.now()
	p.hub.Publish(web.ErrorEvent(now, err))
	p.metrics.Error(now, err)
}

// run feeds chunks into the stream until ch is closed or ctx is done.
func (p *pipeline) run(ctx context.Context, ch <-chan []byte) error {
	t := time.NewTicker(p.statsEvery)
	defer t.Stop()
	defer p.finish()

	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-ch:
			if !ok {
				return nil
			}
			p.stream.Feed(chunk)
		case <-t.C:
			st := p.publishStats()
			p.logger.Info().
				Uint64("bytes", st.Bytes).
				Uint64("messages", st.Messages).
				Uint64("checksum_errors", st.ChecksumErrors).
				Uint64("unknown", st.UnknownMessages).
				Int("targets", p.traffic.Len()).
				Msg("stream stats")
		}
	}
}

// publishStats pushes a stats copy to the monitor and metrics.
func (p *pipeline) publishStats() gdl90.Stats {
	if p.counters != nil {
		p.status.SetInputCounters(p.counters())
	}
	st := p.stream.Stats()
	p.status.SetStats(st)
	p.metrics.Stats(p.now(), st)
	return st
}

func (p *pipeline) finish() {
	_ = p.stream.Close()
	st := p.publishStats()
	p.logger.Info().
		Uint64("bytes", st.Bytes).
		Uint64("frames", st.Frames).
		Uint64("messages", st.Messages).
		Msg("decode loop stopped")
}
