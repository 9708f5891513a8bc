package usecase

import (
	"context"
	"sync"
	"time"

	"TradeBot365/internal/domain/models"
	drepo "TradeBot365/internal/domain/repository"
	mid "TradeBot365/internal/middleware"
)

// SignalCollector consumes the upstream signal stream and hands signals to
// the processor, optionally through the ingest pipeline.
type SignalCollector struct {
	stream  drepo.SignalStream
	proc    *SignalProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline

	stop     chan struct{}
	stopOnce sync.Once
}

func NewSignalCollector(stream drepo.SignalStream, proc *SignalProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *SignalCollector {
	return &SignalCollector{
		stream:  stream,
		proc:    proc,
		metrics: metrics,
		pipe:    pipe,
		stop:    make(chan struct{}),
	}
}

// IsConnected returns true if the upstream stream is connected.
func (c *SignalCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *SignalCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	go c.run(ctx)
	return nil
}

// run owns the read-loop lifecycle. Every (re)established connection gets a
// fresh Read; when a read session dies the stream is reconnected and read
// again rather than left dangling.
func (c *SignalCollector) run(ctx context.Context) {
	for {
		sigCh, errCh := c.stream.Read(ctx)
		c.consume(ctx, sigCh, errCh)
		if ctx.Err() != nil {
			return
		}
		select {
		case <-c.stop:
			return
		default:
		}
		for {
			if err := c.stream.Reconnect(ctx); err == nil {
				break
			}
			c.metrics.RecordError("stream_reconnect")
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case <-time.After(time.Second):
			}
		}
	}
}

// consume drains one read session. It returns once both channels are closed
// or the context ends; a nil'd channel case never fires again.
func (c *SignalCollector) consume(ctx context.Context, sigCh <-chan *models.Signal, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				if sigCh == nil {
					return
				}
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
			}
		case s, ok := <-sigCh:
			if !ok {
				sigCh = nil
				if errCh == nil {
					return
				}
				continue
			}
			if s == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, s)
			} else {
				_ = c.proc.Process(ctx, s)
			}
		}
	}
}

// Processor returns the underlying SignalProcessor for lifecycle management.
func (c *SignalCollector) Processor() *SignalProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *SignalCollector) Shutdown(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stop) })
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
