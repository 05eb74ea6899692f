// Package device implements the bounded producer/consumer frame-flow
// abstraction: a capture queue feeding consumers, an available queue
// recycling frame containers back to producers, and a drop-oldest
// overflow policy tuned for live capture (favoring latency over
// completeness).
package device

import (
	"sync"

	"github.com/aspectron/rastercodec"
	"go.uber.org/zap"
)

// Flags tag a FrameContainer's origin/ownership.
type Flags uint32

const (
	FlagDefault Flags = 0
	FlagInput   Flags = 1 << (iota - 1)
	FlagOutput
	FlagLocal
)

// FrameContainer is a shared handle to a color bitmap and an optional
// separate alpha bitmap, tagged with origin flags.
type FrameContainer struct {
	Color *rastercodec.Bitmap
	Alpha *rastercodec.Bitmap
	Flags Flags
}

// maxCaptureDepth is the queue depth schedule_input_frame trims down to
// when drop_frames is requested.
const maxCaptureDepth = 2

// queue is a FIFO of FrameContainer guarded by a mutex plus a condition
// variable for blocking pop, the Go-idiomatic stand-in for the teacher's
// lock-and-condvar concurrent_queue.
type queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []FrameContainer
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(f FrameContainer) {
	q.mu.Lock()
	q.items = append(q.items, f)
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *queue) tryPop() (FrameContainer, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return FrameContainer{}, false
	}
	f := q.items[0]
	q.items = q.items[1:]
	return f, true
}

func (q *queue) waitAndPop() FrameContainer {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	f := q.items[0]
	q.items = q.items[1:]
	return f
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// OutputScheduler is implemented by concrete devices to receive frames
// scheduled for output; Device itself has no opinion on what "output"
// means for a given device.
type OutputScheduler interface {
	ScheduleOutputFrame(frame FrameContainer)
}

// Device holds the two bounded queues and drop counter shared by every
// concrete capture device. Embed it and implement OutputScheduler to get
// a complete device.
type Device struct {
	name     string
	log      *zap.Logger
	captureQ *queue
	availQ   *queue
	dropped  uint32
	dropMu   sync.Mutex
}

// New creates a Device identified by name, logging drop events through
// log (pass zap.NewNop() to silence them).
func New(name string, log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	return &Device{
		name:     name,
		log:      log,
		captureQ: newQueue(),
		availQ:   newQueue(),
	}
}

// Name returns the device's identifying name.
func (d *Device) Name() string { return d.name }

// DroppedFrames returns the number of input frames discarded so far by
// schedule_input_frame's drop-oldest policy.
func (d *Device) DroppedFrames() uint32 {
	d.dropMu.Lock()
	defer d.dropMu.Unlock()
	return d.dropped
}

// AcquireInputFrame is the non-blocking pop: it returns the oldest capture
// frame and true, or a zero FrameContainer and false if the queue is
// empty.
func (d *Device) AcquireInputFrame() (FrameContainer, bool) {
	return d.captureQ.tryPop()
}

// AcquireInputFrameBlocking blocks until a capture frame is available.
func (d *Device) AcquireInputFrameBlocking() FrameContainer {
	return d.captureQ.waitAndPop()
}

// ReleaseInputFrame returns frame to the available queue for producer
// reuse.
func (d *Device) ReleaseInputFrame(frame FrameContainer) {
	d.availQ.push(frame)
}

// AcquireAvailableFrame is the producer-side counterpart to
// ReleaseInputFrame: it pops a recycled container, if one is queued.
func (d *Device) AcquireAvailableFrame() (FrameContainer, bool) {
	return d.availQ.tryPop()
}

// ScheduleInputFrame pushes frame onto the capture queue. If dropFrames is
// set and the queue has grown past maxCaptureDepth, the oldest frames are
// discarded until the depth is back at maxCaptureDepth, incrementing
// DroppedFrames once per discard — never blocking the caller, which is the
// deliberate latency-over-completeness choice for live capture.
func (d *Device) ScheduleInputFrame(frame FrameContainer, dropFrames bool) {
	d.captureQ.push(frame)

	if !dropFrames {
		return
	}
	for d.captureQ.len() > maxCaptureDepth {
		if _, ok := d.captureQ.tryPop(); !ok {
			break
		}
		d.dropMu.Lock()
		d.dropped++
		d.dropMu.Unlock()
		d.log.Debug("dropping input frame", zap.String("device", d.name))
	}
}

// CaptureQueueDepth reports the current capture queue length, mainly for
// tests and diagnostics.
func (d *Device) CaptureQueueDepth() int {
	return d.captureQ.len()
}
