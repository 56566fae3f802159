// Package tracer writes build step timings as Chrome trace-viewer
// events (chrome://tracing, or ui.perfetto.dev). Every compiler
// invocation becomes one complete event; imported event lists are
// packed onto as few lanes as their overlap allows.
package tracer

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rustmk/rustmk/ui/logger"
)

type Thread int

const MainThread = Thread(0)

type Tracer interface {
	Begin(name string, thread Thread)
	End(thread Thread)
	Complete(name string, thread Thread, begin, end uint64)

	ImportEvents(entries []Event)
	SetProcessName(name string)

	Close()
}

// Event is a finished duration measured in microseconds since the
// epoch, as used by ImportEvents.
type Event struct {
	Name  string
	Begin uint64
	End   uint64
}

type viewerEvent struct {
	Name  string      `json:"name,omitempty"`
	Phase string      `json:"ph"`
	Time  uint64      `json:"ts"`
	Dur   uint64      `json:"dur,omitempty"`
	Pid   uint64      `json:"pid"`
	Tid   uint64      `json:"tid"`
	Arg   interface{} `json:"args,omitempty"`
}

type pendingEvent struct {
	name  string
	begin uint64
}

type tracerImpl struct {
	lock sync.Mutex

	log  logger.Logger
	file *os.File

	firstEvent bool
	nesting    map[Thread][]pendingEvent
}

var _ Tracer = (*tracerImpl)(nil)

// New opens filename and returns a Tracer writing to it. Close must
// be called to finish the JSON array.
func New(log logger.Logger, filename string) (*tracerImpl, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	if _, err := f.WriteString("[ "); err != nil {
		f.Close()
		return nil, err
	}
	return &tracerImpl{
		log:        log,
		file:       f,
		firstEvent: true,
		nesting:    map[Thread][]pendingEvent{},
	}, nil
}

// writeEventLocked requires t.lock to be held.
func (t *tracerImpl) writeEventLocked(event *viewerEvent) {
	bytes, err := json.Marshal(event)
	if err != nil {
		t.log.Verboseln("Failed to marshal event:", err)
		return
	}
	if !t.firstEvent {
		t.file.WriteString(",\n")
	}
	t.firstEvent = false
	if _, err := t.file.Write(bytes); err != nil {
		t.log.Verboseln("Error writing trace:", err)
	}
}

func (t *tracerImpl) Begin(name string, thread Thread) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.nesting[thread] = append(t.nesting[thread], pendingEvent{name, nowMicros()})
}

func (t *tracerImpl) End(thread Thread) {
	t.lock.Lock()
	defer t.lock.Unlock()

	stack := t.nesting[thread]
	if len(stack) == 0 {
		t.log.Verboseln("tracer: End without matching Begin")
		return
	}
	last := stack[len(stack)-1]
	t.nesting[thread] = stack[:len(stack)-1]

	end := nowMicros()
	t.writeEventLocked(&viewerEvent{
		Name:  last.name,
		Phase: "X",
		Time:  last.begin,
		Dur:   end - last.begin,
		Pid:   0,
		Tid:   uint64(thread),
	})
}

func (t *tracerImpl) Complete(name string, thread Thread, begin, end uint64) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.writeEventLocked(&viewerEvent{
		Name:  name,
		Phase: "X",
		Time:  begin,
		Dur:   end - begin,
		Pid:   0,
		Tid:   uint64(thread),
	})
}

// ImportEvents writes a list of finished events, packing them onto
// the smallest set of lanes that keeps overlapping events apart.
func (t *tracerImpl) ImportEvents(entries []Event) {
	t.lock.Lock()
	defer t.lock.Unlock()

	sorted := append([]Event(nil), entries...)
	sortEvents(sorted)

	cpus := []uint64{}
	for _, entry := range sorted {
		tid := -1
		for cpu, endTime := range cpus {
			if endTime <= entry.Begin {
				tid = cpu
				cpus[cpu] = entry.End
				break
			}
		}
		if tid == -1 {
			tid = len(cpus)
			cpus = append(cpus, entry.End)
		}

		t.writeEventLocked(&viewerEvent{
			Name:  entry.Name,
			Phase: "X",
			Time:  entry.Begin,
			Dur:   entry.End - entry.Begin,
			Pid:   1,
			Tid:   uint64(tid),
		})
	}
}

// SetProcessName labels the build's process lane in the viewer.
func (t *tracerImpl) SetProcessName(name string) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.writeEventLocked(&viewerEvent{
		Name:  "process_name",
		Phase: "M",
		Time:  nowMicros(),
		Pid:   0,
		Tid:   uint64(MainThread),
		Arg:   map[string]string{"name": name},
	})
}

func (t *tracerImpl) Close() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.file == nil {
		return
	}
	t.file.WriteString("]\n")
	if err := t.file.Close(); err != nil {
		t.log.Verboseln("Error closing trace:", err)
	}
	t.file = nil
}

func nowMicros() uint64 {
	return uint64(time.Now().UnixNano()) / 1000
}
