package perf

import (
	"context"
	"time"

	"git.nextdev.network/nextdev/nextdev/src/jobs"
)

type RequestPerf struct {
	Route  string
	Path   string // the path actually matched
	Method string
	Start  time.Time
	End    time.Time
	Blocks []PerfBlock
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

// A handle to a started block, so nested blocks can be ended out of order.
type BlockHandle struct {
	perf *RequestPerf
	idx  int
}

func MakeNewRequestPerf(route string, method string, path string) *RequestPerf {
	return &RequestPerf{
		Start:  time.Now(),
		Route:  route,
		Path:   path,
		Method: method,
	}
}

func (rp *RequestPerf) EndRequest() {
	now := time.Now()
	for i := range rp.Blocks {
		if rp.Blocks[i].End.IsZero() {
			rp.Blocks[i].End = now
		}
	}
	rp.End = now
}

// Safe to call on a nil RequestPerf, for code paths that run outside a
// request (admin tools, background jobs); the returned handle is a no-op.
func (rp *RequestPerf) StartBlock(category, description string) *BlockHandle {
	if rp == nil {
		return nil
	}
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
	return &BlockHandle{perf: rp, idx: len(rp.Blocks) - 1}
}

func (b *BlockHandle) End() {
	if b == nil || b.perf == nil {
		return
	}
	block := &b.perf.Blocks[b.idx]
	if block.End.IsZero() {
		block.End = time.Now()
	}
}

func (rp *RequestPerf) MsFromStart(block *PerfBlock) float64 {
	return float64(block.Start.Sub(rp.Start).Nanoseconds()) / 1000 / 1000
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

type perfContextKeyType struct{}

var PerfContextKey = perfContextKeyType{}

// Pulls the current request's perf tracker out of a context, or nil if there
// isn't one. Safe to call with any context.
func ExtractPerf(ctx context.Context) *RequestPerf {
	ip := ctx.Value(PerfContextKey)
	if ip == nil {
		return nil
	}
	p, ok := ip.(*RequestPerf)
	if !ok {
		return nil
	}
	return p
}

type PerfStorage struct {
	AllRequests []RequestPerf
}

type PerfCollector struct {
	in          chan<- RequestPerf
	requestCopy chan<- (chan<- PerfStorage)
}

func RunPerfCollector() (*PerfCollector, *jobs.Job) {
	job := jobs.New("perf collector")
	in := make(chan RequestPerf)
	requestCopy := make(chan (chan<- PerfStorage))

	var storage PerfStorage

	go func() {
		defer job.Finish()

		for {
			select {
			case perf := <-in:
				storage.AllRequests = append(storage.AllRequests, perf)
			case resultChan := <-requestCopy:
				resultChan <- storage
			case <-job.Canceled():
				return
			}
		}
	}()

	return &PerfCollector{
		in:          in,
		requestCopy: requestCopy,
	}, job
}

func (perfCollector *PerfCollector) SubmitRun(run *RequestPerf) {
	perfCollector.in <- *run
}

func (perfCollector *PerfCollector) GetPerfCopy() *PerfStorage {
	resultChan := make(chan PerfStorage)
	perfCollector.requestCopy <- resultChan
	perfStorageCopy := <-resultChan
	return &perfStorageCopy
}
