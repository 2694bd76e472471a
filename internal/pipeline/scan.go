package pipeline

import (
	"os"
	"runtime"
	"sync"

	"github.com/qrferry/qrferry/internal/cellcodec"
)

// ScanFailure records one image that yielded no usable buffer.
type ScanFailure struct {
	Path string
	Err  error
}

type scanTask struct {
	index int
	path  string
}

// ScanFiles reads and scans many cell images concurrently and returns the
// recovered wire buffers in input order. Scanning is a pure per-image
// function, so images fan out across a bounded worker pool. Failed scans
// are collected, not fatal: reassembly tolerates the resulting gaps and
// Analyze reports them.
func (p *Pipeline) ScanFiles(codec cellcodec.Codec, paths []string, workers int) ([][]byte, []ScanFailure) {
	if workers < 1 {
		workers = runtime.NumCPU() / 2
		if workers < 1 {
			workers = 1
		}
	}

	buffers := make([][]byte, len(paths))
	taskChan := make(chan scanTask, workers*2)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []ScanFailure

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				data, err := os.ReadFile(task.path)
				if err == nil {
					var buf []byte
					buf, err = codec.Scan(data)
					if err == nil {
						buffers[task.index] = buf
						continue
					}
				}
				mu.Lock()
				failures = append(failures, ScanFailure{Path: task.path, Err: err})
				mu.Unlock()
				p.log.WithField("image", task.path).WithError(err).Warn("cell scan failed")
			}
		}()
	}

	for i, path := range paths {
		taskChan <- scanTask{index: i, path: path}
	}
	close(taskChan)
	wg.Wait()

	out := make([][]byte, 0, len(paths))
	for _, buf := range buffers {
		if buf != nil {
			out = append(out, buf)
		}
	}
	return out, failures
}
