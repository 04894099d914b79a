package record

import (
	"bufio"
	"context"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxBufferSize = 1 << 24 // 16MB, initial scanner buffer
	defaultMaxTokenSize  = 1 << 26 // 64MB, hard limit, needs to be larger than the buffer size
)

// ProcessFunc transforms a single token, e.g. a batch of articles. A nil
// result is not written.
type ProcessFunc func([]byte) ([]byte, error)

// ProcessorOption allows configuration of the Processor
type ProcessorOption func(*Processor)

// WithWorkers sets the number of worker goroutines
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.numWorkers = n
		}
	}
}

// WithMaxTokenSize sets the maximum token size for the splitter
func WithMaxTokenSize(size int) ProcessorOption {
	return func(p *Processor) {
		if size > 0 {
			p.maxTokenSize = size
		}
	}
}

// WithMaxBufferSize sets the initial buffer size for the splitter
func WithMaxBufferSize(size int) ProcessorOption {
	return func(p *Processor) {
		if size > 0 {
			p.maxBufferSize = size
		}
	}
}

func WithSplitFunc(f bufio.SplitFunc) ProcessorOption {
	return func(p *Processor) {
		if f != nil {
			p.splitFunc = f
		}
	}
}

// Processor processes tokens of a stream in parallel, delineated by a
// bufio.SplitFunc. Results are written in input order.
type Processor struct {
	splitFunc     bufio.SplitFunc
	processFunc   ProcessFunc
	numWorkers    int
	maxBufferSize int
	maxTokenSize  int
}

// NewProcessor creates a new Processor that by default splits on lines.
func NewProcessor(processFunc ProcessFunc, opts ...ProcessorOption) *Processor {
	p := &Processor{
		splitFunc:     bufio.ScanLines,
		processFunc:   processFunc,
		numWorkers:    runtime.NumCPU(),
		maxBufferSize: defaultMaxBufferSize,
		maxTokenSize:  defaultMaxTokenSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxTokenSize < p.maxBufferSize {
		p.maxTokenSize = p.maxBufferSize
	}
	return p
}

// item is a token or a result, tagged with its position in the input.
type item struct {
	seq  int
	data []byte
}

// Process reads from r, processes tokens in parallel and writes results to w.
// The first error stops processing; output written up to that point is
// flushed.
func (p *Processor) Process(ctx context.Context, r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()
	scanner := bufio.NewScanner(r)
	scanner.Split(p.splitFunc)
	scanner.Buffer(make([]byte, 0, p.maxBufferSize), p.maxTokenSize)
	var (
		workChan   = make(chan item, p.numWorkers*2)
		resultChan = make(chan item, p.numWorkers*2)
		wg         sync.WaitGroup
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(workChan)
		for seq := 0; scanner.Scan(); seq++ {
			token := scanner.Bytes()
			data := make([]byte, len(token))
			copy(data, token)
			select {
			case workChan <- item{seq: seq, data: data}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return scanner.Err()
	})
	for i := 0; i < p.numWorkers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for it := range workChan {
				result, err := p.processFunc(it.data)
				if err != nil {
					return err
				}
				select {
				case resultChan <- item{seq: it.seq, data: result}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(resultChan)
		return nil
	})
	g.Go(func() error {
		var (
			pending = make(map[int][]byte)
			next    int
		)
		for it := range resultChan {
			pending[it.seq] = it.data
			for {
				data, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if data == nil {
					continue
				}
				if _, err := bw.Write(data); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return g.Wait()
}
