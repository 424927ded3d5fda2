package adapter

import (
	"io"
	"sync"
)

// progressReader counts the bytes read through it and reports the running
// total. Reported values never decrease.
type progressReader struct {
	r  io.Reader
	fn ProgressFunc

	mu    sync.Mutex
	read  int64
	total int64
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.read += int64(n)
		if p.read > p.total {
			p.total = p.read
		}
		read, total := p.read, p.total
		p.mu.Unlock()
		p.report(read, total)
	}
	return n, err
}

// finish reports completion once the server accepted the upload. The total
// becomes the number of bytes actually sent.
func (p *progressReader) finish() {
	p.mu.Lock()
	p.total = p.read
	read := p.read
	p.mu.Unlock()
	p.report(read, read)
}

func (p *progressReader) report(read, total int64) {
	if p.fn != nil {
		p.fn(read, total)
	}
}
