package exiftool

import (
	"bytes"
	"io"
	"sync"
)

// spool drains a stream in the background so the child never blocks on a
// full pipe while the frame reader is still waiting on the other stream.
// Reads block until data arrives or the source fails.
type spool struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  bytes.Buffer
	err  error
}

func newSpool(src io.Reader) *spool {
	s := &spool{}
	s.cond = sync.NewCond(&s.mu)
	go s.fill(src)
	return s
}

func (s *spool) fill(src io.Reader) {
	chunk := make([]byte, 32*1024)
	for {
		n, err := src.Read(chunk)
		s.mu.Lock()
		s.buf.Write(chunk[:n])
		if err != nil {
			s.err = err
		}
		s.cond.Broadcast()
		s.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (s *spool) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.buf.Len() == 0 && s.err == nil {
		s.cond.Wait()
	}
	if s.buf.Len() > 0 {
		return s.buf.Read(p)
	}
	return 0, s.err
}
