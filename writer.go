// FILE: writer.go
package dlog

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MaxLogBuf is the capacity of the shared line buffer in front of the
// log file descriptor.
const MaxLogBuf = 65536

// bufferedWriter aggregates formatted lines into one write syscall per
// flush. It owns the error coalescing for the file sink: a distinct
// errno is reported once to stderr, identical repeats are suppressed.
// All access is serialized by the engine's flush mutex.
type bufferedWriter struct {
	fd      int
	path    string
	buf     []byte
	pos     int
	lastErr error
}

func newBufferedWriter() bufferedWriter {
	return bufferedWriter{
		fd:  -1,
		buf: make([]byte, MaxLogBuf),
	}
}

// append adds p to the buffer. If p would fill the buffer to capacity
// or beyond, the buffered bytes are flushed first. A p at least as
// large as the whole buffer is written directly without transiting the
// buffer.
func (w *bufferedWriter) append(p []byte) {
	if len(p) >= MaxLogBuf {
		w.flush()
		w.safeWrite(p)
		w.pos = 0
		return
	}
	if w.pos+len(p) >= MaxLogBuf {
		w.flush()
	}
	copy(w.buf[w.pos:], p)
	w.pos += len(p)
}

// flush writes the buffered bytes to the file descriptor and resets the
// position.
func (w *bufferedWriter) flush() {
	if w.pos > 0 {
		w.safeWrite(w.buf[:w.pos])
		w.pos = 0
	}
}

// safeWrite writes p to the fd with errno coalescing.
func (w *bufferedWriter) safeWrite(p []byte) {
	if w.fd < 0 {
		return
	}
	err := writeFull(w.fd, p)
	if err != w.lastErr {
		if err != nil {
			fmt.Fprintf(os.Stderr, "dlog: problem writing to %s: %v\n", w.path, err)
		}
		w.lastErr = err
	}
}

// close releases the fd if open.
func (w *bufferedWriter) close() {
	if w.fd >= 0 {
		_ = unix.Close(w.fd)
		w.fd = -1
	}
}

// writeFull writes all of p to fd, restarting on EINTR and continuing
// past short writes.
func writeFull(fd int, p []byte) error {
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
