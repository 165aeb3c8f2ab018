// FILE: syslog.go
package dlog

import "log/syslog"

// syslogWriter lazily opens the system logger with priority
// LOG_USER|LOG_INFO. Messages are sent without a trailing newline.
// Open and write errors are unobservable by design, the sink is
// best-effort. Access is serialized by the engine's flush mutex.
type syslogWriter struct {
	w      *syslog.Writer
	failed bool
}

func (s *syslogWriter) write(line []byte) {
	if s.w == nil {
		if s.failed {
			return
		}
		w, err := syslog.New(syslog.LOG_USER|syslog.LOG_INFO, "dlog")
		if err != nil {
			s.failed = true
			return
		}
		s.w = w
	}
	_, _ = s.w.Write(line)
}
