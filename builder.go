// FILE: builder.go
package dlog

// Builder provides a fluent API for assembling an engine configuration.
type Builder struct {
	cfg *Config
}

// NewBuilder starts from the default configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// LogFile sets the file sink path.
func (b *Builder) LogFile(path string) *Builder {
	b.cfg.LogFile = path
	return b
}

// Owner sets the uid/gid applied to the log file on reopen.
func (b *Builder) Owner(uid, gid int) *Builder {
	b.cfg.LogUID = int64(uid)
	b.cfg.LogGID = int64(gid)
	return b
}

// MaxNew sets the producer backpressure bound.
func (b *Builder) MaxNew(n int) *Builder {
	b.cfg.MaxNew = int64(n)
	return b
}

// MaxRecent sets the recent ring bound.
func (b *Builder) MaxRecent(n int) *Builder {
	b.cfg.MaxRecent = int64(n)
	return b
}

// SyslogLevel sets the syslog (log, crash) threshold pair.
func (b *Builder) SyslogLevel(log, crash int) *Builder {
	b.cfg.SyslogLog = int64(log)
	b.cfg.SyslogCrash = int64(crash)
	return b
}

// StderrLevel sets the stderr (log, crash) threshold pair.
func (b *Builder) StderrLevel(log, crash int) *Builder {
	b.cfg.StderrLog = int64(log)
	b.cfg.StderrCrash = int64(crash)
	return b
}

// GraylogLevel sets the graylog (log, crash) threshold pair.
func (b *Builder) GraylogLevel(log, crash int) *Builder {
	b.cfg.GraylogLog = int64(log)
	b.cfg.GraylogCrash = int64(crash)
	return b
}

// StderrPrefix sets the prefix for stderr lines.
func (b *Builder) StderrPrefix(prefix string) *Builder {
	b.cfg.StderrPrefix = prefix
	return b
}

// Graylog enables the structured remote sink at host:port.
func (b *Builder) Graylog(host string, port int) *Builder {
	b.cfg.EnableGraylog = true
	b.cfg.GraylogHost = host
	b.cfg.GraylogPort = int64(port)
	return b
}

// CoarseTimestamps switches the clock to coarse stamps.
func (b *Builder) CoarseTimestamps(coarse bool) *Builder {
	b.cfg.CoarseTimestamps = coarse
	return b
}

// FlushOnExit registers the engine with the at-exit facility on apply.
func (b *Builder) FlushOnExit(enable bool) *Builder {
	b.cfg.FlushOnExit = enable
	return b
}

// Build validates and returns the configuration.
func (b *Builder) Build() (*Config, error) {
	cfg := b.cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
