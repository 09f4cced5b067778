package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes everything to all of its writers, like the service logs
// going both to the rotated file and to stdout.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer(nil), writers...),
	}
}

// Write reports len(p) as written as long as one of the writers took it all,
// errors of the failing ones are combined.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	delivered := false
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr == nil && written < len(p) {
			werr = io.ErrShortWrite
		}
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		delivered = true
	}
	if !delivered && len(cw.Writers) > 0 {
		return 0, err
	}
	return len(p), err
}
