package platform

import "io"

// progressReader counts bytes as the media part streams out and reports
// integer percentage changes. Percentages never decrease and reach 100
// exactly once when the final byte is read.
type progressReader struct {
	src      io.Reader
	total    int64
	sent     int64
	lastPct  int
	callback func(int)
}

func newProgressReader(src io.Reader, total int64, callback func(int)) *progressReader {
	return &progressReader{src: src, total: total, lastPct: -1, callback: callback}
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		r.sent += int64(n)
		r.report()
	}
	return n, err
}

func (r *progressReader) report() {
	if r.callback == nil || r.total <= 0 {
		return
	}
	pct := int(r.sent * 100 / r.total)
	if pct > 100 {
		pct = 100
	}
	if pct > r.lastPct {
		r.lastPct = pct
		r.callback(pct)
	}
}
