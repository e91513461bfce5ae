package download

import "time"

// smoothing controls how much each new completion shifts the rate
// estimate. Lower values favor history.
const smoothing = 0.3

// etaEstimator tracks the completion rate of a segment run with an
// exponential moving average and projects the remaining time. It is
// recomputed on every completion; not safe for concurrent use.
type etaEstimator struct {
	total   int
	done    int
	started time.Time
	last    time.Time
	perItem time.Duration
	now     func() time.Time
}

func newETAEstimator(total int) *etaEstimator {
	e := &etaEstimator{total: total, now: time.Now}
	e.started = e.now()
	e.last = e.started
	return e
}

// Complete records one attempted segment and returns the new remaining
// estimate.
func (e *etaEstimator) Complete() time.Duration {
	now := e.now()
	delta := now.Sub(e.last)
	e.last = now
	e.done++

	if e.perItem == 0 {
		e.perItem = delta
	} else {
		e.perItem = time.Duration(float64(delta)*smoothing + float64(e.perItem)*(1-smoothing))
	}
	return e.Remaining()
}

// Remaining projects the time left at the current smoothed rate.
func (e *etaEstimator) Remaining() time.Duration {
	left := e.total - e.done
	if left <= 0 {
		return 0
	}
	return time.Duration(left) * e.perItem
}

// Elapsed returns the wall time since the run started.
func (e *etaEstimator) Elapsed() time.Duration {
	return e.now().Sub(e.started)
}
