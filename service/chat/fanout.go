package chat

import (
	"FitProject/tools/safe"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout delivers out-of-room notifications on a small worker pool so
// a participant with many idle connections never slows the room
// broadcast path.
type Fanout struct {
	jobs chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		safe.Go(func() {
			for job := range f.jobs {
				for _, c := range job.conns {
					if c.Closed() {
						continue
					}
					select {
					case c.Send <- job.payload:
					default:
						// slow client: notification skipped
					}
				}
			}
		})
	}
	return f
}

func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	select {
	case f.jobs <- fanoutJob{conns: conns, payload: payload}:
	default:
		// notification backlog full; these are best-effort
	}
}
