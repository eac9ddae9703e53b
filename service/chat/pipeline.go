package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"FitProject/logger"
	"FitProject/service/kafka"
	"FitProject/tools/errs"
	"FitProject/tools/safe"
)

// Pipeline serializes persist-then-broadcast per conversation: one lazy
// worker goroutine per conversation id, torn down when its queue
// drains. Sends to different conversations never block each other; all
// viewers of one conversation observe a single order. No lock is held
// across the store await — the worker owns the ordering by itself.

type sendJob struct {
	conn           *Client
	conversationID string
	body           string
}

type convQueue struct {
	jobs    chan sendJob
	pending int // guarded by Pipeline.mu
}

type Pipeline struct {
	s      *Server
	mu     sync.Mutex // guards queues and pending counts
	queues map[string]*convQueue

	storeTimeout time.Duration
	queueSize    int
}

func NewPipeline(s *Server) *Pipeline {
	return &Pipeline{
		s:            s,
		queues:       make(map[string]*convQueue),
		storeTimeout: 5 * time.Second,
		queueSize:    256,
	}
}

// Submit hands the job to the conversation's worker, spawning it on
// first use. The queue is bounded; an overloaded conversation pushes
// back with a storage-busy error instead of stalling the read loop.
func (p *Pipeline) Submit(job sendJob) {
	p.mu.Lock()
	q, ok := p.queues[job.conversationID]
	if !ok {
		q = &convQueue{jobs: make(chan sendJob, p.queueSize)}
		p.queues[job.conversationID] = q
		safe.Go(func() { p.run(job.conversationID, q) })
	}
	if q.pending >= p.queueSize {
		p.mu.Unlock()
		p.s.sendErrorTo(job.conn, job.conversationID,
			errs.ErrStorage.WrapMsg("conversation queue full"))
		return
	}
	q.pending++
	p.mu.Unlock()
	q.jobs <- job
}

func (p *Pipeline) run(conversationID string, q *convQueue) {
	for {
		job := <-q.jobs
		p.process(job)

		p.mu.Lock()
		q.pending--
		if q.pending == 0 {
			delete(p.queues, conversationID)
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
	}
}

// process is the message pipeline proper: validate against the current
// room, persist, then broadcast the canonical message. Any failure is
// reported to the sender only; a message that failed to persist is
// never broadcast.
func (p *Pipeline) process(job sendJob) {
	s := p.s

	// the sender must be viewing the conversation it targets
	room, ok := s.conns.CurrentRoom(job.conn.ConnID)
	if !ok || room != job.conversationID {
		s.sendErrorTo(job.conn, job.conversationID,
			errs.ErrArgs.WrapMsg("not joined to conversation", "conversation", job.conversationID))
		return
	}
	if job.body == "" {
		s.sendErrorTo(job.conn, job.conversationID, errs.ErrArgs.WrapMsg("empty body"))
		return
	}

	// the only blocking step; the append filter refuses non-participants
	ctx, cancel := context.WithTimeout(context.Background(), p.storeTimeout)
	msg, err := s.store.AppendMessage(ctx, job.conversationID, job.conn.UserID, job.body)
	cancel()
	if err != nil {
		logger.Warnf("[pipeline] append failed conv=%s user=%s err=%v",
			job.conversationID, job.conn.UserID, err)
		s.sendErrorTo(job.conn, job.conversationID, err)
		return
	}

	// persisted: fan out in this worker so the room sees one order
	s.Broadcast(job.conversationID, BuildNewMessage(msg))
	p.publishStored(msg)
	s.NotifyParticipants(msg)
}

// publishStored feeds the stored-message event stream; keyed by
// conversation so one conversation maps to one partition.
func (p *Pipeline) publishStored(msg *StoredMessage) {
	if p.s.msgHandler == nil {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := p.s.msgHandler(kafka.TopicMessageStored, msg.ConversationID, b); err != nil {
		logger.Warnf("[pipeline] event stream publish failed conv=%s err=%v", msg.ConversationID, err)
	}
}
