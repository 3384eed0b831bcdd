package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const previewMaxLen = 100

// Job is one outbound notification waiting for a worker. Jobs are
// ephemeral: a dropped job is logged and gone.
type Job struct {
	ID         string
	Recipient  string
	Body       string
	EnqueuedAt time.Time
}

// Dispatcher pushes outbound notifications through the channel on a small
// worker pool fed by a bounded queue. Dispatch never blocks and never
// fails the caller: a full queue sheds the job, and every rate denial or
// channel failure stays inside the worker.
type Dispatcher struct {
	jobs    chan Job
	channel Channel
	limiter *RateWindowTracker
	workers int
	logger  *zap.Logger

	wg sync.WaitGroup

	// mu orders Dispatch's enqueue against Stop's close of the queue so a
	// late Dispatch can never send on a closed channel.
	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a dispatcher. Call Start to spin up the workers
// and Stop to drain them at shutdown.
func NewDispatcher(channel Channel, limiter *RateWindowTracker, queueSize, workers int, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:    make(chan Job, queueSize),
		channel: channel,
		limiter: limiter,
		workers: workers,
		logger:  logger,
	}
}

// Start launches the worker pool
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.logger.Info("notification dispatcher started", zap.Int("workers", d.workers), zap.Int("queue_size", cap(d.jobs)))
}

// Stop closes the queue and waits for in-flight jobs to finish. Dispatch
// calls after Stop are dropped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

// Dispatch enqueues an outbound notification and returns immediately.
// When the queue is full the job is dropped and logged; the triggering
// request must never block here.
func (d *Dispatcher) Dispatch(recipient, body string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return
	}

	job := Job{
		ID:         uuid.NewString(),
		Recipient:  recipient,
		Body:       body,
		EnqueuedAt: time.Now(),
	}

	select {
	case d.jobs <- job:
	default:
		d.logger.Warn("notification queue full, dropping job",
			zap.String("job_id", job.ID),
			zap.String("recipient", recipient))
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.process(job)
	}
}

func (d *Dispatcher) process(job Job) {
	if !d.limiter.Reserve(job.Recipient) {
		d.logger.Warn("rate limit exceeded, dropping notification",
			zap.String("job_id", job.ID),
			zap.String("recipient", job.Recipient))
		return
	}

	if !d.channel.Send(job.Recipient, job.Body) {
		d.logger.Warn("outbound notification not delivered",
			zap.String("job_id", job.ID),
			zap.String("recipient", job.Recipient),
			zap.Duration("queued_for", time.Since(job.EnqueuedAt)))
	}
}

// NotifyNewPost notifies a follower that an author published a new post
func (d *Dispatcher) NotifyNewPost(authorName, postTitle, to string) {
	body := fmt.Sprintf("New blog post by %s:\n\n'%s'\n\nCheck it out on the BloggingApp!", authorName, postTitle)
	d.Dispatch(to, body)
}

// NotifyNewComment notifies a post author about a new comment on their post
func (d *Dispatcher) NotifyNewComment(commenterName, postTitle, commentPreview, to string) {
	body := fmt.Sprintf("New comment on your post '%s' by %s:\n\n%s\n\nReply on BloggingApp!",
		postTitle, commenterName, truncatePreview(commentPreview))
	d.Dispatch(to, body)
}

// NotifyMention notifies a user that they were mentioned in a comment
func (d *Dispatcher) NotifyMention(mentionedBy, postTitle, to string) {
	body := fmt.Sprintf("You were mentioned by %s in '%s'\n\nSee what they said on BloggingApp!", mentionedBy, postTitle)
	d.Dispatch(to, body)
}

// truncatePreview bounds the preview to previewMaxLen characters, not
// bytes, so multibyte text is never cut mid-rune.
func truncatePreview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewMaxLen {
		return s
	}
	return string(runes[:previewMaxLen]) + "..."
}
