package chatsync

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"GlowCare/models"
)

// Source is the server-side message contract the poller syncs against.
type Source interface {
	// FetchSince returns all messages of the conversation with
	// id > afterID, ascending. Calling it twice with the same cursor
	// must yield the same result.
	FetchSince(ctx context.Context, conversationID, afterID uint) ([]models.Message, error)
	// MarkRead marks the opposite role's messages read on behalf of
	// readerRole.
	MarkRead(ctx context.Context, conversationID uint, readerRole string) error
}

// Poller keeps a local copy of one conversation's append-only log in
// sync via periodic cursor fetches. The cursor is the highest message
// id a fetch has returned so far, and merging is an id-set difference:
// a message already held is dropped, never appended twice, no matter
// how fetches overlap with local echoes or redundant tabs.
//
// One poller belongs to one open conversation view. Switching
// conversations means Stop() on the old poller and Start() on a fresh
// one, which resets the cursor to zero.
type Poller struct {
	src      Source
	convID   uint
	role     string
	interval time.Duration

	mu     sync.Mutex
	msgs   []models.Message
	held   map[uint]struct{}
	cursor uint
	onNew  func([]models.Message)

	sf     singleflight.Group
	wg     sync.WaitGroup
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller builds a poller for the given conversation. readerRole is
// the role of the principal doing the polling ("customer" or
// "expert") and drives mark-as-read.
func NewPoller(src Source, conversationID uint, readerRole string, interval time.Duration) *Poller {
	return &Poller{
		src:      src,
		convID:   conversationID,
		role:     readerRole,
		interval: interval,
		held:     map[uint]struct{}{},
	}
}

// OnNewMessages registers a callback invoked with each batch of newly
// merged messages, in id order. Set before Start.
func (p *Poller) OnNewMessages(fn func([]models.Message)) {
	p.onNew = fn
}

// Start performs the initial full fetch (cursor zero, replacing any
// previous buffer) and then polls until Stop or ctx cancellation. The
// initial fetch error is returned so the caller can surface it; later
// tick failures are logged and retried on the next tick.
func (p *Poller) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	p.mu.Lock()
	p.msgs = nil
	p.held = map[uint]struct{}{}
	p.cursor = 0
	p.mu.Unlock()

	if err := p.poll(runCtx); err != nil {
		cancel()
		close(p.done)
		p.cancel = nil
		return err
	}

	go p.loop(runCtx)
	return nil
}

// Stop cancels the poll loop and waits for it and any in-flight fetch
// to exit. Safe to call after a successful Start; a no-op otherwise.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.wg.Wait()
	p.cancel = nil
}

// Messages returns a copy of the local buffer in id order.
func (p *Poller) Messages() []models.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Message, len(p.msgs))
	copy(out, p.msgs)
	return out
}

// Cursor returns the highest message id a fetch has returned.
func (p *Poller) Cursor() uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Append folds a message the user just sent into the buffer for
// immediate display. It goes through the same id-set merge, so the
// next fetch returning the same message cannot duplicate it. The
// cursor is deliberately not advanced: a message the other party
// inserted just before ours may carry a lower id we have not fetched
// yet, and skipping the cursor past it would drop it forever.
func (p *Poller) Append(msg models.Message) {
	if fresh := p.merge([]models.Message{msg}); len(fresh) > 0 && p.onNew != nil {
		p.onNew(fresh)
	}
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// dispatch without blocking the loop, so ticks keep firing
			// during a slow fetch and coalesce into it
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				if err := p.poll(ctx); err != nil && ctx.Err() == nil {
					log.Printf("[chatsync] poll conversation %d: %v", p.convID, err)
				}
			}()
		}
	}
}

// poll is single-flight: a tick firing while a slow fetch is still in
// the air joins that fetch instead of stacking a second request.
func (p *Poller) poll(ctx context.Context) error {
	_, err, _ := p.sf.Do("poll", func() (any, error) {
		p.mu.Lock()
		cursor := p.cursor
		p.mu.Unlock()

		batch, err := p.src.FetchSince(ctx, p.convID, cursor)
		if err != nil {
			return nil, err
		}

		fresh := p.merge(batch)
		if len(batch) > 0 {
			p.advance(batch[len(batch)-1].ID)
		}
		if len(fresh) == 0 {
			return nil, nil
		}
		if p.onNew != nil {
			p.onNew(fresh)
		}
		if err := p.src.MarkRead(ctx, p.convID, p.role); err != nil {
			log.Printf("[chatsync] mark read conversation %d: %v", p.convID, err)
		}
		return nil, nil
	})
	return err
}

// merge adds messages not already held and keeps the buffer id-sorted.
// Returns the subset that was actually new.
func (p *Poller) merge(batch []models.Message) []models.Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	var fresh []models.Message
	for _, m := range batch {
		if _, ok := p.held[m.ID]; ok {
			continue
		}
		p.held[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}
	if len(fresh) == 0 {
		return nil
	}
	p.msgs = append(p.msgs, fresh...)
	sort.SliceStable(p.msgs, func(i, j int) bool { return p.msgs[i].ID < p.msgs[j].ID })
	return fresh
}

func (p *Poller) advance(id uint) {
	p.mu.Lock()
	if id > p.cursor {
		p.cursor = id
	}
	p.mu.Unlock()
}
