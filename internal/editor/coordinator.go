package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// State identifies the save-lifecycle phase shown to the UI.
type State int

const (
	StateIdle State = iota
	StateUnsaved
	StateSaving
	StateSaved
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUnsaved:
		return "unsaved"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Field names addressable by Edit.
const (
	FieldTitle   = "title"
	FieldSlug    = "slug"
	FieldExcerpt = "excerpt"
	FieldContent = "content"
	FieldStatus  = "status"
)

// DefaultAutosaveDelay is the trailing-edge debounce window for autosaves.
const DefaultAutosaveDelay = time.Second

// Draft is the client-local copy of a post's editable fields. It is never
// persisted directly; dirtiness is a field-by-field comparison against the
// last save the server confirmed.
type Draft struct {
	Title   string
	Slug    string
	Excerpt string
	Content string
	Status  string
}

// Snapshot is an immutable view of coordinator state for the UI.
type Snapshot struct {
	State   State
	Dirty   bool
	PostID  uint
	SavedAt time.Time
	Err     *SaveError
}

// Hooks receive coordinator signals. All hooks are optional and are invoked
// without the coordinator lock held.
type Hooks struct {
	// OnState fires after every state transition.
	OnState func(Snapshot)
	// OnPostID fires exactly once, when the first save of a brand-new post
	// surfaces the store-assigned identity.
	OnPostID func(uint)
	// OnAuthError fires on credential failures, even when the failed save
	// itself was superseded and discarded as stale.
	OnAuthError func()
}

// Config parameterizes a Coordinator.
type Config struct {
	// PostID is zero for a post that has never been saved.
	PostID uint
	// Initial seeds both the draft and the last-saved snapshot.
	Initial Draft
	// AutosaveDelay defaults to DefaultAutosaveDelay when zero.
	AutosaveDelay time.Duration
	Hooks         Hooks
}

// Coordinator turns a stream of field edits into a minimal, correctly
// ordered sequence of persisted writes. It owns the draft, debounces
// autosaves, serializes saves into at most one in flight plus one pending,
// and fences completions by a monotonic sequence number so an earlier, slower
// request can never clobber state written by a later one.
type Coordinator struct {
	mu sync.Mutex

	client SaveClient
	hooks  Hooks
	delay  time.Duration

	postID    uint
	draft     Draft
	lastSaved Draft

	state   State
	savedAt time.Time
	saveErr *SaveError

	seq      uint64
	inFlight bool
	pending  bool

	debounce    *time.Timer
	debounceGen uint64
	closed      bool
}

// NewCoordinator creates a Coordinator around a save client.
func NewCoordinator(client SaveClient, cfg Config) *Coordinator {
	delay := cfg.AutosaveDelay
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Coordinator{
		client:    client,
		hooks:     cfg.Hooks,
		delay:     delay,
		postID:    cfg.PostID,
		draft:     cfg.Initial,
		lastSaved: cfg.Initial,
		state:     StateIdle,
	}
}

// Edit updates one draft field. When the draft now differs from the
// last-saved snapshot the coordinator enters unsaved and restarts the
// trailing-edge autosave debounce; the timer restarts on every edit and
// never fires on the leading edge.
func (c *Coordinator) Edit(field, value string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	switch field {
	case FieldTitle:
		c.draft.Title = value
	case FieldSlug:
		c.draft.Slug = value
	case FieldExcerpt:
		c.draft.Excerpt = value
	case FieldContent:
		c.draft.Content = value
	case FieldStatus:
		c.draft.Status = value
	default:
		c.mu.Unlock()
		return
	}

	if c.draft == c.lastSaved {
		// The edit reverted the draft to the confirmed state: nothing left
		// to save, so the queued autosave is dropped and the machine leaves
		// unsaved so the UI agrees with Dirty().
		c.stopDebounceLocked()
		if c.state == StateUnsaved || c.state == StateError {
			c.saveErr = nil
			if c.savedAt.IsZero() {
				c.state = StateIdle
			} else {
				c.state = StateSaved
			}
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.emit(snap)
		return
	}

	// Edits during an in-flight save keep the saving state; the machine
	// returns to unsaved only from saved or error.
	if c.state != StateSaving {
		c.state = StateUnsaved
	}
	c.restartDebounceLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// RequestSave is the single entry point for autosave and manual save. A
// clean draft is a no-op. While a save is in flight the request collapses
// into a single pending flag; once the in-flight save completes, exactly one
// follow-up save is issued if the draft is still dirty.
func (c *Coordinator) RequestSave(createVersion bool, note string) {
	c.mu.Lock()
	snap, changed := c.requestSaveLocked(createVersion, note)
	c.mu.Unlock()

	if changed {
		c.emit(snap)
	}
}

func (c *Coordinator) requestSaveLocked(createVersion bool, note string) (Snapshot, bool) {
	if c.closed || c.draft == c.lastSaved {
		return Snapshot{}, false
	}
	if c.inFlight {
		c.pending = true
		return Snapshot{}, false
	}
	c.dispatchLocked(createVersion, note)
	return c.snapshotLocked(), true
}

// ManualSave cancels any pending debounced autosave and saves immediately,
// checkpointing a version only when the post already has a persisted
// identity. A never-saved post has nothing to snapshot yet.
func (c *Coordinator) ManualSave() {
	c.mu.Lock()
	c.stopDebounceLocked()
	persisted := c.postID != 0
	c.mu.Unlock()

	c.RequestSave(persisted, "")
}

// RestoreFromVersion overwrites the draft with a snapshot's fields and marks
// it unsaved. The last-saved snapshot is deliberately not touched: restore
// loads, an explicit save commits.
func (c *Coordinator) RestoreFromVersion(fields Draft) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopDebounceLocked()
	c.draft = fields
	if c.state != StateSaving {
		c.state = StateUnsaved
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// Dirty reports whether the draft differs from the last-saved snapshot.
// Callers use it for cooperative leave protection.
func (c *Coordinator) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft != c.lastSaved
}

// Draft returns a copy of the current draft.
func (c *Coordinator) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// PostID returns the persisted identity, zero for a never-saved post.
func (c *Coordinator) PostID() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.postID
}

// Snapshot returns the current state for the UI.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close cancels the debounce timer and refuses further work. In-flight saves
// still run to completion; their results are discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.stopDebounceLocked()
	c.closed = true
	c.mu.Unlock()
}

func (c *Coordinator) restartDebounceLocked() {
	c.stopDebounceLocked()
	gen := c.debounceGen
	c.debounce = time.AfterFunc(c.delay, func() {
		c.autosave(gen)
	})
}

// stopDebounceLocked cancels the pending autosave. Timer.Stop alone is not
// enough: a callback that already fired and is waiting on the mutex would
// still run, so the generation bump invalidates it as well.
func (c *Coordinator) stopDebounceLocked() {
	c.debounceGen++
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
}

// autosave is the debounce timer callback. The generation check must happen
// under the same lock hold as the dispatch, otherwise a cancellation racing
// the fired timer could still let the save through.
func (c *Coordinator) autosave(gen uint64) {
	c.mu.Lock()
	if gen != c.debounceGen {
		c.mu.Unlock()
		return
	}
	snap, changed := c.requestSaveLocked(false, "")
	c.mu.Unlock()

	if changed {
		c.emit(snap)
	}
}

// dispatchLocked assigns the save its sequence number and sends it off.
func (c *Coordinator) dispatchLocked(createVersion bool, note string) {
	c.seq++
	seq := c.seq
	c.inFlight = true
	c.state = StateSaving

	sent := c.draft
	req := SaveRequest{
		ID:            c.postID,
		Title:         sent.Title,
		Slug:          sent.Slug,
		Excerpt:       sent.Excerpt,
		Content:       sent.Content,
		Status:        sent.Status,
		CreateVersion: createVersion,
		Note:          note,
	}

	go func() {
		resp, err := c.client.Save(context.Background(), req)
		c.complete(seq, sent, resp, err)
	}()
}

// complete reconciles one finished save against the latest dispatched one.
// Stale completions mutate nothing; a newer save already owns the state.
func (c *Coordinator) complete(seq uint64, sent Draft, resp *SaveResponse, err error) {
	var saveErr *SaveError
	if err != nil {
		saveErr = asSaveError(err)
	}

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		log.Debug().Uint64("seq", seq).Msg("discarding stale save response")
		// Credential failures are surfaced regardless of staleness so the
		// caller can re-authenticate.
		if saveErr != nil && saveErr.Kind == FailUnauthorized && c.hooks.OnAuthError != nil {
			c.hooks.OnAuthError()
		}
		return
	}

	c.inFlight = false

	if saveErr != nil {
		c.saveErr = saveErr
		c.state = StateError
		// No auto-retry: a queued follow-up would silently retry the
		// failed write, so the pending flag is dropped with it.
		c.pending = false
		snap := c.snapshotLocked()
		c.mu.Unlock()

		if saveErr.Kind == FailUnauthorized && c.hooks.OnAuthError != nil {
			c.hooks.OnAuthError()
		}
		c.emit(snap)
		return
	}

	var firstID uint
	if c.postID == 0 && resp != nil && resp.ID != 0 {
		c.postID = resp.ID
		firstID = resp.ID
	}

	// The confirmed snapshot is the exact draft that was sent, never a
	// re-read of the store.
	c.lastSaved = sent
	c.saveErr = nil
	c.savedAt = time.Now()
	c.state = StateSaved

	if c.pending {
		c.pending = false
		if c.draft != c.lastSaved {
			c.dispatchLocked(false, "")
		}
	}

	snap := c.snapshotLocked()
	c.mu.Unlock()

	if firstID != 0 && c.hooks.OnPostID != nil {
		c.hooks.OnPostID(firstID)
	}
	c.emit(snap)
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{
		State:   c.state,
		Dirty:   c.draft != c.lastSaved,
		PostID:  c.postID,
		SavedAt: c.savedAt,
		Err:     c.saveErr,
	}
}

func (c *Coordinator) emit(snap Snapshot) {
	if c.hooks.OnState != nil {
		c.hooks.OnState(snap)
	}
}

func asSaveError(err error) *SaveError {
	var saveErr *SaveError
	if errors.As(err, &saveErr) {
		return saveErr
	}
	return &SaveError{Kind: FailUnavailable, Message: err.Error()}
}
