package catalog

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Event names published through a Notifier.
const (
	EventNotice          = "catalog:notice"
	EventItemAdded       = "catalog:itemAdded"
	EventCategoryChanged = "catalog:categoryChanged"
)

// Notice texts shown to the user after an add attempt.
const (
	MessageAdded         = "Материал добавлен!"
	MessageTitleRequired = "Укажите название"
)

// NoticeLevel is the severity of a toast notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Notifier receives store events. Implementations must not block.
type Notifier interface {
	Notify(event string, payload any)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(event string, payload any)

func (f NotifierFunc) Notify(event string, payload any) {
	f(event, payload)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, any) {}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the receiver for notices and catalog events.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides the time source used for item ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store owns one catalog: its items, the active filter, the draft and
// the add-dialog toggle. All mutation goes through its methods.
type Store struct {
	mu         sync.RWMutex
	items      []Item
	ids        map[string]struct{}
	lastID     int64
	filter     Filter
	draft      Draft
	dialogOpen bool
	flash      mo.Option[Notice]

	notifier Notifier
	now      func() time.Time
}

// NewStore creates a store holding seed, newest first.
func NewStore(seed []Item, opts ...Option) *Store {
	s := &Store{
		items:    make([]Item, len(seed)),
		ids:      make(map[string]struct{}, len(seed)),
		filter:   AllCategories(),
		draft:    NewDraft(),
		notifier: nopNotifier{},
		now:      time.Now,
	}
	copy(s.items, seed)
	for _, item := range seed {
		s.ids[item.ID] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add commits d as a new item at the head of the catalog.
// A draft without a non-blank title is rejected with ErrTitleRequired
// and leaves the store untouched.
func (s *Store) Add(d Draft) (Item, error) {
	s.mu.Lock()
	item, err := s.commitLocked(d)
	s.mu.Unlock()

	s.announce(item, err)
	return item, err
}

// Submit commits the store's current draft. On failure the draft is kept
// so the user can correct it.
func (s *Store) Submit() (Item, error) {
	s.mu.Lock()
	item, err := s.commitLocked(s.draft)
	s.mu.Unlock()

	s.announce(item, err)
	return item, err
}

func (s *Store) commitLocked(d Draft) (Item, error) {
	title, ok := d.Title.Get()
	if !ok || strings.TrimSpace(title) == "" {
		return Item{}, ErrTitleRequired
	}

	item := Item{
		ID:          s.nextIDLocked(),
		Category:    d.Category,
		Title:       title,
		Description: d.Description,
		Thumbnail:   d.Thumbnail,
		Body:        NewBody(d.Type, d.URL, d.Content),
	}

	s.items = append([]Item{item}, s.items...)
	s.ids[item.ID] = struct{}{}
	s.draft = NewDraft()
	s.dialogOpen = false
	return item, nil
}

// nextIDLocked derives an id from the clock, bumped past anything issued.
func (s *Store) nextIDLocked() string {
	n := s.now().UnixMilli()
	if n <= s.lastID {
		n = s.lastID + 1
	}
	for {
		id := strconv.FormatInt(n, 10)
		if _, taken := s.ids[id]; !taken {
			s.lastID = n
			return id
		}
		n++
	}
}

func (s *Store) announce(item Item, err error) {
	if err != nil {
		s.notifier.Notify(EventNotice, Notice{Level: NoticeError, Message: MessageTitleRequired})
		return
	}
	s.notifier.Notify(EventItemAdded, item)
	s.notifier.Notify(EventNotice, Notice{Level: NoticeSuccess, Message: MessageAdded})
}

// SetCategory replaces the active filter.
func (s *Store) SetCategory(f Filter) {
	s.mu.Lock()
	changed := s.filter != f
	s.filter = f
	s.mu.Unlock()

	if changed {
		s.notifier.Notify(EventCategoryChanged, f)
	}
}

// ActiveCategory returns the current filter.
func (s *Store) ActiveCategory() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// FilteredView returns the items passing the active filter, newest first.
// The returned slice is a copy.
func (s *Store) FilteredView() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

func (s *Store) viewLocked() []Item {
	return lo.Filter(s.items, func(item Item, _ int) bool {
		return s.filter.Matches(item)
	})
}

// Items returns every item, newest first.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of items in the catalog.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Draft returns the draft being composed.
func (s *Store) Draft() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// UpdateDraft applies field edits to the draft and returns the result.
func (s *Store) UpdateDraft(p DraftPatch) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = p.Apply(s.draft)
	return s.draft
}

// ResetDraft discards the draft.
func (s *Store) ResetDraft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = NewDraft()
	return s.draft
}

// OpenDialog shows the add dialog; the current draft is kept.
func (s *Store) OpenDialog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogOpen = true
}

// CloseDialog dismisses the add dialog and discards the draft.
func (s *Store) CloseDialog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogOpen = false
	s.draft = NewDraft()
}

// DialogOpen reports whether the add dialog is showing.
func (s *Store) DialogOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dialogOpen
}

// SetFlash keeps n for the next page render.
func (s *Store) SetFlash(n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = mo.Some(n)
}

// TakeFlash returns the pending page notice and clears it.
func (s *Store) TakeFlash() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.flash.Get()
	s.flash = mo.None[Notice]()
	return n, ok
}

// Snapshot reads the whole store state at once.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return Snapshot{
		Items:      items,
		View:       s.viewLocked(),
		Filter:     s.filter,
		Draft:      s.draft,
		DialogOpen: s.dialogOpen,
	}
}
