// Package app mediates between the screens and the item store: which view
// is active, the confirmation gate before deletes, and the hand-off of
// exports to the clipboard.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/idilsaglam/quickcollect/internal/clipboard"
	"github.com/idilsaglam/quickcollect/internal/export"
	"github.com/idilsaglam/quickcollect/internal/model"
	"github.com/idilsaglam/quickcollect/internal/store"
)

// View is the active screen.
type View int

const (
	Collecting View = iota
	Reviewing
)

func (v View) String() string {
	switch v {
	case Collecting:
		return "collecting"
	case Reviewing:
		return "reviewing"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

const DefaultNoticeTTL = 2 * time.Second

var (
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
	ErrUnknownItem     = errors.New("unknown item")
	ErrNothingToExport = errors.New("nothing to export")
)

// Notice is a transient message for the presentation layer, which shows it
// and dismisses it after TTL.
type Notice struct {
	Text string
	TTL  time.Duration
}

// Enhancer rewrites descriptions; see package enhance.
type Enhancer interface {
	Optimize(ctx context.Context, title, description string) string
}

type Options struct {
	Exporter  export.Exporter
	Clipboard clipboard.Writer
	NoticeTTL time.Duration
	Now       func() time.Time
	Logger    *zap.Logger
}

type Controller struct {
	items    *store.Items
	enhancer Enhancer
	exporter export.Exporter
	clip     clipboard.Writer
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger

	view          View
	pendingDelete string
	ticket        uint64
}

func New(items *store.Items, enhancer Enhancer, opt Options) *Controller {
	c := &Controller{
		items:    items,
		enhancer: enhancer,
		exporter: opt.Exporter,
		clip:     opt.Clipboard,
		ttl:      opt.NoticeTTL,
		now:      opt.Now,
		log:      opt.Logger,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultNoticeTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.clip == nil {
		c.clip = clipboard.System{}
	}
	c.log = c.log.Named("app")
	return c
}

func (c *Controller) View() View { return c.view }

// Show switches to v. Transitions only happen on explicit user action or a
// successful save.
func (c *Controller) Show(v View) { c.view = v }

func (c *Controller) Toggle() {
	if c.view == Collecting {
		c.view = Reviewing
	} else {
		c.view = Collecting
	}
}

func (c *Controller) Items() []model.Item { return c.items.List() }

// Save creates an item from the form and stores it. On success the view
// moves to Reviewing and a notice is returned. Validation failures change
// nothing. A persistence failure still counts as saved; the error is
// returned alongside the notice.
func (c *Controller) Save(ctx context.Context, d model.Draft) (Notice, error) {
	it, err := model.NewItem(d, c.now())
	if err != nil {
		return Notice{}, err
	}
	err = c.items.Add(ctx, it)
	if err != nil && !errors.Is(err, store.ErrNotPersisted) {
		return Notice{}, err
	}
	// A save invalidates any optimization still in flight for the old form.
	c.ticket++
	c.view = Reviewing
	c.log.Info("item collected", zap.String("id", it.ID))
	return Notice{Text: "Item collected!", TTL: c.ttl}, err
}

// RequestDelete arms the confirmation gate for id.
func (c *Controller) RequestDelete(id string) (model.Item, error) {
	it, ok := c.items.Get(id)
	if !ok {
		return model.Item{}, fmt.Errorf("%s: %w", id, ErrUnknownItem)
	}
	c.pendingDelete = id
	return it, nil
}

// PendingDelete reports the id awaiting confirmation, if any.
func (c *Controller) PendingDelete() (string, bool) {
	return c.pendingDelete, c.pendingDelete != ""
}

func (c *Controller) CancelDelete() { c.pendingDelete = "" }

// ConfirmDelete deletes the item armed by RequestDelete.
func (c *Controller) ConfirmDelete(ctx context.Context) (bool, error) {
	id := c.pendingDelete
	if id == "" {
		return false, ErrNoPendingDelete
	}
	c.pendingDelete = ""
	removed, err := c.items.Delete(ctx, id)
	if removed {
		c.log.Info("item deleted", zap.String("id", id))
	}
	return removed, err
}

// Ticket identifies one optimization request. Only the most recent ticket's
// result is applied; earlier responses arriving late are dropped.
type Ticket uint64

func (c *Controller) BeginOptimize() Ticket {
	c.ticket++
	return Ticket(c.ticket)
}

// Optimize runs the enhancer. It does not touch controller state, so it may
// run off the event loop; hand the result to Accept.
func (c *Controller) Optimize(ctx context.Context, title, description string) string {
	if c.enhancer == nil {
		return description
	}
	return c.enhancer.Optimize(ctx, title, description)
}

// Accept reports whether a result for t is still current.
func (c *Controller) Accept(t Ticket) bool {
	ok := uint64(t) == c.ticket
	if !ok {
		c.log.Debug("dropping stale optimization", zap.Uint64("ticket", uint64(t)), zap.Uint64("current", c.ticket))
	}
	return ok
}

// ResetForm invalidates outstanding optimization tickets.
func (c *Controller) ResetForm() { c.ticket++ }

// ExportAll copies every item as a table. An empty collection leaves the
// clipboard untouched and returns ErrNothingToExport.
func (c *Controller) ExportAll() (int, error) {
	items := c.items.List()
	if len(items) == 0 {
		return 0, ErrNothingToExport
	}
	if err := c.clip.Write(c.exporter.All(items)); err != nil {
		return 0, err
	}
	return len(items), nil
}

// ExportOne copies a single row.
func (c *Controller) ExportOne(id string) error {
	it, ok := c.items.Get(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownItem)
	}
	return c.clip.Write(c.exporter.One(it))
}
