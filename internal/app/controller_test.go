package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/idilsaglam/quickcollect/internal/clipboard"
	"github.com/idilsaglam/quickcollect/internal/export"
	"github.com/idilsaglam/quickcollect/internal/model"
	"github.com/idilsaglam/quickcollect/internal/store"
	"github.com/idilsaglam/quickcollect/internal/store/jsonstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubEnhancer struct{ out string }

func (s stubEnhancer) Optimize(_ context.Context, _, description string) string {
	if s.out == "" {
		return description
	}
	return s.out
}

func newController(t *testing.T, clip clipboard.Writer) (*Controller, *store.Items) {
	t.Helper()
	items := store.New(jsonstore.New(t.TempDir()), nil)
	items.Load(context.Background())
	c := New(items, stubEnhancer{out: "better"}, Options{
		Clipboard: clip,
		Now:       func() time.Time { return time.UnixMilli(42) },
	})
	return c, items
}

func TestSave_TransitionsAndNotice(t *testing.T) {
	c, items := newController(t, nil)
	assert.Equal(t, Collecting, c.View())

	n, err := c.Save(context.Background(), model.Draft{Title: "Widget", Price: "9.99"})
	require.NoError(t, err)
	assert.Equal(t, Reviewing, c.View())
	assert.Equal(t, "Item collected!", n.Text)
	assert.Equal(t, DefaultNoticeTTL, n.TTL)

	require.Equal(t, 1, items.Len())
	assert.Equal(t, int64(42), items.List()[0].CreatedAt)
}

func TestSave_ValidationFailureChangesNothing(t *testing.T) {
	c, items := newController(t, nil)

	_, err := c.Save(context.Background(), model.Draft{Title: "  "})
	assert.ErrorIs(t, err, model.ErrEmptyTitle)
	assert.Equal(t, Collecting, c.View())
	assert.Equal(t, 0, items.Len())
}

func TestToggleIsExplicit(t *testing.T) {
	c, _ := newController(t, nil)
	c.Toggle()
	assert.Equal(t, Reviewing, c.View())
	c.Toggle()
	assert.Equal(t, Collecting, c.View())
	c.Show(Reviewing)
	assert.Equal(t, "reviewing", c.View().String())
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	c, items := newController(t, nil)
	_, err := c.Save(ctx, model.Draft{Title: "Widget"})
	require.NoError(t, err)
	id := items.List()[0].ID

	_, err = c.ConfirmDelete(ctx)
	assert.ErrorIs(t, err, ErrNoPendingDelete)

	it, err := c.RequestDelete(id)
	require.NoError(t, err)
	assert.Equal(t, "Widget", it.Title)
	assert.Equal(t, 1, items.Len(), "request alone must not delete")

	c.CancelDelete()
	_, pending := c.PendingDelete()
	assert.False(t, pending)
	_, err = c.ConfirmDelete(ctx)
	assert.ErrorIs(t, err, ErrNoPendingDelete)
	assert.Equal(t, 1, items.Len())

	_, err = c.RequestDelete(id)
	require.NoError(t, err)
	removed, err := c.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, items.Len())

	_, err = c.RequestDelete("nope")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestOptimizeTickets(t *testing.T) {
	c, _ := newController(t, nil)

	first := c.BeginOptimize()
	second := c.BeginOptimize()
	assert.False(t, c.Accept(first), "stale response is dropped")
	assert.True(t, c.Accept(second))

	third := c.BeginOptimize()
	c.ResetForm()
	assert.False(t, c.Accept(third))

	assert.Equal(t, "better", c.Optimize(context.Background(), "Widget", "old"))
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	var got []string
	clip := clipboard.Func(func(s string) error { got = append(got, s); return nil })
	c, items := newController(t, clip)

	_, err := c.Save(ctx, model.Draft{Title: "Widget", Price: "9.99", Stock: "5", Description: "Line1\nLine2"})
	require.NoError(t, err)

	n, err := c.ExportAll()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, c.ExportOne(items.List()[0].ID))

	require.Len(t, got, 2)
	assert.Equal(t, export.ExportAll(items.List()), got[0])
	assert.Equal(t, "Widget\t9.99\t5\tLine1\nLine2\t", got[1])

	assert.ErrorIs(t, c.ExportOne("nope"), ErrUnknownItem)
}

func TestExportAll_EmptyLeavesClipboardAlone(t *testing.T) {
	calls := 0
	c, _ := newController(t, clipboard.Func(func(string) error { calls++; return nil }))
	n, err := c.ExportAll()
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, calls)
}

func TestExport_ClipboardFailurePropagates(t *testing.T) {
	boom := errors.New("no clipboard")
	c, _ := newController(t, clipboard.Func(func(string) error { return boom }))
	_, err := c.Save(context.Background(), model.Draft{Title: "Widget"})
	require.NoError(t, err)
	_, err = c.ExportAll()
	assert.ErrorIs(t, err, boom)
}
