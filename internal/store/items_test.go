package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/idilsaglam/quickcollect/internal/model"
	"github.com/idilsaglam/quickcollect/internal/store/jsonstore"
	"github.com/idilsaglam/quickcollect/internal/store/sqlitestore"
)

// memBackend counts writes and can be told to fail.
type memBackend struct {
	data    map[string][]byte
	puts    int
	getErr  error
	putErr  error
	lastPut []byte
}

func newMem() *memBackend { return &memBackend{data: map[string][]byte{}} }

func (m *memBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memBackend) Put(_ context.Context, key string, value []byte) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.lastPut = value
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memBackend) Close() error { return nil }

func item(t *testing.T, title string, at int64) model.Item {
	t.Helper()
	it, err := model.NewItem(model.Draft{Title: title, Price: "1", Stock: "2"}, time.UnixMilli(at))
	require.NoError(t, err)
	return it
}

func ids(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestAdd_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New(newMem(), zap.NewNop())
	s.Load(ctx)

	var added []model.Item
	for i := 0; i < 5; i++ {
		it := item(t, fmt.Sprintf("item %d", i), int64(1000+i))
		require.NoError(t, s.Add(ctx, it))
		added = append(added, it)
	}

	got := s.List()
	require.Len(t, got, 5)
	for i := range got {
		assert.Equal(t, added[len(added)-1-i].ID, got[i].ID)
	}
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i-1].CreatedAt, got[i].CreatedAt)
	}
}

func TestAdd_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	mem := newMem()
	s := New(mem, nil)
	s.Load(ctx)

	a := item(t, "a", 1)
	require.NoError(t, s.Add(ctx, a))
	assert.Equal(t, 1, mem.puts)

	b := item(t, "b", 2)
	require.NoError(t, s.Add(ctx, b))
	assert.Equal(t, 2, mem.puts)

	// A fresh store over the same backend sees exactly the in-memory state.
	reloaded := New(mem, nil)
	reloaded.Load(ctx)
	assert.Equal(t, ids(s.List()), ids(reloaded.List()))
}

func TestAdd_EmptyTitleRejected(t *testing.T) {
	ctx := context.Background()
	mem := newMem()
	s := New(mem, nil)
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, item(t, "keep", 1)))
	writes := mem.puts

	err := s.Add(ctx, model.Item{ID: "x", Title: ""})
	assert.ErrorIs(t, err, model.ErrEmptyTitle)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, writes, mem.puts, "no persistence write on rejected add")
}

func TestAdd_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	mem := newMem()
	s := New(mem, nil)
	s.Load(ctx)
	it := item(t, "a", 1)
	require.NoError(t, s.Add(ctx, it))

	err := s.Add(ctx, it)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, mem.puts)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	mem := newMem()
	s := New(mem, nil)
	s.Load(ctx)
	a, b, c := item(t, "a", 1), item(t, "b", 2), item(t, "c", 3)
	for _, it := range []model.Item{a, b, c} {
		require.NoError(t, s.Add(ctx, it))
	}

	removed, err := s.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{c.ID, a.ID}, ids(s.List()))
	_, ok := s.Get(b.ID)
	assert.False(t, ok)

	writes := mem.puts
	before := s.List()
	removed, err = s.Delete(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, before, s.List())
	assert.Equal(t, writes, mem.puts)

	reloaded := New(mem, nil)
	reloaded.Load(ctx)
	assert.Equal(t, []string{c.ID, a.ID}, ids(reloaded.List()))
}

func TestLoad_CorruptOrMissing(t *testing.T) {
	ctx := context.Background()

	cases := map[string]func(*memBackend){
		"missing":    func(m *memBackend) {},
		"empty":      func(m *memBackend) { m.data[Key] = []byte("  ") },
		"corrupt":    func(m *memBackend) { m.data[Key] = []byte("{not json") },
		"wrong type": func(m *memBackend) { m.data[Key] = []byte(`{"id":"a"}`) },
		"null":       func(m *memBackend) { m.data[Key] = []byte(`null`) },
		"read error": func(m *memBackend) { m.getErr = errors.New("disk on fire") },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			mem := newMem()
			setup(mem)
			s := New(mem, zap.NewNop())
			s.Load(ctx)
			assert.NotNil(t, s.List())
			assert.Empty(t, s.List())
		})
	}
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	mem := newMem()
	s := New(mem, nil)
	s.Load(ctx)

	mem.putErr = errors.New("quota exceeded")
	it := item(t, "a", 1)
	err := s.Add(ctx, it)
	assert.ErrorIs(t, err, ErrNotPersisted)
	assert.Equal(t, 1, s.Len())

	removed, err := s.Delete(ctx, it.ID)
	assert.True(t, removed)
	assert.ErrorIs(t, err, ErrNotPersisted)
	assert.Equal(t, 0, s.Len())
}

func TestListIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New(newMem(), nil)
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, item(t, "a", 1)))

	got := s.List()
	got[0].Title = "mutated"
	assert.Equal(t, "a", s.List()[0].Title)
}

func TestRoundTripBackends(t *testing.T) {
	ctx := context.Background()

	sq, err := sqlitestore.Open(ctx, filepath.Join(t.TempDir(), "qc.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	backends := map[string]Backend{
		"json":   jsonstore.New(t.TempDir()),
		"sqlite": sq,
	}
	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			s := New(backend, nil)
			s.Load(ctx)

			full, err := model.NewItem(model.Draft{
				Title:       "Widget",
				Image:       "data:image/png;base64,AAAA",
				Description: "Line1\nLine2",
				Price:       "9.99",
				Stock:       "5",
				Remarks:     "fragile",
			}, time.UnixMilli(10))
			require.NoError(t, err)
			require.NoError(t, s.Add(ctx, full))
			require.NoError(t, s.Add(ctx, item(t, "second", 20)))

			reloaded := New(backend, nil)
			reloaded.Load(ctx)
			if diff := cmp.Diff(s.List(), reloaded.List()); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
