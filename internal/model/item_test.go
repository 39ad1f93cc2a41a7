package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  error
	}{
		{"ok", Draft{Title: "Widget", Price: "9.99", Stock: "5"}, nil},
		{"empty numbers ok", Draft{Title: "Widget"}, nil},
		{"empty title", Draft{Title: ""}, ErrEmptyTitle},
		{"blank title", Draft{Title: "   "}, ErrEmptyTitle},
		{"bad price", Draft{Title: "Widget", Price: "abc"}, ErrNotNumeric},
		{"bad stock", Draft{Title: "Widget", Stock: "5 pcs"}, ErrNotNumeric},
		{"inf price", Draft{Title: "Widget", Price: "Inf"}, ErrNotNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNewItem(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	it, err := NewItem(Draft{Title: "Widget", Price: "09.90", Stock: "5", Remarks: "r"}, now)
	require.NoError(t, err)

	assert.NotEmpty(t, it.ID)
	assert.Equal(t, int64(1_700_000_000_123), it.CreatedAt)
	assert.Equal(t, Amount("09.90"), it.Price, "amounts are stored as entered")
	assert.Equal(t, now, it.Created())

	other, err := NewItem(Draft{Title: "Widget"}, now)
	require.NoError(t, err)
	assert.NotEqual(t, it.ID, other.ID)

	_, err = NewItem(Draft{}, now)
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestAmountJSON(t *testing.T) {
	var it Item
	raw := `{"id":"a","title":"t","price":12.5,"stock":"3","remarks":"","createdAt":1}`
	require.NoError(t, json.Unmarshal([]byte(raw), &it))
	assert.Equal(t, Amount("12.5"), it.Price)
	assert.Equal(t, Amount("3"), it.Stock)

	b, err := json.Marshal(it)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":"12.5"`)

	require.NoError(t, json.Unmarshal([]byte(`{"price":null}`), &it))
	assert.Equal(t, Amount(""), it.Price)

	assert.Error(t, json.Unmarshal([]byte(`{"price":true}`), &it))
}

func TestImageDataURI(t *testing.T) {
	dir := t.TempDir()

	// 1x1 transparent GIF
	gif := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")
	p := filepath.Join(dir, "pixel.gif")
	require.NoError(t, os.WriteFile(p, gif, 0o644))

	uri, err := ImageDataURI(p)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/gif;base64,"), uri)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
	_, err = ImageDataURI(txt)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = ImageDataURI(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
