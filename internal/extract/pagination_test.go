package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeNextURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "page query parameter",
			in:   "https://example.com/videos?page=3&sort=new",
			want: "https://example.com/videos?page=4&sort=new",
			ok:   true,
		},
		{
			name: "p query parameter",
			in:   "https://example.com/videos?p=1",
			want: "https://example.com/videos?p=2",
			ok:   true,
		},
		{
			name: "page path segment",
			in:   "https://example.com/videos/page/2/",
			want: "https://example.com/videos/page/3/",
			ok:   true,
		},
		{
			name: "trailing number segment",
			in:   "https://example.com/videos/5",
			want: "https://example.com/videos/6",
			ok:   true,
		},
		{
			name: "no pattern falls back to page=2",
			in:   "https://example.com/videos",
			want: "https://example.com/videos?page=2",
			ok:   true,
		},
		{
			name: "non-numeric page parameter exhausts",
			in:   "https://example.com/videos?page=last",
			want: "",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := synthesizeNextURL(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPaginatorBudgets(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 3
	cfg.MaxVideos = 10

	page := newFakePage("https://example.com/videos?page=1")

	p := newPaginator(cfg)
	outcome, ok := p.advance(context.Background(), page, 1, 2)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/videos?page=2", outcome.nextURL)
	p.resume()

	// video budget hit
	_, ok = p.advance(context.Background(), page, 2, 10)
	assert.False(t, ok)

	// exhausted is terminal
	_, ok = p.advance(context.Background(), page, 2, 2)
	assert.False(t, ok)
}

func TestPaginatorPageBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 2

	p := newPaginator(cfg)
	page := newFakePage("https://example.com/videos?page=1")

	_, ok := p.advance(context.Background(), page, 2, 1)
	assert.False(t, ok)
}

func TestPaginatorPrefersNextControl(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 5

	page := newFakePage("https://example.com/videos").
		onJSON("'button.next'", map[string]any{"href": "https://example.com/videos/archive", "clicked": false})

	p := newPaginator(cfg)
	outcome, ok := p.advance(context.Background(), page, 1, 0)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/videos/archive", outcome.nextURL)
	assert.False(t, outcome.clicked)
}

func TestPaginatorClickedControl(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 5

	page := newFakePage("https://example.com/videos").
		onJSON("'button.next'", map[string]any{"href": "", "clicked": true})

	p := newPaginator(cfg)
	outcome, ok := p.advance(context.Background(), page, 1, 0)
	require.True(t, ok)
	assert.True(t, outcome.clicked)
}

func TestPaginatorRejectsSelfLink(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 5

	// next control pointing back at the current page; synthesis takes over
	page := newFakePage("https://example.com/videos").
		onJSON("'button.next'", map[string]any{"href": "https://example.com/videos#top", "clicked": false})

	p := newPaginator(cfg)
	outcome, ok := p.advance(context.Background(), page, 1, 0)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/videos?page=2", outcome.nextURL)
}

func TestPaginatorFailEndsPagination(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 5

	p := newPaginator(cfg)
	p.fail(errors.New("navigation timed out"))

	_, ok := p.advance(context.Background(), newFakePage("https://example.com/videos?page=2"), 2, 0)
	assert.False(t, ok)
}
