package window

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockLister struct {
	titles      []string
	err         error
	isAvailable bool
	closeError  error
}

func (m *MockLister) Titles(context.Context) ([]string, error) {
	return m.titles, m.err
}

func (m *MockLister) IsAvailable() bool {
	return m.isAvailable
}

func (m *MockLister) Close() error {
	return m.closeError
}

func TestMockLister(t *testing.T) {
	var _ Lister = (*MockLister)(nil)

	mock := &MockLister{titles: []string{"Steam Big Picture Mode"}, isAvailable: true}
	assert.True(t, mock.IsAvailable())
	assert.NoError(t, mock.Close())
}

func TestContainsAny(t *testing.T) {
	titles := []string{"Mozilla Firefox", "  Steam Big Picture Mode ", "Discord"}

	tests := []struct {
		name   string
		wanted []string
		want   bool
	}{
		{"exact match", []string{"Discord"}, true},
		{"match after trimming", []string{"Steam Big Picture Mode"}, true},
		{"one of several", []string{"Kodi", "Mozilla Firefox"}, true},
		{"substring is not a match", []string{"Firefox"}, false},
		{"case sensitive", []string{"discord"}, false},
		{"empty wanted ignored", []string{"", "  "}, false},
		{"nothing wanted", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsAny(titles, tt.wanted...))
		})
	}
}

func TestIsPresent(t *testing.T) {
	ctx := context.Background()

	present, err := IsPresent(ctx, &MockLister{titles: []string{"Kodi"}}, "Kodi")
	require.NoError(t, err)
	assert.True(t, present)

	listErr := errors.New("no display")
	_, err = IsPresent(ctx, &MockLister{err: listErr}, "Kodi")
	assert.ErrorIs(t, err, listErr)
}

func BenchmarkContainsAny(b *testing.B) {
	titles := make([]string, 0, 64)
	for i := 0; i < 64; i++ {
		titles = append(titles, "Window")
	}
	titles = append(titles, "Steam Big Picture Mode")

	for i := 0; i < b.N; i++ {
		_ = ContainsAny(titles, "Steam Big Picture Mode")
	}
}
