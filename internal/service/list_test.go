package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReloadReplacesContent(t *testing.T) {
	responses := [][]int{{1, 2, 3}, {4}}
	call := 0
	list := NewList[int](func(ctx context.Context) ([]int, error) {
		out := responses[call]
		call++
		return out, nil
	})

	applied, err := list.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, []int{1, 2, 3}, list.Items())

	_, err = list.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{4}, list.Items())
	assert.Equal(t, uint64(2), list.Generation())
}

func TestListDiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	call := 0

	list := NewList[string](func(ctx context.Context) ([]string, error) {
		call++
		if call == 1 {
			close(started)
			<-release
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	})

	done := make(chan bool)
	go func() {
		applied, _ := list.Reload(context.Background())
		done <- applied
	}()

	<-started
	applied, err := list.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)

	close(release)
	assert.False(t, <-done)
	assert.Equal(t, []string{"fresh"}, list.Items())
}

func TestListKeepsContentOnError(t *testing.T) {
	fail := false
	list := NewList[int](func(ctx context.Context) ([]int, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []int{1}, nil
	})

	_, err := list.Reload(context.Background())
	require.NoError(t, err)

	fail = true
	applied, err := list.Reload(context.Background())
	require.Error(t, err)
	assert.False(t, applied)
	assert.Equal(t, []int{1}, list.Items())
}
