package bot

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ThreadCreator creates assistant-side conversation threads.
type ThreadCreator interface {
	CreateThread(ctx context.Context) (string, error)
}

// ThreadDirectory maps a chat channel to its assistant thread. Threads are
// created lazily, exactly once per channel, and live for the process
// lifetime.
type ThreadDirectory struct {
	creator ThreadCreator

	mu      sync.RWMutex
	threads map[string]string
	group   singleflight.Group
}

// NewThreadDirectory creates an empty directory backed by creator.
func NewThreadDirectory(creator ThreadCreator) *ThreadDirectory {
	return &ThreadDirectory{
		creator: creator,
		threads: make(map[string]string),
	}
}

// GetOrCreate returns the thread for channelID, creating it on first use.
// Concurrent calls for the same channel collapse into a single creation;
// distinct channels proceed independently.
func (d *ThreadDirectory) GetOrCreate(ctx context.Context, channelID string) (string, error) {
	d.mu.RLock()
	id, ok := d.threads[channelID]
	d.mu.RUnlock()
	if ok {
		return id, nil
	}

	v, err, _ := d.group.Do(channelID, func() (any, error) {
		d.mu.RLock()
		id, ok := d.threads[channelID]
		d.mu.RUnlock()
		if ok {
			return id, nil
		}

		created, err := d.creator.CreateThread(ctx)
		if err != nil {
			return "", err
		}

		d.mu.Lock()
		d.threads[channelID] = created
		d.mu.Unlock()
		return created, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len returns the number of channels with a thread.
func (d *ThreadDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.threads)
}
