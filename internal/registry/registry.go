// Package registry keeps the stories known to docblocks and notifies
// watchers when they change.
package registry

import (
	"sort"
	"sync"
	"time"
)

// StoryRegistry manages all registered stories
type StoryRegistry struct {
	stories  map[string]*Story
	mutex    sync.RWMutex
	watchers []chan StoryEvent
}

// StoryEvent represents a change in the story registry
type StoryEvent struct {
	Type      EventType
	Story     *Story
	Timestamp time.Time
}

// EventType represents the type of story event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// NewStoryRegistry creates a new story registry
func NewStoryRegistry() *StoryRegistry {
	return &StoryRegistry{
		stories:  make(map[string]*Story),
		watchers: make([]chan StoryEvent, 0),
	}
}

// Register adds or updates a story in the registry
func (r *StoryRegistry) Register(story *Story) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if _, exists := r.stories[story.ID]; exists {
		eventType = EventTypeUpdated
	}

	r.stories[story.ID] = story
	r.notify(StoryEvent{Type: eventType, Story: story, Timestamp: time.Now()})
}

// Get retrieves a story by id
func (r *StoryRegistry) Get(id string) (*Story, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	story, exists := r.stories[id]
	return story, exists
}

// All returns every registered story ordered by id
func (r *StoryRegistry) All() []*Story {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*Story, 0, len(r.stories))
	for _, story := range r.stories {
		result = append(result, story)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Remove removes a story from the registry
func (r *StoryRegistry) Remove(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	story, exists := r.stories[id]
	if !exists {
		return
	}

	delete(r.stories, id)
	r.notify(StoryEvent{Type: EventTypeRemoved, Story: story, Timestamp: time.Now()})
}

// Replace swaps the whole story set, emitting removed events for stories
// that disappeared and added/updated events for the rest.
func (r *StoryRegistry) Replace(stories []*Story) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	next := make(map[string]*Story, len(stories))
	for _, s := range stories {
		next[s.ID] = s
	}

	now := time.Now()
	for id, old := range r.stories {
		if _, kept := next[id]; !kept {
			r.notify(StoryEvent{Type: EventTypeRemoved, Story: old, Timestamp: now})
		}
	}
	for id, s := range next {
		eventType := EventTypeAdded
		if _, exists := r.stories[id]; exists {
			eventType = EventTypeUpdated
		}
		r.notify(StoryEvent{Type: eventType, Story: s, Timestamp: now})
	}

	r.stories = next
}

// notify must be called with the mutex held.
func (r *StoryRegistry) notify(event StoryEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Watch returns a channel that receives story events
func (r *StoryRegistry) Watch() <-chan StoryEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan StoryEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *StoryRegistry) UnWatch(ch <-chan StoryEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered stories
func (r *StoryRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.stories)
}
