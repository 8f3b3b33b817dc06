package main

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Confirmer gates a destructive store operation. It returns true to proceed.
type Confirmer func(Project) bool

type storeEventKind string

const (
	storeEventCreated       storeEventKind = "created"
	storeEventUpdated       storeEventKind = "updated"
	storeEventDeleted       storeEventKind = "deleted"
	storeEventActivated     storeEventKind = "activated"
	storeEventStoryAppended storeEventKind = "story_appended"
)

type storeEvent struct {
	Kind      storeEventKind
	ProjectID string
	Name      string
}

// projectStore keeps the ordered project list and the active selection.
// Newest projects come first.
type projectStore struct {
	mu          sync.RWMutex
	projects    []Project
	activeID    string
	subscribers map[int]func(storeEvent)
	nextSubID   int
	newID       func() string
}

func newProjectStore() *projectStore {
	return &projectStore{
		subscribers: make(map[int]func(storeEvent)),
		newID:       uuid.NewString,
	}
}

// Subscribe registers fn for store events. fn runs after the store lock is
// released, so it may query the store.
func (s *projectStore) Subscribe(fn func(storeEvent)) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *projectStore) Create(fields ProjectFields) (Project, bool) {
	project, ok := normalizeFields(fields)
	if !ok {
		return Project{}, false
	}

	s.mu.Lock()
	project.ID = s.uniqueIDLocked()
	s.projects = append([]Project{project}, s.projects...)
	s.activeID = project.ID
	s.mu.Unlock()

	s.publish(storeEvent{Kind: storeEventCreated, ProjectID: project.ID, Name: project.Name})
	return project.clone(), true
}

func (s *projectStore) Update(id string, fields ProjectFields) bool {
	normalized, ok := normalizeFields(fields)
	if !ok {
		return false
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	normalized.ID = s.projects[idx].ID
	s.projects[idx] = normalized
	s.mu.Unlock()

	s.publish(storeEvent{Kind: storeEventUpdated, ProjectID: id, Name: normalized.Name})
	return true
}

// Delete removes the project once confirm agrees. A nil confirm declines.
func (s *projectStore) Delete(id string, confirm Confirmer) bool {
	project, ok := s.Get(id)
	if !ok || confirm == nil || !confirm(project) {
		return false
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	if s.activeID == id {
		s.activeID = ""
	}
	s.mu.Unlock()

	s.publish(storeEvent{Kind: storeEventDeleted, ProjectID: id, Name: project.Name})
	return true
}

// SetActive selects the project shown in the detail view. An empty id clears
// the selection.
func (s *projectStore) SetActive(id string) {
	s.mu.Lock()
	s.activeID = strings.TrimSpace(id)
	active := s.activeID
	s.mu.Unlock()

	s.publish(storeEvent{Kind: storeEventActivated, ProjectID: active})
}

// AppendStory adds story to the end of the project's stories unless the exact
// string is already there.
func (s *projectStore) AppendStory(id, story string) bool {
	story = strings.TrimSpace(story)
	if story == "" {
		return false
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 || s.projects[idx].hasStory(story) {
		s.mu.Unlock()
		return false
	}
	s.projects[idx].UserStories = append(s.projects[idx].UserStories, story)
	name := s.projects[idx].Name
	s.mu.Unlock()

	s.publish(storeEvent{Kind: storeEventStoryAppended, ProjectID: id, Name: name})
	return true
}

func (s *projectStore) List() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, 0, len(s.projects))
	for _, project := range s.projects {
		out = append(out, project.clone())
	}
	return out
}

func (s *projectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

func (s *projectStore) Get(id string) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return Project{}, false
	}
	return s.projects[idx].clone(), true
}

func (s *projectStore) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

func (s *projectStore) Active() (Project, bool) {
	id := s.ActiveID()
	if id == "" {
		return Project{}, false
	}
	return s.Get(id)
}

func (s *projectStore) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for idx := range s.projects {
		if s.projects[idx].ID == id {
			return idx
		}
	}
	return -1
}

func (s *projectStore) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *projectStore) publish(event storeEvent) {
	s.mu.RLock()
	subs := make([]func(storeEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(event)
	}
}
