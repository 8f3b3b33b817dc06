package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yes(Project) bool { return true }
func no(Project) bool  { return false }

func mustCreate(t *testing.T, s *projectStore, name string) Project {
	t.Helper()
	project, ok := s.Create(ProjectFields{Name: name})
	require.True(t, ok)
	return project
}

func TestCreateBlankNameLeavesListUnchanged(t *testing.T) {
	s := newProjectStore()
	mustCreate(t, s, "Existing")
	before := s.List()

	_, ok := s.Create(ProjectFields{Name: "  ", Description: "ignored"})
	assert.False(t, ok)
	assert.Equal(t, before, s.List())
}

func TestCreatePrependsAndActivates(t *testing.T) {
	s := newProjectStore()
	first := mustCreate(t, s, "First")
	second, ok := s.Create(ProjectFields{Name: "X", TechStack: "A, ,B"})
	require.True(t, ok)

	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []string{"A", "B"}, second.TechStack)
	assert.Equal(t, second.ID, s.ActiveID())

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestCreateRetriesDuplicateIDs(t *testing.T) {
	s := newProjectStore()
	ids := []string{"dup", "dup", "", "fresh"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	assert.Equal(t, "dup", a.ID)
	assert.Equal(t, "fresh", b.ID)
}

func TestUpdatePreservesIDAndPosition(t *testing.T) {
	s := newProjectStore()
	c := mustCreate(t, s, "C")
	b := mustCreate(t, s, "B")
	a := mustCreate(t, s, "A")

	ok := s.Update(b.ID, ProjectFields{Name: "B2", TechStack: "Go", UserStories: "story"})
	require.True(t, ok)

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "B2", list[1].Name)
	assert.Equal(t, []string{"Go"}, list[1].TechStack)
	assert.Equal(t, []string{"story"}, list[1].UserStories)
}

func TestUpdateNoOps(t *testing.T) {
	s := newProjectStore()
	p := mustCreate(t, s, "Keep")

	assert.False(t, s.Update("missing", ProjectFields{Name: "New"}))
	assert.False(t, s.Update(p.ID, ProjectFields{Name: " "}))

	got, ok := s.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, "Keep", got.Name)
}

func TestDeleteActiveClearsSelection(t *testing.T) {
	s := newProjectStore()
	mustCreate(t, s, "Other")
	active := mustCreate(t, s, "Active")
	require.Equal(t, active.ID, s.ActiveID())

	assert.True(t, s.Delete(active.ID, yes))
	assert.Empty(t, s.ActiveID())
	_, ok := s.Active()
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestDeleteNonActiveKeepsSelection(t *testing.T) {
	s := newProjectStore()
	other := mustCreate(t, s, "Other")
	active := mustCreate(t, s, "Active")

	assert.True(t, s.Delete(other.ID, yes))
	assert.Equal(t, active.ID, s.ActiveID())
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s := newProjectStore()
	p := mustCreate(t, s, "P")

	var asked Project
	declined := s.Delete(p.ID, func(candidate Project) bool {
		asked = candidate
		return false
	})
	assert.False(t, declined)
	assert.Equal(t, p.ID, asked.ID)
	assert.False(t, s.Delete(p.ID, nil))
	assert.False(t, s.Delete("missing", yes))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, p.ID, s.ActiveID())
}

func TestSetActiveDoesNotCheckExistence(t *testing.T) {
	s := newProjectStore()
	s.SetActive("ghost")
	assert.Equal(t, "ghost", s.ActiveID())
	_, ok := s.Active()
	assert.False(t, ok)

	s.SetActive("")
	assert.Empty(t, s.ActiveID())
}

func TestAppendStory(t *testing.T) {
	s := newProjectStore()
	p, ok := s.Create(ProjectFields{Name: "P", UserStories: "first"})
	require.True(t, ok)

	assert.False(t, s.AppendStory(p.ID, "first"))
	assert.True(t, s.AppendStory(p.ID, "  second  "))
	assert.True(t, s.AppendStory(p.ID, "First"))
	assert.False(t, s.AppendStory(p.ID, "   "))
	assert.False(t, s.AppendStory("missing", "third"))

	got, _ := s.Get(p.ID)
	assert.Equal(t, []string{"first", "second", "First"}, got.UserStories)
}

func TestListReturnsCopies(t *testing.T) {
	s := newProjectStore()
	p, _ := s.Create(ProjectFields{Name: "P", TechStack: "Go"})
	before, _ := s.Get(p.ID)
	list := s.List()
	list[0].TechStack[0] = "mutated"
	list[0].Name = "mutated"
	got, _ := s.Get(p.ID)
	if diff := cmp.Diff(before, got); diff != "" {
		t.Errorf("stored project changed through List (-want +got):\n%s", diff)
	}
}

func TestSubscribersReceiveEvents(t *testing.T) {
	s := newProjectStore()
	var events []storeEvent
	unsubscribe := s.Subscribe(func(event storeEvent) {
		events = append(events, event)
		// Subscribers run outside the lock.
		_ = s.Len()
	})

	p := mustCreate(t, s, "P")
	s.Update(p.ID, ProjectFields{Name: "P2"})
	s.AppendStory(p.ID, "story")
	s.SetActive("")
	s.Delete(p.ID, no)
	s.Delete(p.ID, yes)

	kinds := make([]storeEventKind, 0, len(events))
	for _, event := range events {
		kinds = append(kinds, event.Kind)
	}
	assert.Equal(t, []storeEventKind{
		storeEventCreated,
		storeEventUpdated,
		storeEventStoryAppended,
		storeEventActivated,
		storeEventDeleted,
	}, kinds)

	unsubscribe()
	mustCreate(t, s, "Q")
	assert.Len(t, events, 5)
}
