package home

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingo/internal/backend"
	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/screens/grid"
	"github.com/abhisek/lingo/internal/store"
)

type fakeSnapshots struct {
	latest *store.Snapshot
}

func (f *fakeSnapshots) Save(context.Context, *store.Snapshot) error    { return nil }
func (f *fakeSnapshots) Latest(context.Context) (*store.Snapshot, error) { return f.latest, nil }
func (f *fakeSnapshots) Prune(context.Context, int) error                { return nil }

func newTestBackend() *backend.MockBackend {
	mock := backend.NewMockBackend(7, `[]`)
	mock.LessonList = []backend.LessonInfo{
		{ID: 7, Title: "Weather words", LanguageLevel: "A1", Progress: backend.LessonProgress{CardsCompleted: 2, CardsTotal: 5}},
		{ID: 8, Title: "At the market", UserCompleted: true},
	}
	mock.ProgressData = &backend.Progress{TotalExperience: 320, CurrentLevel: 3, TotalLessonsCompleted: 1}
	return mock
}

func load(t *testing.T, h *HomeScreen) tea.Cmd {
	t.Helper()
	cmd := h.Init()
	if cmd == nil {
		t.Fatal("expected Init to load lessons")
	}
	_, out := h.Update(cmd())
	return out
}

func TestHomeScreen_LoadsLessons(t *testing.T) {
	h := New(grid.Deps{Backend: newTestBackend()})
	cmd := load(t, h)

	if cmd == nil {
		t.Fatal("expected a progress update")
	}
	pm, ok := cmd().(screen.ProgressMsg)
	if !ok || pm.Progress.TotalExperience != 320 {
		t.Errorf("progress msg = %+v", pm)
	}

	// two lessons, history, quit
	if len(h.menu.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(h.menu.Items))
	}
	if !h.menu.Items[2].Disabled {
		t.Error("history should be disabled without an event store")
	}

	view := h.View(120, 40)
	for _, want := range []string{"Weather words", "2/5 cards", "✓ At the market", "320 XP", "LEVEL 3"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHomeScreen_SnapshotFallback(t *testing.T) {
	mock := newTestBackend()
	mock.SetErr(backend.OpProgress, errors.New("offline"))
	snaps := &fakeSnapshots{latest: &store.Snapshot{Data: store.SnapshotData{TotalExperience: 90, Level: 1}}}

	h := New(grid.Deps{Backend: mock, Snapshots: snaps})
	load(t, h)

	if !h.offline || h.progress.TotalExperience != 90 {
		t.Errorf("offline = %v, progress = %+v", h.offline, h.progress)
	}
	if !strings.Contains(h.View(120, 40), "saved progress") {
		t.Error("view should say progress is from a snapshot")
	}
}

func TestHomeScreen_LessonsError(t *testing.T) {
	mock := newTestBackend()
	mock.SetErr(backend.OpLessons, errors.New("503 unavailable"))

	h := New(grid.Deps{Backend: mock})
	load(t, h)

	if !strings.Contains(h.View(120, 40), "503 unavailable") {
		t.Error("view should show the error")
	}
}

func TestHomeScreen_EnterOpensLesson(t *testing.T) {
	h := New(grid.Deps{Backend: newTestBackend()})
	load(t, h)

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected a push")
	}
	if _, ok := push.Screen.(*grid.GridScreen); !ok {
		t.Errorf("pushed %T, want the lesson grid", push.Screen)
	}
}

func TestHomeScreen_ReloadKeepsSelection(t *testing.T) {
	h := New(grid.Deps{Backend: newTestBackend()})
	load(t, h)
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	load(t, h)
	if h.menu.Selected != 1 {
		t.Errorf("Selected = %d, want 1", h.menu.Selected)
	}
}
