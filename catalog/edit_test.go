/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"errors"
	"testing"
)

func TestEditorLifecycle(t *testing.T) {
	c, _ := newTestCatalog(t)
	s, _ := c.AddSong("Old", "old", "dQw4w9WgXcQ")
	e := NewEditor(c)

	if _, ok := e.State().(NotEditing); !ok {
		t.Fatalf("expected NotEditing, got %T", e.State())
	}

	if e.Begin(99) {
		t.Error("expected Begin on unknown song to fail")
	}

	if !e.Begin(s.ID) {
		t.Fatal("expected Begin to succeed")
	}

	ed, ok := e.Editing()
	if !ok || ed.SongID != s.ID {
		t.Fatalf("expected editing song %d, got %+v", s.ID, e.State())
	}
	if ed.Draft != (Draft{Title: "Old", Answer: "old", MediaSource: "dQw4w9WgXcQ"}) {
		t.Errorf("expected draft prefilled from song, got %+v", ed.Draft)
	}

	e.SetDraft(Draft{Title: "New", Answer: "new", MediaSource: "https://www.youtube.com/watch?v=y6120QOlsfU"})
	if err := e.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, ok := e.State().(NotEditing); !ok {
		t.Errorf("expected NotEditing after commit, got %T", e.State())
	}

	got, _ := c.Song(s.ID)
	if got.Title != "New" || got.Answer != "new" || got.MediaRef != "y6120QOlsfU" {
		t.Errorf("unexpected song after commit: %+v", got)
	}
}

func TestEditorCommitInvalidKeepsDraft(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		err   error
	}{
		{"empty title", Draft{Title: " ", Answer: "a", MediaSource: "dQw4w9WgXcQ"}, ErrEmptyTitle},
		{"empty answer", Draft{Title: "t", Answer: "", MediaSource: "dQw4w9WgXcQ"}, ErrEmptyAnswer},
		{"bad media", Draft{Title: "t", Answer: "a", MediaSource: "not a link"}, ErrInvalidMediaRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCatalog(t)
			s, _ := c.AddSong("Old", "old", "dQw4w9WgXcQ")
			e := NewEditor(c)

			e.Begin(s.ID)
			e.SetDraft(tt.draft)

			if err := e.Commit(); !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}

			ed, ok := e.Editing()
			if !ok || ed.Draft != tt.draft {
				t.Errorf("expected draft kept, got %+v", e.State())
			}

			if got, _ := c.Song(s.ID); got != s {
				t.Errorf("expected song unchanged, got %+v", got)
			}
		})
	}
}

func TestEditorCommitAfterDelete(t *testing.T) {
	c, _ := newTestCatalog(t)
	s, _ := c.AddSong("Old", "old", "dQw4w9WgXcQ")
	e := NewEditor(c)

	e.Begin(s.ID)
	c.DeleteSong(s.ID)

	if err := e.Commit(); err != nil {
		t.Errorf("expected silent drop, got %v", err)
	}
	if _, ok := e.State().(NotEditing); !ok {
		t.Errorf("expected NotEditing, got %T", e.State())
	}
	if c.Len() != 0 {
		t.Errorf("expected commit not to resurrect song, got %d songs", c.Len())
	}
}

func TestEditorCancelAndForget(t *testing.T) {
	c, _ := newTestCatalog(t)
	a, _ := c.AddSong("A", "a", "dQw4w9WgXcQ")
	b, _ := c.AddSong("B", "b", "y6120QOlsfU")
	e := NewEditor(c)

	if e.SetDraft(Draft{Title: "x"}) {
		t.Error("expected SetDraft without an edit to fail")
	}

	e.Begin(a.ID)
	e.Forget(b.ID)
	if _, ok := e.Editing(); !ok {
		t.Error("expected Forget of another song to keep the edit")
	}

	e.Forget(a.ID)
	if _, ok := e.Editing(); ok {
		t.Error("expected Forget to drop the edit")
	}

	e.Begin(b.ID)
	e.Cancel()
	if _, ok := e.State().(NotEditing); !ok {
		t.Errorf("expected NotEditing after Cancel, got %T", e.State())
	}
	if got, _ := c.Song(b.ID); got != b {
		t.Errorf("expected song untouched by cancelled edit, got %+v", got)
	}
}
