/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type brokenMedium struct {
	readErr  error
	writeErr error
	raw      string
	writes   int
}

func (b *brokenMedium) Read(string) (string, bool, error) {
	if b.readErr != nil {
		return "", false, b.readErr
	}
	return b.raw, b.raw != "", nil
}

func (b *brokenMedium) Write(string, string) error {
	b.writes++
	return b.writeErr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetReturnsDefaultWhenMissing(t *testing.T) {
	s := New(NewMemoryMedium(), "items", []item{{ID: 1, Name: "seed"}}, quietLogger())

	got := s.Get()
	if len(got) != 1 || got[0].Name != "seed" {
		t.Errorf("expected default value, got %+v", got)
	}
}

func TestGetFallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		medium *brokenMedium
	}{
		{
			name:   "read error",
			medium: &brokenMedium{readErr: errors.New("storage unavailable")},
		},
		{
			name:   "parse error",
			medium: &brokenMedium{raw: "{not json"},
		},
		{
			name:   "wrong shape",
			medium: &brokenMedium{raw: `{"id":1}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.medium, "items", []item{}, quietLogger())

			got := s.Get()
			if got == nil || len(got) != 0 {
				t.Errorf("expected empty default, got %#v", got)
			}
		})
	}
}

func TestSetCachesEvenWhenWriteFails(t *testing.T) {
	m := &brokenMedium{writeErr: errors.New("quota exceeded")}
	s := New(m, "items", []item{}, quietLogger())

	want := []item{{ID: 1, Name: "a"}}
	s.Set(want)

	if m.writes != 1 {
		t.Errorf("expected one write attempt, got %d", m.writes)
	}
	if !reflect.DeepEqual(s.Get(), want) {
		t.Errorf("expected cached %+v, got %+v", want, s.Get())
	}
}

func TestNilMediumNeverWrites(t *testing.T) {
	s := New[[]item](nil, "items", nil, quietLogger())

	if got := s.Get(); got != nil {
		t.Errorf("expected nil default, got %+v", got)
	}

	s.Set([]item{{ID: 2}})
	if got := s.Get(); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("expected in-memory value, got %+v", got)
	}
}

func TestRoundTripThroughMedia(t *testing.T) {
	dir := t.TempDir()

	fileMedium, err := NewFileMedium(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("NewFileMedium: %v", err)
	}

	sqliteMedium, err := OpenSQLiteMedium(filepath.Join(dir, "blindtest.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteMedium: %v", err)
	}
	t.Cleanup(func() { _ = sqliteMedium.Close() })

	tests := []struct {
		name   string
		medium Medium
	}{
		{"memory", NewMemoryMedium()},
		{"file", fileMedium},
		{"sqlite", sqliteMedium},
	}

	want := []item{{ID: 1, Name: "Alice"}, {ID: 3, Name: "Bob"}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "game1/items"

			first := New(tt.medium, key, []item{}, quietLogger())
			first.Set(want)

			reopened := New(tt.medium, key, []item{}, quietLogger())
			if got := reopened.Get(); !reflect.DeepEqual(got, want) {
				t.Errorf("expected %+v after reopen, got %+v", want, got)
			}

			first.Set([]item{})
			again := New(tt.medium, key, []item{{ID: 9}}, quietLogger())
			if got := again.Get(); len(got) != 0 {
				t.Errorf("expected empty collection to persist, got %+v", got)
			}
		})
	}
}

func TestMediaRejectEmptyKey(t *testing.T) {
	fileMedium, err := NewFileMedium(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileMedium: %v", err)
	}

	for name, m := range map[string]Medium{"memory": NewMemoryMedium(), "file": fileMedium} {
		if err := m.Write("", "x"); !errors.Is(err, ErrEmptyKey) {
			t.Errorf("%s: expected ErrEmptyKey, got %v", name, err)
		}
	}
}

func TestSQLiteMediumReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blindtest.db")

	m, err := OpenSQLiteMedium(path)
	if err != nil {
		t.Fatalf("OpenSQLiteMedium: %v", err)
	}
	if err := m.Write("k", "v1"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := m.Write("k", "v2"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	m, err = OpenSQLiteMedium(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer m.Close()

	v, ok, err := m.Read("k")
	if err != nil || !ok || v != "v2" {
		t.Errorf("expected v2, got %q ok=%v err=%v", v, ok, err)
	}

	if _, ok, err := m.Read("missing"); ok || err != nil {
		t.Errorf("expected missing key, got ok=%v err=%v", ok, err)
	}
}
