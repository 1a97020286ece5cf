/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package catalog holds the ordered list of songs a host plays during a
// blind test, and keeps it persisted after every change.
package catalog

import (
	"slices"
	"strings"

	"github.com/ayoublk/blindtest/store"
)

// StorageKey is the key the song list has always been saved under.
const StorageKey = "blindTestSongs"

type Song struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Answer   string `json:"answer"`
	MediaRef string `json:"youtubeId"`
	Revealed bool   `json:"revealed"`
}

// Fields are the editable parts of a Song.
type Fields struct {
	Title    string
	Answer   string
	MediaRef string
}

func (f Fields) normalize() Fields {
	return Fields{
		Title:    strings.TrimSpace(f.Title),
		Answer:   strings.TrimSpace(f.Answer),
		MediaRef: strings.TrimSpace(f.MediaRef),
	}
}

func (f Fields) validate() error {
	switch {
	case f.Title == "":
		return ErrEmptyTitle
	case f.Answer == "":
		return ErrEmptyAnswer
	case f.MediaRef == "":
		return ErrInvalidMediaRef
	}
	return nil
}

type Option func(*Catalog)

func WithExtractor(e Extractor) Option {
	return func(c *Catalog) {
		c.extract = e
	}
}

// WithDeleteHook registers fn to run after a song is removed.
func WithDeleteHook(fn func(Song)) Option {
	return func(c *Catalog) {
		c.onDelete = append(c.onDelete, fn)
	}
}

// Catalog is not safe for concurrent use.
type Catalog struct {
	songs    *store.Store[[]Song]
	extract  Extractor
	onDelete []func(Song)
}

func New(songs *store.Store[[]Song], opts ...Option) *Catalog {
	c := &Catalog{
		songs:   songs,
		extract: ExtractMediaRef,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Catalog) Songs() []Song {
	return slices.Clone(c.songs.Get())
}

func (c *Catalog) Len() int {
	return len(c.songs.Get())
}

func (c *Catalog) Song(id int) (Song, bool) {
	for _, s := range c.songs.Get() {
		if s.ID == id {
			return s, true
		}
	}
	return Song{}, false
}

// MediaRef resolves a song ID for playback.
func (c *Catalog) MediaRef(id int) (string, bool) {
	s, ok := c.Song(id)
	if !ok {
		return "", false
	}
	return s.MediaRef, true
}

func nextID(songs []Song) int {
	id := 0
	for _, s := range songs {
		id = max(id, s.ID)
	}
	return id + 1
}

// AddSong appends a song whose media reference is extracted from source.
// Invalid input leaves the catalog untouched.
func (c *Catalog) AddSong(title, answer, source string) (Song, error) {
	f := Fields{Title: title, Answer: answer, MediaRef: c.extract(source)}.normalize()
	if err := f.validate(); err != nil {
		return Song{}, err
	}

	songs := c.songs.Get()
	song := Song{
		ID:       nextID(songs),
		Title:    f.Title,
		Answer:   f.Answer,
		MediaRef: f.MediaRef,
	}

	c.songs.Set(append(slices.Clone(songs), song))

	return song, nil
}

// UpdateSong replaces the editable fields of song id. f.MediaRef may be a
// bare reference or any link the extractor accepts. It reports whether the
// song exists; invalid fields are rejected without touching it.
func (c *Catalog) UpdateSong(id int, f Fields) (bool, error) {
	songs := c.songs.Get()

	i := slices.IndexFunc(songs, func(s Song) bool { return s.ID == id })
	if i < 0 {
		return false, nil
	}

	f.MediaRef = c.extract(f.MediaRef)
	f = f.normalize()
	if err := f.validate(); err != nil {
		return true, err
	}

	updated := slices.Clone(songs)
	updated[i].Title = f.Title
	updated[i].Answer = f.Answer
	updated[i].MediaRef = f.MediaRef
	c.songs.Set(updated)

	return true, nil
}

func (c *Catalog) DeleteSong(id int) bool {
	songs := c.songs.Get()

	i := slices.IndexFunc(songs, func(s Song) bool { return s.ID == id })
	if i < 0 {
		return false
	}

	removed := songs[i]
	c.songs.Set(slices.Delete(slices.Clone(songs), i, i+1))

	for _, fn := range c.onDelete {
		fn(removed)
	}

	return true
}

func (c *Catalog) ToggleRevealed(id int) bool {
	songs := c.songs.Get()

	i := slices.IndexFunc(songs, func(s Song) bool { return s.ID == id })
	if i < 0 {
		return false
	}

	updated := slices.Clone(songs)
	updated[i].Revealed = !updated[i].Revealed
	c.songs.Set(updated)

	return true
}
