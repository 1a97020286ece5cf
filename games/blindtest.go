/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package games holds the state of one blind test session.
//
// How to play:
//   - The host adds songs: a title or hint, the answer, and a YouTube link
//   - Players are added by name, and names must be unique
//   - The host plays a song from the shared screen, and players shout out
//     their guesses
//   - The host reveals the answer and awards (or removes) points
//   - Ending the game shows the podium, ordered by score
package games

import (
	"io"
	"log/slog"

	"github.com/ayoublk/blindtest/catalog"
	"github.com/ayoublk/blindtest/playback"
	"github.com/ayoublk/blindtest/roster"
	"github.com/ayoublk/blindtest/store"
)

// DemoSongs is the starter catalog for a fresh game.
var DemoSongs = []catalog.Song{
	{ID: 1, Title: "Chanson N°1", Answer: "Réponse 1", MediaRef: "dQw4w9WgXcQ"},
	{ID: 2, Title: "Chanson N°2", Answer: "Réponse 2", MediaRef: "y6120QOlsfU"},
	{ID: 3, Title: "Chanson N°3", Answer: "Réponse 3", MediaRef: "fJ9rUzIMcZQ"},
}

type options struct {
	demo      bool
	queueSize int
	extractor catalog.Extractor
}

type Option func(*options)

// WithDemoSongs seeds a game that has never been saved with DemoSongs.
func WithDemoSongs() Option {
	return func(o *options) {
		o.demo = true
	}
}

func WithQueueSize(n int) Option {
	return func(o *options) {
		o.queueSize = n
	}
}

func WithExtractor(e catalog.Extractor) Option {
	return func(o *options) {
		o.extractor = e
	}
}

// BlindTest is not safe for concurrent use; the web hub serializes access.
type BlindTest struct {
	catalog  *catalog.Catalog
	roster   *roster.Roster
	playback *playback.Coordinator
	editor   *catalog.Editor

	songErr     error
	editErr     error
	playerErr   error
	summaryOpen bool

	log *slog.Logger
}

func storageKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + "/" + key
}

// New loads (or starts) the game saved under namespace. A nil medium keeps
// everything in memory.
func New(medium store.Medium, namespace string, logger *slog.Logger, opts ...Option) *BlindTest {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	o := options{queueSize: playback.DefaultQueueSize}
	for _, opt := range opts {
		opt(&o)
	}

	defSongs := []catalog.Song{}
	if o.demo {
		defSongs = append(defSongs, DemoSongs...)
	}

	bt := &BlindTest{log: logger}

	catalogOpts := []catalog.Option{catalog.WithDeleteHook(bt.songDeleted)}
	if o.extractor != nil {
		catalogOpts = append(catalogOpts, catalog.WithExtractor(o.extractor))
	}

	bt.catalog = catalog.New(
		store.New(medium, storageKey(namespace, catalog.StorageKey), defSongs, logger),
		catalogOpts...,
	)
	bt.roster = roster.New(
		store.New(medium, storageKey(namespace, roster.StorageKey), []roster.Player{}, logger),
	)
	bt.playback = playback.NewCoordinator(bt.catalog,
		playback.WithQueueSize(o.queueSize),
		playback.WithLogger(logger),
	)
	bt.editor = catalog.NewEditor(bt.catalog)

	return bt
}

func (bt *BlindTest) songDeleted(s catalog.Song) {
	bt.playback.Forget(s.ID)
	bt.editor.Forget(s.ID)
}

func (bt *BlindTest) Catalog() *catalog.Catalog {
	return bt.catalog
}

func (bt *BlindTest) Roster() *roster.Roster {
	return bt.roster
}

func (bt *BlindTest) Playback() *playback.Coordinator {
	return bt.playback
}

func (bt *BlindTest) Editor() *catalog.Editor {
	return bt.editor
}

func (bt *BlindTest) AddSong(title, answer, source string) error {
	_, err := bt.catalog.AddSong(title, answer, source)
	bt.songErr = err
	return err
}

func (bt *BlindTest) DeleteSong(id int) bool {
	return bt.catalog.DeleteSong(id)
}

func (bt *BlindTest) ToggleRevealed(id int) bool {
	return bt.catalog.ToggleRevealed(id)
}

func (bt *BlindTest) TogglePlay(id int) {
	bt.playback.TogglePlay(id)
}

func (bt *BlindTest) BeginEdit(id int) bool {
	bt.editErr = nil
	return bt.editor.Begin(id)
}

func (bt *BlindTest) SetDraft(d catalog.Draft) bool {
	return bt.editor.SetDraft(d)
}

func (bt *BlindTest) CancelEdit() {
	bt.editErr = nil
	bt.editor.Cancel()
}

// SaveEdit commits the draft. When the edited song is playing and its media
// changed, the widget keeps the old clip until the song is toggled again.
func (bt *BlindTest) SaveEdit() error {
	bt.editErr = bt.editor.Commit()
	return bt.editErr
}

// AddPlayer adds a player and records the outcome as the displayed error.
func (bt *BlindTest) AddPlayer(name string) error {
	_, err := bt.roster.AddPlayer(name)
	bt.playerErr = err
	return err
}

// NameInput is called whenever the new-player name field changes.
func (bt *BlindTest) NameInput() {
	bt.playerErr = nil
}

func (bt *BlindTest) PlayerError() error {
	return bt.playerErr
}

func (bt *BlindTest) RemovePlayer(id int) bool {
	return bt.roster.RemovePlayer(id)
}

func (bt *BlindTest) AdjustScore(id, delta int) bool {
	return bt.roster.AdjustScore(id, delta)
}

// EndGame stops the music and opens the podium.
func (bt *BlindTest) EndGame() []roster.Player {
	bt.playback.Stop()
	bt.summaryOpen = true
	return bt.roster.RankedSnapshot()
}

func (bt *BlindTest) CloseSummary() {
	bt.summaryOpen = false
}

func (bt *BlindTest) WidgetReady(w playback.Widget) {
	bt.playback.Attach(w)
}

func (bt *BlindTest) WidgetGone() {
	bt.playback.Detach()
}
