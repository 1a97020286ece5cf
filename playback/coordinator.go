/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package playback keeps a single song playing at a time on an external
// player widget that becomes usable only after it reports ready.
package playback

import (
	"io"
	"log/slog"
)

const DefaultQueueSize = 32

// MinQueueSize fits the longest transition: pause, load, play.
const MinQueueSize = 3

// Widget is the external player. Calls are fire-and-forget.
type Widget interface {
	Load(ref string)
	Play()
	Pause()
}

// Resolver maps a song ID to its media reference.
type Resolver interface {
	MediaRef(songID int) (string, bool)
}

type op int

const (
	opLoad op = iota
	opPlay
	opPause
)

func (o op) String() string {
	switch o {
	case opLoad:
		return "load"
	case opPlay:
		return "play"
	case opPause:
		return "pause"
	}
	return "unknown"
}

type command struct {
	op  op
	ref string
}

// transition is the commands issued by one state change. The queue drops
// whole transitions so a load is never separated from its play.
type transition []command

type Option func(*Coordinator)

// WithQueueSize bounds the commands kept while no widget is ready. When the
// queue is full the oldest transitions are dropped. Sizes below
// MinQueueSize are raised to it.
func WithQueueSize(n int) Option {
	return func(c *Coordinator) {
		c.queueSize = max(n, MinQueueSize)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// Coordinator is either idle or playing exactly one song. It is not safe
// for concurrent use.
type Coordinator struct {
	resolver Resolver
	widget   Widget

	active  int
	playing bool

	queue     []transition
	queued    int
	queueSize int

	log *slog.Logger
}

func NewCoordinator(resolver Resolver, opts ...Option) *Coordinator {
	c := &Coordinator{
		resolver:  resolver,
		queueSize: DefaultQueueSize,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns the active song, if any.
func (c *Coordinator) State() (songID int, playing bool) {
	return c.active, c.playing
}

func (c *Coordinator) IsPlaying(songID int) bool {
	return c.playing && c.active == songID
}

func (c *Coordinator) Ready() bool {
	return c.widget != nil
}

// TogglePlay pauses songID if it is the active song, and otherwise switches
// playback to it. Unknown songs are ignored.
func (c *Coordinator) TogglePlay(songID int) {
	if c.IsPlaying(songID) {
		c.send(command{op: opPause})
		c.setIdle()
		return
	}

	ref, ok := c.resolver.MediaRef(songID)
	if !ok {
		return
	}

	var t transition
	if c.playing {
		t = append(t, command{op: opPause})
	}
	t = append(t, command{op: opLoad, ref: ref}, command{op: opPlay})

	c.send(t...)

	c.active = songID
	c.playing = true
}

// Forget stops playback if songID is the active song.
func (c *Coordinator) Forget(songID int) {
	if !c.IsPlaying(songID) {
		return
	}

	c.send(command{op: opPause})
	c.setIdle()
}

func (c *Coordinator) Stop() {
	if !c.playing {
		return
	}

	c.send(command{op: opPause})
	c.setIdle()
}

// Attach hands over the widget once it is ready and replays anything
// queued before that. A widget replacing another one while a song plays
// pauses the old one and picks the song up on the new one.
func (c *Coordinator) Attach(w Widget) {
	if w == nil {
		return
	}

	prev := c.widget
	c.widget = w

	if prev != nil && c.playing {
		prev.Pause()
	}

	queued := c.queue
	c.queue, c.queued = nil, 0

	if len(queued) > 0 {
		c.log.Debug("playback: draining queued transitions", "count", len(queued))

		for _, t := range queued {
			for _, cmd := range t {
				c.dispatch(cmd)
			}
		}
		return
	}

	if !c.playing {
		return
	}

	ref, ok := c.resolver.MediaRef(c.active)
	if !ok {
		c.setIdle()
		return
	}

	c.log.Debug("playback: resuming on new widget", "song", c.active)
	c.dispatch(command{op: opLoad, ref: ref})
	c.dispatch(command{op: opPlay})
}

// Detach forgets the widget. Commands queue again until the next Attach.
func (c *Coordinator) Detach() {
	c.widget = nil
}

func (c *Coordinator) setIdle() {
	c.active = 0
	c.playing = false
}

func (c *Coordinator) send(cmds ...command) {
	if c.widget != nil {
		for _, cmd := range cmds {
			c.dispatch(cmd)
		}
		return
	}

	for len(c.queue) > 0 && c.queued+len(cmds) > c.queueSize {
		c.log.Debug("playback: queue full, dropping oldest transition", "commands", len(c.queue[0]))
		c.queued -= len(c.queue[0])
		c.queue = c.queue[1:]
	}

	c.queue = append(c.queue, transition(cmds))
	c.queued += len(cmds)
}

func (c *Coordinator) dispatch(cmd command) {
	switch cmd.op {
	case opLoad:
		c.widget.Load(cmd.ref)
	case opPlay:
		c.widget.Play()
	case opPause:
		c.widget.Pause()
	}
}
