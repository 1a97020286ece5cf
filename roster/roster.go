/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package roster tracks the players of a blind test and their scores.
package roster

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"github.com/ayoublk/blindtest/store"
)

const StorageKey = "blindTestPlayers"

var (
	ErrEmptyName     = errors.New("player name cannot be empty")
	ErrDuplicateName = errors.New("a player with this name already exists")
)

type Player struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Roster is not safe for concurrent use.
type Roster struct {
	players *store.Store[[]Player]
}

// New returns a roster persisted through players.
func New(players *store.Store[[]Player]) *Roster {
	return &Roster{players: players}
}

func (r *Roster) Players() []Player {
	return slices.Clone(r.players.Get())
}

func (r *Roster) Len() int {
	return len(r.players.Get())
}

func (r *Roster) Player(id int) (Player, bool) {
	for _, p := range r.players.Get() {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// AddPlayer trims name and appends a new player with a zero score. Names
// are unique among current players, ignoring case.
func (r *Roster) AddPlayer(name string) (Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Player{}, ErrEmptyName
	}

	players := r.players.Get()

	id := 0
	for _, p := range players {
		if strings.EqualFold(p.Name, name) {
			return Player{}, ErrDuplicateName
		}
		id = max(id, p.ID)
	}

	p := Player{ID: id + 1, Name: name}
	r.players.Set(append(slices.Clone(players), p))

	return p, nil
}

func (r *Roster) RemovePlayer(id int) bool {
	players := r.players.Get()

	i := slices.IndexFunc(players, func(p Player) bool { return p.ID == id })
	if i < 0 {
		return false
	}

	r.players.Set(slices.Delete(slices.Clone(players), i, i+1))
	return true
}

// AdjustScore adds delta to the player's score. Scores may go negative.
func (r *Roster) AdjustScore(id, delta int) bool {
	players := r.players.Get()

	i := slices.IndexFunc(players, func(p Player) bool { return p.ID == id })
	if i < 0 {
		return false
	}

	updated := slices.Clone(players)
	updated[i].Score += delta
	r.players.Set(updated)

	return true
}

// RankedSnapshot orders players by descending score. Ties keep the order
// players were added in.
func (r *Roster) RankedSnapshot() []Player {
	ranked := slices.Clone(r.players.Get())
	slices.SortStableFunc(ranked, func(a, b Player) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}
