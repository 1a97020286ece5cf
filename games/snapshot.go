/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"github.com/ayoublk/blindtest/roster"
)

type SongView struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Answer   string `json:"answer,omitempty"` // only once revealed
	Revealed bool   `json:"revealed"`
	Playing  bool   `json:"playing"`
}

type EditView struct {
	SongID int    `json:"id"`
	Title  string `json:"title"`
	Answer string `json:"answer"`
	URL    string `json:"url"`
	Error  string `json:"error,omitempty"`
}

// Snapshot is everything the shared screen renders.
type Snapshot struct {
	Songs       []SongView      `json:"songs"`
	Players     []roster.Player `json:"players"`
	Playing     int             `json:"playing,omitempty"`
	Editing     *EditView       `json:"editing,omitempty"`
	SongError   string          `json:"song_error,omitempty"`
	PlayerError string          `json:"player_error,omitempty"`
	SummaryOpen bool            `json:"summary_open"`
	Summary     []roster.Player `json:"summary,omitempty"`
	WidgetReady bool            `json:"widget_ready"`
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (bt *BlindTest) Snapshot() Snapshot {
	songs := bt.catalog.Songs()

	snap := Snapshot{
		Songs:       make([]SongView, 0, len(songs)),
		Players:     bt.roster.Players(),
		SongError:   errText(bt.songErr),
		PlayerError: errText(bt.playerErr),
		WidgetReady: bt.playback.Ready(),
	}

	if id, playing := bt.playback.State(); playing {
		snap.Playing = id
	}

	for _, s := range songs {
		v := SongView{
			ID:       s.ID,
			Title:    s.Title,
			Revealed: s.Revealed,
			Playing:  bt.playback.IsPlaying(s.ID),
		}
		if s.Revealed {
			v.Answer = s.Answer
		}
		snap.Songs = append(snap.Songs, v)
	}

	if ed, ok := bt.editor.Editing(); ok {
		snap.Editing = &EditView{
			SongID: ed.SongID,
			Title:  ed.Draft.Title,
			Answer: ed.Draft.Answer,
			URL:    ed.Draft.MediaSource,
			Error:  errText(bt.editErr),
		}
	}

	if bt.summaryOpen {
		snap.SummaryOpen = true
		snap.Summary = bt.roster.RankedSnapshot()
	}

	return snap
}
