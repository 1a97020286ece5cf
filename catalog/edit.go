/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

// EditState is either NotEditing or Editing.
type EditState interface {
	editState()
}

type NotEditing struct{}

// Draft is the in-progress form for an edited song. MediaSource is raw user
// input and is only turned into a reference on commit.
type Draft struct {
	Title       string `json:"title"`
	Answer      string `json:"answer"`
	MediaSource string `json:"url"`
}

type Editing struct {
	SongID int
	Draft  Draft
}

func (NotEditing) editState() {}
func (Editing) editState()    {}

// Editor is the edit buffer for one catalog. At most one song is edited at
// a time; beginning a new edit discards the previous draft.
type Editor struct {
	catalog *Catalog
	state   EditState
}

func NewEditor(c *Catalog) *Editor {
	return &Editor{catalog: c, state: NotEditing{}}
}

func (e *Editor) State() EditState {
	return e.state
}

// Editing reports the song under edit, if any.
func (e *Editor) Editing() (Editing, bool) {
	ed, ok := e.state.(Editing)
	return ed, ok
}

func (e *Editor) Begin(id int) bool {
	s, ok := e.catalog.Song(id)
	if !ok {
		return false
	}

	e.state = Editing{
		SongID: id,
		Draft: Draft{
			Title:       s.Title,
			Answer:      s.Answer,
			MediaSource: s.MediaRef,
		},
	}
	return true
}

func (e *Editor) SetDraft(d Draft) bool {
	ed, ok := e.state.(Editing)
	if !ok {
		return false
	}

	ed.Draft = d
	e.state = ed
	return true
}

func (e *Editor) Cancel() {
	e.state = NotEditing{}
}

// Commit validates the draft and writes it to the catalog. On a validation
// error the draft is kept so the host can fix it. A draft whose song has
// since been deleted is dropped.
func (e *Editor) Commit() error {
	ed, ok := e.state.(Editing)
	if !ok {
		return nil
	}

	_, err := e.catalog.UpdateSong(ed.SongID, Fields{
		Title:    ed.Draft.Title,
		Answer:   ed.Draft.Answer,
		MediaRef: ed.Draft.MediaSource,
	})
	if err != nil {
		return err
	}

	e.state = NotEditing{}
	return nil
}

// Forget drops the draft if it belongs to song id.
func (e *Editor) Forget(id int) {
	if ed, ok := e.state.(Editing); ok && ed.SongID == id {
		e.state = NotEditing{}
	}
}
