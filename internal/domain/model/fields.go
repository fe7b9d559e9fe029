package model

import (
	"bytes"
	"encoding/json"
)

// Score is a player slot in a create or update payload. It records whether the
// key was present so an omitted slot and an explicit null stay distinguishable.
type Score struct {
	Value uint8
	Set   bool // a number was supplied
	Null  bool // the key was present with a JSON null
}

// Some returns a Score carrying v.
func Some(v uint8) Score {
	return Score{Value: v, Set: true}
}

// UnmarshalJSON accepts a number in 0..255 or null. Anything else fails the decode.
func (s *Score) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = Score{Null: true}
		return nil
	}
	var v uint8
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Some(v)
	return nil
}

// MarshalJSON writes the value when set and null otherwise.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Set {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// Fields is the body of POST /games and PUT /games/{id}.
type Fields struct {
	Player1 Score `json:"player1"`
	Player2 Score `json:"player2"`
	Player3 Score `json:"player3"`
	Player4 Score `json:"player4"`
}

// ValidateCreate reports whether f carries the slots a new game requires.
func (f Fields) ValidateCreate() error {
	switch {
	case !f.Player1.Set:
		return ErrMissingPlayer1
	case !f.Player2.Set:
		return ErrMissingPlayer2
	}
	return nil
}

// Empty reports whether no slot is set, i.e. applying f changes nothing.
func (f Fields) Empty() bool {
	return !f.Player1.Set && !f.Player2.Set && !f.Player3.Set && !f.Player4.Set
}

// Changes maps the set slots to their stored column/field names.
func (f Fields) Changes() map[string]uint8 {
	out := make(map[string]uint8, 4)
	if f.Player1.Set {
		out["player1"] = f.Player1.Value
	}
	if f.Player2.Set {
		out["player2"] = f.Player2.Value
	}
	if f.Player3.Set {
		out["player3"] = f.Player3.Value
	}
	if f.Player4.Set {
		out["player4"] = f.Player4.Value
	}
	return out
}
