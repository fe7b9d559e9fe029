// Package model contains domain models passed between layers.
package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultScore is the starting score for every player slot not supplied on creation.
const DefaultScore uint8 = 40

// Game is the single persisted record: four player scores keyed by an ObjectID.
// The zero ID is omitted when encoding to BSON so the store assigns one on insert.
type Game struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Player1 uint8              `json:"player1" bson:"player1"`
	Player2 uint8              `json:"player2" bson:"player2"`
	Player3 uint8              `json:"player3" bson:"player3"`
	Player4 uint8              `json:"player4" bson:"player4"`
}

// DefaultGame returns a game with every player at DefaultScore and no id.
func DefaultGame() Game {
	return Game{
		Player1: DefaultScore,
		Player2: DefaultScore,
		Player3: DefaultScore,
		Player4: DefaultScore,
	}
}

// NewGame builds an unsaved game from creation fields. Unset slots keep DefaultScore.
// Callers are expected to have run Fields.ValidateCreate first.
func NewGame(f Fields) Game {
	g := DefaultGame()
	g.Apply(f)
	return g
}

// Apply overwrites the player slots that are set in f and leaves the rest untouched.
func (g *Game) Apply(f Fields) {
	if f.Player1.Set {
		g.Player1 = f.Player1.Value
	}
	if f.Player2.Set {
		g.Player2 = f.Player2.Value
	}
	if f.Player3.Set {
		g.Player3 = f.Player3.Value
	}
	if f.Player4.Set {
		g.Player4 = f.Player4.Value
	}
}

// Hex returns the wire form of the game identifier.
func (g Game) Hex() string {
	return g.ID.Hex()
}

// NewID generates a fresh identifier for stores that do not assign one themselves.
func NewID() primitive.ObjectID {
	return primitive.NewObjectID()
}

// ParseID parses a wire identifier. Any malformed input yields ErrInvalidID.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
