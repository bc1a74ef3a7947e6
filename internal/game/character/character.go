// Package character holds the per-user movable entity state: grid position,
// alive flag, and display nickname.
package character

// Character is a user's token on the room grid. It is created when the user
// joins and lives until the user leaves; elimination only flips Alive, the
// entity itself survives until the next placement.
//
// Invariant: when Placed is true, (X, Y) match the grid cell that references
// this character's UserID; when Placed is false, X and Y are meaningless.
type Character struct {
	UserID   string
	Nickname string
	X        int
	Y        int
	Placed   bool
	Alive    bool
}

// New creates an unplaced, alive Character for the given user.
//
// Precondition: userID must be non-empty.
func New(userID string) *Character {
	return &Character{
		UserID: userID,
		Alive:  true,
	}
}

// PlaceAt records a grid placement and revives the character for the round.
func (c *Character) PlaceAt(x, y int) {
	c.X = x
	c.Y = y
	c.Placed = true
	c.Alive = true
}

// MoveTo updates the stored position. The caller has already moved the
// character on the grid.
//
// Precondition: c.Placed is true.
func (c *Character) MoveTo(x, y int) {
	c.X = x
	c.Y = y
}

// Unplace removes the character from the board without destroying it.
func (c *Character) Unplace() {
	c.Placed = false
}

// Eliminate marks the character as out of the current round.
func (c *Character) Eliminate() {
	c.Alive = false
}
