package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	c := New("u1")
	assert.Equal(t, "u1", c.UserID)
	assert.True(t, c.Alive)
	assert.False(t, c.Placed)
}

func TestPlaceAt_Revives(t *testing.T) {
	c := New("u1")
	c.Eliminate()
	assert.False(t, c.Alive)

	c.PlaceAt(3, 7)
	assert.True(t, c.Placed)
	assert.True(t, c.Alive, "placement resets the alive flag for the next round")
	assert.Equal(t, 3, c.X)
	assert.Equal(t, 7, c.Y)
}

func TestUnplace(t *testing.T) {
	c := New("u1")
	c.PlaceAt(1, 2)
	c.Unplace()
	assert.False(t, c.Placed)
}
