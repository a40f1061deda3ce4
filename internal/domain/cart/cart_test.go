package cart

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(price int64) Item {
	return Item{ProductID: uuid.New(), Name: "Oignons", Price: price, FarmerID: uuid.New()}
}

func TestTotal_Scenario(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item(1000), 2)
	c.Add(item(500), 1)

	assert.Equal(t, int64(2500), c.Total())
}

func TestAdd_DefaultsQuantityAndKeepsDuplicates(t *testing.T) {
	t.Parallel()

	c := New()
	it := item(750)
	a := c.Add(it, 0)
	b := c.Add(it, 1)

	assert.Equal(t, 1, a.Quantity)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1500), c.Total())
}

func TestAddThenRemove_RestoresPriorState(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item(1000), 3)
	before := c.Lines()

	l := c.Add(item(200), 1)
	require.True(t, c.Remove(l.ID))

	assert.Equal(t, before, c.Lines())
}

func TestRemove_MissingIsNoop(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item(1000), 1)
	assert.False(t, c.Remove(uuid.New()))
	assert.Equal(t, 1, c.Len())
}

func TestDecrementFromOne_RemovesLine(t *testing.T) {
	t.Parallel()

	c := New()
	l := c.Add(item(1000), 1)

	_, removed, found := c.Decrement(l.ID)
	assert.True(t, found)
	assert.True(t, removed)
	assert.Equal(t, 0, c.Len())
}

func TestIncrementDecrement(t *testing.T) {
	t.Parallel()

	c := New()
	l := c.Add(item(100), 1)

	got, _, _ := c.Increment(l.ID)
	assert.Equal(t, 2, got.Quantity)
	got, removed, _ := c.Decrement(l.ID)
	assert.Equal(t, 1, got.Quantity)
	assert.False(t, removed)

	_, _, found := c.Increment(uuid.New())
	assert.False(t, found)
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		quantity    int
		wantRemoved bool
		wantLen     int
	}{
		{name: "set", quantity: 5, wantLen: 1},
		{name: "one", quantity: 1, wantLen: 1},
		{name: "zero removes", quantity: 0, wantRemoved: true, wantLen: 0},
		{name: "negative removes", quantity: -2, wantRemoved: true, wantLen: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := New()
			l := c.Add(item(300), 2)

			got, removed, found := c.UpdateQuantity(l.ID, tt.quantity)
			require.True(t, found)
			assert.Equal(t, tt.wantRemoved, removed)
			assert.Equal(t, tt.wantLen, c.Len())
			if !removed {
				assert.Equal(t, tt.quantity, got.Quantity)
			}
		})
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item(1), 1)
	c.Add(item(2), 1)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Zero(t, c.Total())
}

// The total always equals the sum over the lines, whatever the operations.
func TestTotal_RandomOperations(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	c := New()

	for i := 0; i < 500; i++ {
		lines := c.Lines()
		switch op := rng.Intn(5); {
		case op == 0 || len(lines) == 0:
			c.Add(item(int64(rng.Intn(5000))), rng.Intn(4))
		case op == 1:
			c.UpdateQuantity(lines[rng.Intn(len(lines))].ID, rng.Intn(6)-1)
		case op == 2:
			c.Decrement(lines[rng.Intn(len(lines))].ID)
		case op == 3:
			c.Increment(lines[rng.Intn(len(lines))].ID)
		default:
			c.Remove(lines[rng.Intn(len(lines))].ID)
		}

		var want int64
		for _, l := range c.Lines() {
			require.GreaterOrEqual(t, l.Quantity, 1)
			want += l.Price * int64(l.Quantity)
		}
		require.Equal(t, want, c.Total())
	}
}

func TestCheckout_ClearsOnSuccess(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item(1000), 2)

	var seen []Line
	err := c.Checkout(func(lines []Line) error {
		seen = lines
		assert.Equal(t, 0, c.Len())
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 1)
	assert.Equal(t, 0, c.Len())
}

func TestCheckout_RestoresOnFailure(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item(1000), 2)
	before := c.Lines()

	var added Line
	boom := errors.New("insert failed")
	err := c.Checkout(func([]Line) error {
		added = c.Add(item(10), 1)
		return boom
	})
	require.ErrorIs(t, err, boom)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, before[0], lines[0])
	assert.Equal(t, added.ID, lines[1].ID)
}

func TestCheckout_Empty(t *testing.T) {
	t.Parallel()

	err := New().Checkout(func([]Line) error { return nil })
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCheckout_ConcurrentOnlyOneWins(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item(1000), 1)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		commits int
	)
	release := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Checkout(func([]Line) error {
				<-release
				mu.Lock()
				commits++
				mu.Unlock()
				return nil
			})
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, 1, commits)
}

func TestSessions(t *testing.T) {
	t.Parallel()

	s := NewSessions()
	buyer := uuid.New()

	c := s.Open(buyer)
	c.Add(item(100), 1)
	assert.Same(t, c, s.Open(buyer))

	got, ok := s.Get(buyer)
	require.True(t, ok)
	assert.Equal(t, 1, got.Len())

	s.Close(buyer)
	_, ok = s.Get(buyer)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Open(buyer).Len())
}
