package seats

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadBoard(t *testing.T, seats [][]int) *Board {
	t.Helper()
	m, err := NewSeatMap("m-test", "Test", seats)
	require.NoError(t, err)
	b := NewBoard()
	b.Load(m)
	return b
}

func TestBoard_StatusAtScenario(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{
		{0, 0, 1},
		{0, 1, 0},
		{1, 0, 0},
	})

	assert.True(t, b.Toggle(0, 1))

	assert.Equal(t, StatusAvailable, b.StatusAt(0, 0))
	assert.Equal(t, StatusSelected, b.StatusAt(0, 1))
	assert.Equal(t, StatusReserved, b.StatusAt(0, 2))
	assert.Equal(t, StatusReserved, b.StatusAt(2, 0))
}

func TestBoard_ToggleReservedIsNoop(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	seats := make([][]int, 12)
	for y := range seats {
		seats[y] = make([]int, 9)
		for x := range seats[y] {
			if rng.Intn(3) == 0 {
				seats[y][x] = CellReserved
			}
		}
	}
	b := loadBoard(t, seats)

	for y, row := range seats {
		for x, v := range row {
			if v != CellReserved {
				continue
			}
			assert.False(t, b.Toggle(y, x))
			assert.False(t, b.IsSelected(y, x))
		}
	}
	assert.Zero(t, b.Count())
}

func TestBoard_DoubleToggleParity(t *testing.T) {
	t.Parallel()
	seats := make([][]int, 6)
	for y := range seats {
		seats[y] = make([]int, 6)
	}
	b := loadBoard(t, seats)

	rng := rand.New(rand.NewSource(42))
	flips := map[Key]int{}
	for i := 0; i < 200; i++ {
		row, col := rng.Intn(6), rng.Intn(6)
		require.True(t, b.Toggle(row, col))
		flips[KeyOf(row, col)]++
	}

	want := []Coordinate{}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			if flips[KeyOf(y, x)]%2 == 1 {
				want = append(want, Coordinate{X: x, Y: y})
			}
		}
	}
	assert.Equal(t, want, b.Coordinates())
	assert.Equal(t, len(want), b.Count())
}

func TestBoard_StatusAtTrustsGridOverSelection(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{{0, 1}})

	// Force the selection into a state Toggle would never produce.
	b.selection.Flip(0, 1)

	assert.Equal(t, StatusReserved, b.StatusAt(0, 1))
}

func TestBoard_ToggleOutOfRange(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{{0, 0}})

	assert.False(t, b.Toggle(-1, 0))
	assert.False(t, b.Toggle(0, 2))
	assert.False(t, b.Toggle(1, 0))
	assert.Zero(t, b.Count())
}

func TestBoard_CoordinatesSortedByRowThenColumn(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{
		{0, 0, 0},
		{0, 0, 0},
	})
	b.Toggle(1, 0)
	b.Toggle(0, 2)
	b.Toggle(0, 1)

	assert.Equal(t, []Coordinate{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}}, b.Coordinates())
}

func TestBoard_LoadClearsSelectionAndAdvancesGeneration(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{{0, 0}})
	b.Toggle(0, 0)
	gen := b.Generation()

	m, err := NewSeatMap("m-other", "", [][]int{{0}})
	require.NoError(t, err)
	next := b.Load(m)

	assert.Greater(t, next, gen)
	assert.Zero(t, b.Count())
	assert.Equal(t, "m-other", b.MapID())
}

func TestBoard_ConfirmPurchase(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{{0, 0, 0}})
	b.Toggle(0, 0)
	b.Toggle(0, 2)
	gen, mapID, coords := b.Snapshot()
	require.Len(t, coords, 2)
	assert.Equal(t, "m-test", mapID)

	assert.True(t, b.ConfirmPurchase(gen, Coordinate{X: 2, Y: 0}))
	assert.Equal(t, StatusReserved, b.StatusAt(0, 2))
	assert.False(t, b.IsSelected(0, 2))
	assert.Equal(t, StatusSelected, b.StatusAt(0, 0))

	// Out-of-range confirmations are accepted but change nothing.
	assert.True(t, b.ConfirmPurchase(gen, Coordinate{X: 10, Y: 10}))
	assert.Equal(t, 1, b.Count())
}

func TestBoard_ConfirmPurchaseStaleGeneration(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{{0, 0}})
	b.Toggle(0, 0)
	gen, _, _ := b.Snapshot()

	m, err := NewSeatMap("m-next", "", [][]int{{0, 0}})
	require.NoError(t, err)
	b.Load(m)
	b.Toggle(0, 0)

	assert.False(t, b.ConfirmPurchase(gen, Coordinate{X: 0, Y: 0}))
	assert.Equal(t, StatusSelected, b.StatusAt(0, 0))
	assert.False(t, b.IsCurrent(gen))
}

func TestBoard_BlockClampsToGrid(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{
		{0, 1, 0},
		{1, 0, 0},
	})
	b.Toggle(1, 2)

	block := b.Block(-5, 10, 1, 50)
	assert.Equal(t, [][]SeatStatus{
		{StatusReserved, StatusAvailable},
		{StatusAvailable, StatusSelected},
	}, block)

	assert.Empty(t, b.Block(5, 9, 0, 3))
}

func TestBoard_Unload(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{{0}})
	gen := b.Generation()

	next := b.Unload()

	assert.Greater(t, next, gen)
	assert.True(t, b.IsCurrent(next))
	assert.False(t, b.Loaded())
	assert.False(t, b.IsCurrent(gen))
	assert.Nil(t, b.SeatMap())
	assert.Equal(t, StatusAvailable, b.StatusAt(0, 0))

	gen, mapID, coords := b.Snapshot()
	assert.Equal(t, next, gen)
	assert.Empty(t, mapID)
	assert.Empty(t, coords)
}

func TestBoard_LoadIfCurrent(t *testing.T) {
	t.Parallel()
	b := NewBoard()
	first, err := NewSeatMap("m213", "", [][]int{{0, 0}})
	require.NoError(t, err)
	second, err := NewSeatMap("m654", "", [][]int{{0}})
	require.NoError(t, err)

	// Two navigations start; the later one lands first.
	stale := b.Unload()
	fresh := b.Unload()

	gen, ok := b.LoadIfCurrent(fresh, second)
	require.True(t, ok)
	assert.Greater(t, gen, fresh)

	got, ok := b.LoadIfCurrent(stale, first)
	assert.False(t, ok)
	assert.Equal(t, gen, got)
	assert.Equal(t, "m654", b.MapID())
	assert.True(t, b.IsCurrent(gen))
}

func TestBoard_SnapshotMatchesLoadedMap(t *testing.T) {
	t.Parallel()
	b := loadBoard(t, [][]int{{0, 0}})
	next, err := NewSeatMap("m-next", "", [][]int{{0, 0, 0}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				b.Load(next.Clone())
			} else {
				b.Unload()
			}
		}
	}()

	for i := 0; i < 200; i++ {
		b.Toggle(0, 2)
		gen, mapID, coords := b.Snapshot()
		// A seat in column 2 only exists on m-next.
		for _, c := range coords {
			if c.X == 2 {
				assert.Equal(t, "m-next", mapID, "generation %d", gen)
			}
		}
		if mapID == "" {
			assert.Empty(t, coords)
		}
	}
	wg.Wait()
}

func TestBoard_Stats(t *testing.T) {
	t.Parallel()
	b := NewBoard()
	assert.Equal(t, Stats{}, b.Stats())

	b = loadBoard(t, [][]int{{0, 1, 0}, {1, 0, 0}})
	b.Toggle(0, 0)
	b.ConfirmPurchase(b.Generation(), Coordinate{X: 2, Y: 1})

	assert.Equal(t, Stats{MapID: "m-test", Name: "Test", Rows: 2, Columns: 3, Total: 6, Reserved: 3, Selected: 1}, b.Stats())
}
