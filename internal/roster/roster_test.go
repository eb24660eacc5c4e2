package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	r := New()

	s, err := r.Join("conn-1", "  Sam  ")
	require.NoError(t, err)
	assert.Equal(t, "Sam", s.Name)
	assert.Equal(t, "conn-1", s.ConnectionID)
	assert.False(t, s.HasAnswered)
	assert.NotZero(t, s.JoinedAt)
	assert.Equal(t, 1, r.Size())
}

func TestJoinEmptyName(t *testing.T) {
	r := New()

	_, err := r.Join("conn-1", "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Equal(t, 0, r.Size())
}

func TestJoinDuplicateName(t *testing.T) {
	r := New()

	_, err := r.Join("conn-1", "Sam")
	require.NoError(t, err)

	_, err = r.Join("conn-2", "Sam")
	assert.ErrorIs(t, err, ErrNameTaken)

	// Trimmed comparison: " Sam " collides with "Sam".
	_, err = r.Join("conn-3", " Sam ")
	assert.ErrorIs(t, err, ErrNameTaken)

	// Case-sensitive: "sam" does not.
	_, err = r.Join("conn-4", "sam")
	assert.NoError(t, err)
}

func TestLeaveIdempotent(t *testing.T) {
	r := New()
	joined, err := r.Join("conn-1", "Sam")
	require.NoError(t, err)

	left := r.Leave("conn-1")
	require.NotNil(t, left)
	assert.Equal(t, joined.ID, left.ID)

	assert.Nil(t, r.Leave("conn-1"))
	assert.Nil(t, r.Leave("never-joined"))
	assert.Equal(t, 0, r.Size())
}

func TestRemoveByID(t *testing.T) {
	r := New()
	s, err := r.Join("conn-1", "Sam")
	require.NoError(t, err)

	assert.Nil(t, r.RemoveByID("not-an-id"))
	assert.Equal(t, 1, r.Size())

	removed := r.RemoveByID(s.ID.String())
	require.NotNil(t, removed)
	assert.Equal(t, s.ID, removed.ID)
	assert.Equal(t, 0, r.Size())
}

func TestAnsweredFlags(t *testing.T) {
	r := New()
	a, _ := r.Join("conn-1", "Ana")
	b, _ := r.Join("conn-2", "Ben")

	r.MarkAnswered(a.ID)
	assert.True(t, a.HasAnswered)
	assert.False(t, b.HasAnswered)

	r.ResetAllAnswered()
	assert.False(t, a.HasAnswered)
	assert.False(t, b.HasAnswered)
}

func TestSnapshotJoinOrder(t *testing.T) {
	r := New()
	_, _ = r.Join("conn-1", "Ana")
	_, _ = r.Join("conn-2", "Ben")
	_, _ = r.Join("conn-3", "Cal")
	r.Leave("conn-2")
	_, _ = r.Join("conn-4", "Dee")

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "Ana", snap[0].Name)
	assert.Equal(t, "Cal", snap[1].Name)
	assert.Equal(t, "Dee", snap[2].Name)
}

func TestSnapshotReturnsCopies(t *testing.T) {
	r := New()
	s, _ := r.Join("conn-1", "Ana")

	snap := r.Snapshot()
	snap[0].Name = "mutated"
	assert.Equal(t, "Ana", s.Name)
}
