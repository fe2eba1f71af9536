package ch

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePollOrder(t *testing.T) {
	q := newNodeQueue(5)
	q.insert(0, 30)
	q.insert(1, 10)
	q.insert(2, 20)
	q.insert(3, 10)
	q.insert(4, 5)

	require.Equal(t, 5, q.size())
	assert.Equal(t, 5, q.peekMinPriority())

	// Equal priorities break ties by ascending node id.
	assert.Equal(t, uint32(4), q.pollMinKey())
	assert.Equal(t, uint32(1), q.pollMinKey())
	assert.Equal(t, uint32(3), q.pollMinKey())
	assert.Equal(t, uint32(2), q.pollMinKey())
	assert.Equal(t, uint32(0), q.pollMinKey())
	assert.True(t, q.isEmpty())
}

func TestQueueUpdate(t *testing.T) {
	q := newNodeQueue(3)
	q.insert(0, 10)
	q.insert(1, 20)
	q.insert(2, 30)

	// Demote the minimum.
	q.update(0, 10, 40)
	assert.Equal(t, uint32(1), q.pollMinKey())

	// Promote the maximum.
	q.update(2, 30, 1)
	assert.Equal(t, uint32(2), q.pollMinKey())
	assert.Equal(t, uint32(0), q.pollMinKey())
}

func TestQueueReinsertAfterPoll(t *testing.T) {
	q := newNodeQueue(2)
	q.insert(0, 5)
	q.insert(1, 10)

	node := q.pollMinKey()
	require.Equal(t, uint32(0), node)

	// Demoted node goes back in with a new priority.
	q.insert(node, 50)
	assert.Equal(t, uint32(1), q.pollMinKey())
	assert.Equal(t, uint32(0), q.pollMinKey())
}

func TestQueueRandomizedAgainstSort(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const n = 200

	q := newNodeQueue(n)
	prios := make([]int, n)
	for i := uint32(0); i < n; i++ {
		prios[i] = rng.Intn(40) // collisions on purpose
		q.insert(i, prios[i])
	}

	// Random priority updates.
	for i := 0; i < 100; i++ {
		node := uint32(rng.Intn(n))
		next := rng.Intn(40)
		q.update(node, prios[node], next)
		prios[node] = next
	}

	type key struct {
		prio int
		node uint32
	}
	expected := make([]key, n)
	for i := uint32(0); i < n; i++ {
		expected[i] = key{prios[i], i}
	}
	sort.Slice(expected, func(a, b int) bool {
		if expected[a].prio != expected[b].prio {
			return expected[a].prio < expected[b].prio
		}
		return expected[a].node < expected[b].node
	})

	for i := 0; i < n; i++ {
		require.Equal(t, expected[i].prio, q.peekMinPriority(), "at poll %d", i)
		require.Equal(t, expected[i].node, q.pollMinKey(), "at poll %d", i)
	}
	assert.True(t, q.isEmpty())
}
