package content

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomTip_IsFromTipList(t *testing.T) {
	s := NewSelector(rand.New(rand.NewSource(1)))
	for i := 0; i < 50; i++ {
		assert.Contains(t, Tips(), s.RandomTip())
	}
}

func TestRandomTip_DeterministicWithSeed(t *testing.T) {
	a := NewSelector(rand.New(rand.NewSource(42)))
	b := NewSelector(rand.New(rand.NewSource(42)))
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.RandomTip(), b.RandomTip())
	}
}

func TestTips_ReturnsCopy(t *testing.T) {
	tips := Tips()
	require.Len(t, tips, 6)
	tips[0] = "mutated"
	assert.NotEqual(t, "mutated", Tips()[0])
}

func TestLookup_KnownTopics(t *testing.T) {
	climate := Lookup("climate")
	assert.Contains(t, climate.Title, "Climate Change")
	assert.Contains(t, climate.Body, "greenhouse gases")

	recycling := Lookup("recycling")
	assert.Contains(t, recycling.Title, "Recycling")
	assert.Contains(t, recycling.Body, "3 R's")
}

func TestLookup_UnknownTopicFallsBackToPlaceholder(t *testing.T) {
	topic := Lookup("oceans")
	assert.Equal(t, "Learning Content", topic.Title)
	assert.Equal(t, "Content coming soon!", topic.Body)
}

func TestTopicKeys(t *testing.T) {
	assert.ElementsMatch(t, []string{"climate", "recycling"}, TopicKeys())
}
