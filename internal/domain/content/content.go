// Package content holds the static educational content of the game:
// eco tips and learning topics. Selection is stateless; randomness is
// injected so tests can seed it deterministically.
package content

import (
	"math/rand"
	"strings"
	"sync"
)

// ecoTips is the fixed tip list shown on the home screen.
var ecoTips = []string{
	"Did you know? Turning off the lights when you leave a room can save enough energy to power a TV for 3 hours!",
	"Recycling one aluminum can saves enough energy to run a computer for 3 hours!",
	"Taking shorter showers can save up to 25 gallons of water per shower!",
	"Planting trees helps clean the air and provides homes for wildlife!",
	"Using both sides of paper can reduce paper waste by 50%!",
	"Walking or biking instead of driving helps reduce air pollution!",
}

// Topic is one learning-content entry.
type Topic struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// placeholderTopic is returned for unknown topic keys. Unknown keys are
// not errors: the UI shows the placeholder instead.
var placeholderTopic = Topic{
	Title: "Learning Content",
	Body:  "Content coming soon!",
}

// topics maps topic keys to their learning content.
var topics = map[string]Topic{
	"climate": {
		Title: "🌡️ Climate Change",
		Body: strings.Join([]string{
			"Climate change refers to long-term changes in Earth's weather patterns and temperatures.",
			"Why is it happening? Burning fossil fuels releases greenhouse gases, deforestation reduces CO2 absorption, and industrial activities increase emissions.",
			"What can you do? Use less energy at home, walk, bike, or use public transport, plant trees and support reforestation, and reduce, reuse, and recycle.",
		}, "\n\n"),
	},
	"recycling": {
		Title: "♻️ Recycling & Waste",
		Body: strings.Join([]string{
			"The 3 R's: Reduce - use less stuff. Reuse - find new uses for old things. Recycle - turn waste into new products.",
			"Fun recycling facts: recycling one aluminum can saves enough energy to run a TV for 3 hours! It takes 2,000 years for a glass bottle to decompose. Recycling paper saves trees and water.",
		}, "\n\n"),
	},
}

// Selector picks tips and looks up topics.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector with the given random source.
func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// RandomTip returns a uniformly random eco tip.
func (s *Selector) RandomTip() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ecoTips[s.rng.Intn(len(ecoTips))]
}

// Tips returns the full tip list.
func Tips() []string {
	out := make([]string, len(ecoTips))
	copy(out, ecoTips)
	return out
}

// Lookup returns the learning content for a topic key. Unknown keys
// return the placeholder; this never fails.
func Lookup(topicKey string) Topic {
	if t, ok := topics[topicKey]; ok {
		return t
	}
	return placeholderTopic
}

// TopicKeys returns the known topic keys.
func TopicKeys() []string {
	keys := make([]string, 0, len(topics))
	for k := range topics {
		keys = append(keys, k)
	}
	return keys
}
