// Package session contains domain entities and business logic for
// tracking in-progress activity sessions: matching and toggle challenges
// plus the quiz game. This is a pure domain layer with zero external
// dependencies.
//
// One Session exists per open activity. It is created when the activity
// is launched, mutated by each qualifying interaction, and discarded when
// the completion reward is dispatched or the player closes the activity.
package session

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Domain errors for the session package.
var (
	ErrInvalidSessionID = errors.New("session: invalid session ID")
	ErrInvalidPlayerKey = errors.New("session: invalid player key")
	ErrUnknownKind      = errors.New("session: unknown activity kind")
	ErrFinished         = errors.New("session: session already finished")
	ErrWrongVariant     = errors.New("session: interaction does not match activity variant")
	ErrUnknownElement   = errors.New("session: unknown element")
	ErrNoSuchItem       = errors.New("session: no such item left in play")
	ErrInvalidOption    = errors.New("session: option index out of range")
)

// Kind identifies the activity variant.
type Kind string

const (
	// KindRecycling is the drag-and-drop waste sorting challenge.
	KindRecycling Kind = "recycling"
	// KindEnergy is the click-to-switch-off energy challenge.
	KindEnergy Kind = "energy"
	// KindWater is the click-to-fix water leak challenge.
	KindWater Kind = "water"
	// KindWildlife is the animal-to-habitat matching challenge.
	KindWildlife Kind = "wildlife"
	// KindQuiz is the three-question eco quiz game.
	KindQuiz Kind = "quiz"
)

// IsValid checks if the kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindRecycling, KindEnergy, KindWater, KindWildlife, KindQuiz:
		return true
	default:
		return false
	}
}

// IsChallenge reports whether the kind is a categorized challenge.
// The quiz is a game: it contributes points only.
func (k Kind) IsChallenge() bool {
	return k != KindQuiz && k.IsValid()
}

// Variant identifies the interaction style of a kind.
type Variant string

const (
	// VariantMatching accepts item/zone category pairs (recycling, wildlife).
	VariantMatching Variant = "matching"
	// VariantToggle accepts element identifiers addressed at most once
	// (energy, water).
	VariantToggle Variant = "toggle"
	// VariantQuiz accepts option indexes and advances per answer.
	VariantQuiz Variant = "quiz"
)

// VariantOf returns the interaction variant for a kind.
func VariantOf(k Kind) Variant {
	switch k {
	case KindRecycling, KindWildlife:
		return VariantMatching
	case KindEnergy, KindWater:
		return VariantToggle
	default:
		return VariantQuiz
	}
}

// State is the session lifecycle state.
type State string

const (
	// StateActive is the initial state: interactions are accepted.
	StateActive State = "active"
	// StateCompleted is terminal: the target was reached and a reward
	// is due.
	StateCompleted State = "completed"
	// StateAbandoned is terminal: the player closed the activity before
	// completing it. No reward.
	StateAbandoned State = "abandoned"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fixed per-kind rules
// ─────────────────────────────────────────────────────────────────────────────

// Completion targets per kind. These are in-session thresholds and are
// independent of the profile display-progress targets.
var targets = map[Kind]int{
	KindRecycling: 6,
	KindEnergy:    6,
	KindWater:     5,
	KindWildlife:  5,
	KindQuiz:      3,
}

// Flat completion rewards per challenge kind. The quiz reward is
// PointsPerCorrectAnswer times the number of correct answers instead.
var rewards = map[Kind]int{
	KindRecycling: 50,
	KindEnergy:    40,
	KindWater:     35,
	KindWildlife:  45,
}

// PointsPerCorrectAnswer is the quiz reward per correct answer.
const PointsPerCorrectAnswer = 20

// Target returns the completion target for a kind.
func Target(k Kind) int {
	return targets[k]
}

// matchingBoards lists the items in play per matching kind as
// category -> instance count. The recycling board has duplicate
// categories; wildlife animals are unique.
var matchingBoards = map[Kind]map[string]int{
	KindRecycling: {
		"paper":   2,
		"plastic": 2,
		"glass":   1,
		"metal":   1,
	},
	KindWildlife: {
		"bird": 1,
		"fish": 1,
		"bear": 1,
		"bee":  1,
		"frog": 1,
	},
}

// toggleBoards lists the addressable elements per toggle kind.
var toggleBoards = map[Kind][]string{
	KindEnergy: {"light", "tv", "computer", "fan", "heater", "charger"},
	KindWater:  {"leak-1", "leak-2", "leak-3", "leak-4", "leak-5"},
}

// Mismatch hints shown to the player. Mismatches are expected, frequent
// events, communicated as hints rather than failures.
const (
	hintRecycling = "Try again! That item belongs in a different bin."
	hintWildlife  = "That animal needs a different habitat!"
)

// ─────────────────────────────────────────────────────────────────────────────
// Quiz content
// ─────────────────────────────────────────────────────────────────────────────

// QuizQuestion is one quiz question with exactly one correct option.
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct int      `json:"-"`
}

// QuizQuestions returns the fixed question bank in play order.
func QuizQuestions() []QuizQuestion {
	return []QuizQuestion{
		{
			Prompt:  "What are the 3 R's of environmental protection?",
			Options: []string{"Read, Write, Repeat", "Reduce, Reuse, Recycle", "Run, Rest, Relax", "Red, Green, Blue"},
			Correct: 1,
		},
		{
			Prompt:  "Which energy source is renewable?",
			Options: []string{"Coal", "Oil", "Solar", "Gas"},
			Correct: 2,
		},
		{
			Prompt:  "How long does it take for a plastic bottle to decompose?",
			Options: []string{"1 year", "10 years", "100 years", "450+ years"},
			Correct: 3,
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Session entity
// ─────────────────────────────────────────────────────────────────────────────

// Session tracks the progress of one in-progress activity instance.
type Session struct {
	// ID is the unique session identifier (UUID string).
	ID string

	// PlayerKey identifies the owning player profile.
	PlayerKey string

	// Kind is the activity variant.
	Kind Kind

	// State is the lifecycle state.
	State State

	// Count is the progress counter, bounded [0, Target]. For the quiz
	// it counts correct answers.
	Count int

	// Target is the completion threshold.
	Target int

	// remaining holds matched-variant item instances still in play.
	remaining map[string]int

	// addressed holds toggle-variant elements already switched off/fixed.
	addressed map[string]bool

	// questions and questionIndex drive the quiz variant.
	questions     []QuizQuestion
	questionIndex int

	// StartedAt is when the activity was launched.
	StartedAt time.Time

	// LastActivityAt is updated by every accepted or rejected
	// interaction; the registry uses it to expire idle sessions.
	LastActivityAt time.Time
}

// New creates a session for the given activity kind.
func New(id, playerKey string, kind Kind) (*Session, error) {
	if id == "" {
		return nil, ErrInvalidSessionID
	}
	if playerKey == "" {
		return nil, ErrInvalidPlayerKey
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	now := time.Now().UTC()
	s := &Session{
		ID:             id,
		PlayerKey:      playerKey,
		Kind:           kind,
		State:          StateActive,
		Count:          0,
		Target:         Target(kind),
		StartedAt:      now,
		LastActivityAt: now,
	}

	switch VariantOf(kind) {
	case VariantMatching:
		s.remaining = make(map[string]int, len(matchingBoards[kind]))
		for category, n := range matchingBoards[kind] {
			s.remaining[category] = n
		}
	case VariantToggle:
		s.addressed = make(map[string]bool, len(toggleBoards[kind]))
		for _, el := range toggleBoards[kind] {
			s.addressed[el] = false
		}
	case VariantQuiz:
		s.questions = QuizQuestions()
	}

	return s, nil
}

// Outcome describes the effect of one interaction on the session.
type Outcome struct {
	// Accepted is true when the interaction advanced the session.
	Accepted bool

	// Correct is true for quiz answers that matched the correct option.
	// For other variants it mirrors Accepted.
	Correct bool

	// Completed is true when this interaction finished the session.
	Completed bool

	// Hint carries the non-blocking message for mismatches.
	Hint string
}

// ─────────────────────────────────────────────────────────────────────────────
// Transitions
// ─────────────────────────────────────────────────────────────────────────────

// RecordMatch processes an item dropped onto a zone for matching
// variants. A category match consumes one item instance and advances the
// counter; a mismatch leaves all counters untouched and yields a hint.
func (s *Session) RecordMatch(itemCategory, zoneCategory string) (Outcome, error) {
	if err := s.ensureActive(); err != nil {
		return Outcome{}, err
	}
	if VariantOf(s.Kind) != VariantMatching {
		return Outcome{}, ErrWrongVariant
	}

	s.LastActivityAt = time.Now().UTC()

	if itemCategory != zoneCategory {
		return Outcome{Hint: s.mismatchHint()}, nil
	}

	if s.remaining[itemCategory] <= 0 {
		return Outcome{}, fmt.Errorf("%w: %q", ErrNoSuchItem, itemCategory)
	}

	// Matched items leave play: each item can be matched at most once.
	s.remaining[itemCategory]--
	return s.recordCorrect(), nil
}

// RecordToggle processes a click on a toggle-variant element. The first
// toggle of an element advances the counter; re-toggling an already
// addressed element is a no-op.
func (s *Session) RecordToggle(elementID string) (Outcome, error) {
	if err := s.ensureActive(); err != nil {
		return Outcome{}, err
	}
	if VariantOf(s.Kind) != VariantToggle {
		return Outcome{}, ErrWrongVariant
	}

	s.LastActivityAt = time.Now().UTC()

	done, known := s.addressed[elementID]
	if !known {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownElement, elementID)
	}
	if done {
		return Outcome{}, nil
	}

	s.addressed[elementID] = true
	return s.recordCorrect(), nil
}

// RecordAnswer processes a quiz answer. Answering advances to the next
// question regardless of correctness; the counter tracks correct answers
// and completion occurs when the fixed question count is exhausted.
func (s *Session) RecordAnswer(optionIndex int) (Outcome, error) {
	if err := s.ensureActive(); err != nil {
		return Outcome{}, err
	}
	if VariantOf(s.Kind) != VariantQuiz {
		return Outcome{}, ErrWrongVariant
	}

	s.LastActivityAt = time.Now().UTC()

	q := s.questions[s.questionIndex]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidOption, optionIndex)
	}

	correct := optionIndex == q.Correct
	if correct {
		s.Count++
	}
	s.questionIndex++

	out := Outcome{Accepted: true, Correct: correct}
	if s.questionIndex >= len(s.questions) {
		s.State = StateCompleted
		out.Completed = true
	}
	return out, nil
}

// Abandon transitions an active session to the abandoned terminal state.
// The session is simply discarded: no reward and no profile side effects.
func (s *Session) Abandon() error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	s.State = StateAbandoned
	s.LastActivityAt = time.Now().UTC()
	return nil
}

// recordCorrect increments the bounded counter and completes the session
// when the target is reached.
func (s *Session) recordCorrect() Outcome {
	out := Outcome{Accepted: true, Correct: true}
	if s.Count < s.Target {
		s.Count++
	}
	if s.Count == s.Target {
		s.State = StateCompleted
		out.Completed = true
	}
	return out
}

// ensureActive rejects interactions with finished sessions without
// touching any counters.
func (s *Session) ensureActive() error {
	if s.State != StateActive {
		return fmt.Errorf("%w: state %s", ErrFinished, s.State)
	}
	return nil
}

func (s *Session) mismatchHint() string {
	if s.Kind == KindWildlife {
		return hintWildlife
	}
	return hintRecycling
}

// ─────────────────────────────────────────────────────────────────────────────
// Read accessors
// ─────────────────────────────────────────────────────────────────────────────

// RewardPoints returns the points due for this session's completion.
// Challenges carry a fixed reward; the quiz scales with correct answers.
func (s *Session) RewardPoints() int {
	if s.Kind == KindQuiz {
		return PointsPerCorrectAnswer * s.Count
	}
	return rewards[s.Kind]
}

// RemainingItems returns the matching-variant items still in play as a
// sorted category list with counts. Nil for other variants.
func (s *Session) RemainingItems() []ItemCount {
	if s.remaining == nil {
		return nil
	}
	items := make([]ItemCount, 0, len(s.remaining))
	for category, n := range s.remaining {
		if n > 0 {
			items = append(items, ItemCount{Category: category, Count: n})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Category < items[j].Category })
	return items
}

// ItemCount pairs an item category with the number of instances left.
type ItemCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// AddressedElements returns the toggle-variant elements already
// addressed, sorted. Nil for other variants.
func (s *Session) AddressedElements() []string {
	if s.addressed == nil {
		return nil
	}
	var done []string
	for el, ok := range s.addressed {
		if ok {
			done = append(done, el)
		}
	}
	sort.Strings(done)
	return done
}

// CurrentQuestion returns the quiz question awaiting an answer, or false
// when the session is not a quiz or all questions are exhausted.
func (s *Session) CurrentQuestion() (QuizQuestion, bool) {
	if s.questions == nil || s.questionIndex >= len(s.questions) {
		return QuizQuestion{}, false
	}
	return s.questions[s.questionIndex], true
}

// QuestionNumber returns the 1-based number of the current question.
func (s *Session) QuestionNumber() int {
	return s.questionIndex + 1
}

// String returns a log-friendly representation.
func (s *Session) String() string {
	return fmt.Sprintf("Session{ID: %s, Kind: %s, State: %s, Count: %d/%d}",
		s.ID, s.Kind, s.State, s.Count, s.Target)
}
