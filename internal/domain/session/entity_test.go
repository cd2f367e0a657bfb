package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, kind Kind) *Session {
	t.Helper()
	s, err := New("sess-1", "player-1", kind)
	require.NoError(t, err)
	return s
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "player-1", KindQuiz)
	assert.ErrorIs(t, err, ErrInvalidSessionID)

	_, err = New("sess-1", "", KindQuiz)
	assert.ErrorIs(t, err, ErrInvalidPlayerKey)

	_, err = New("sess-1", "player-1", Kind("memory"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKind_IsChallenge(t *testing.T) {
	assert.True(t, KindRecycling.IsChallenge())
	assert.True(t, KindWater.IsChallenge())
	assert.False(t, KindQuiz.IsChallenge())
	assert.False(t, Kind("memory").IsChallenge())
}

func TestRecycling_FullFlow(t *testing.T) {
	s := newTestSession(t, KindRecycling)
	assert.Equal(t, 6, s.Target)

	// The board holds 2x paper, 2x plastic, 1x glass, 1x metal.
	drops := []string{"paper", "paper", "plastic", "plastic", "glass"}
	for _, category := range drops {
		out, err := s.RecordMatch(category, category)
		require.NoError(t, err)
		assert.True(t, out.Accepted)
		assert.False(t, out.Completed)
	}
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, StateActive, s.State)

	out, err := s.RecordMatch("metal", "metal")
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, StateCompleted, s.State)
	assert.Equal(t, 50, s.RewardPoints())
}

func TestRecordMatch_MismatchIsHintNotProgress(t *testing.T) {
	s := newTestSession(t, KindRecycling)

	out, err := s.RecordMatch("paper", "plastic")
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, "Try again! That item belongs in a different bin.", out.Hint)
	assert.Equal(t, 0, s.Count)

	// Mismatches do not consume items.
	items := s.RemainingItems()
	total := 0
	for _, it := range items {
		total += it.Count
	}
	assert.Equal(t, 6, total)
}

func TestRecordMatch_ItemMatchedAtMostOnce(t *testing.T) {
	s := newTestSession(t, KindRecycling)

	_, err := s.RecordMatch("glass", "glass")
	require.NoError(t, err)

	// Only one glass item is in play.
	_, err = s.RecordMatch("glass", "glass")
	assert.ErrorIs(t, err, ErrNoSuchItem)
	assert.Equal(t, 1, s.Count)
}

func TestWildlife_FullFlow(t *testing.T) {
	s := newTestSession(t, KindWildlife)
	assert.Equal(t, 5, s.Target)

	animals := []string{"bird", "fish", "bear", "bee"}
	for _, a := range animals {
		out, err := s.RecordMatch(a, a)
		require.NoError(t, err)
		assert.True(t, out.Accepted)
	}

	out, err := s.RecordMatch("frog", "frog")
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, 45, s.RewardPoints())
}

func TestWildlife_MismatchHint(t *testing.T) {
	s := newTestSession(t, KindWildlife)
	out, err := s.RecordMatch("bear", "fish")
	require.NoError(t, err)
	assert.Equal(t, "That animal needs a different habitat!", out.Hint)
}

func TestEnergy_ToggleFlow(t *testing.T) {
	s := newTestSession(t, KindEnergy)
	assert.Equal(t, 6, s.Target)

	elements := []string{"light", "tv", "computer", "fan", "heater"}
	for _, el := range elements {
		out, err := s.RecordToggle(el)
		require.NoError(t, err)
		assert.True(t, out.Accepted)
	}

	// Re-toggling an addressed element is a no-op.
	out, err := s.RecordToggle("light")
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, 5, s.Count)

	out, err = s.RecordToggle("charger")
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, 40, s.RewardPoints())
	assert.Len(t, s.AddressedElements(), 6)
}

func TestWater_ToggleFlow(t *testing.T) {
	s := newTestSession(t, KindWater)
	assert.Equal(t, 5, s.Target)

	for _, el := range []string{"leak-1", "leak-2", "leak-3", "leak-4"} {
		_, err := s.RecordToggle(el)
		require.NoError(t, err)
	}

	out, err := s.RecordToggle("leak-5")
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, 35, s.RewardPoints())
}

func TestRecordToggle_UnknownElement(t *testing.T) {
	s := newTestSession(t, KindEnergy)
	_, err := s.RecordToggle("microwave")
	assert.ErrorIs(t, err, ErrUnknownElement)
	assert.Equal(t, 0, s.Count)
}

func TestQuiz_ScoresCorrectAnswers(t *testing.T) {
	cases := []struct {
		name    string
		answers []int
		correct int
	}{
		{"all correct", []int{1, 2, 3}, 3},
		{"none correct", []int{0, 0, 0}, 0},
		{"mixed", []int{1, 0, 3}, 2},
		{"correct answers out of order", []int{0, 2, 3}, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t, KindQuiz)

			for i, answer := range tc.answers {
				out, err := s.RecordAnswer(answer)
				require.NoError(t, err)
				assert.True(t, out.Accepted, "answering always advances")
				if i == len(tc.answers)-1 {
					assert.True(t, out.Completed)
				}
			}

			assert.Equal(t, StateCompleted, s.State)
			assert.Equal(t, tc.correct, s.Count)
			assert.Equal(t, 20*tc.correct, s.RewardPoints())
		})
	}
}

func TestQuiz_CurrentQuestionAdvances(t *testing.T) {
	s := newTestSession(t, KindQuiz)

	q, ok := s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, 1, s.QuestionNumber())
	assert.Contains(t, q.Prompt, "3 R's")

	_, err := s.RecordAnswer(1)
	require.NoError(t, err)

	q, ok = s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, 2, s.QuestionNumber())
	assert.Contains(t, q.Prompt, "renewable")
}

func TestQuiz_InvalidOption(t *testing.T) {
	s := newTestSession(t, KindQuiz)

	_, err := s.RecordAnswer(7)
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = s.RecordAnswer(-1)
	assert.ErrorIs(t, err, ErrInvalidOption)

	// Rejected answers do not advance the quiz.
	assert.Equal(t, 1, s.QuestionNumber())
}

func TestFinishedSession_RejectsInteractions(t *testing.T) {
	s := newTestSession(t, KindWater)
	for _, el := range []string{"leak-1", "leak-2", "leak-3", "leak-4", "leak-5"} {
		_, err := s.RecordToggle(el)
		require.NoError(t, err)
	}
	require.Equal(t, StateCompleted, s.State)

	_, err := s.RecordToggle("leak-1")
	assert.ErrorIs(t, err, ErrFinished)
	assert.Equal(t, 5, s.Count, "counters must not be corrupted by late calls")
}

func TestAbandon(t *testing.T) {
	s := newTestSession(t, KindWildlife)
	_, err := s.RecordMatch("bird", "bird")
	require.NoError(t, err)

	require.NoError(t, s.Abandon())
	assert.Equal(t, StateAbandoned, s.State)

	// Terminal states reject everything, including a second abandon.
	assert.ErrorIs(t, s.Abandon(), ErrFinished)
	_, err = s.RecordMatch("fish", "fish")
	assert.ErrorIs(t, err, ErrFinished)
}

func TestVariantMismatch(t *testing.T) {
	s := newTestSession(t, KindRecycling)
	_, err := s.RecordToggle("light")
	assert.ErrorIs(t, err, ErrWrongVariant)
	_, err = s.RecordAnswer(0)
	assert.ErrorIs(t, err, ErrWrongVariant)

	q := newTestSession(t, KindQuiz)
	_, err = q.RecordMatch("paper", "paper")
	assert.ErrorIs(t, err, ErrWrongVariant)
}
