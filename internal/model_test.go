package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"5", 5 * time.Minute},
		{"5:30", 5*time.Minute + 30*time.Second},
		{"5.30", 5*time.Minute + 30*time.Second},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"-00:00:10", -10 * time.Second},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.Std(), tt.in)
	}

	for _, bad := range []string{"", "abc", "24:00:00", "00:60", "1:2:3:4", "5:"} {
		_, err := ParseDuration(bad)
		assert.ErrorIs(t, err, ErrInvalidDuration, bad)
	}
}

func TestDurationJSON(t *testing.T) {
	raw, err := json.Marshal(Duration(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"01:30:00"`, string(raw))

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"00:00:45"`), &d))
	assert.Equal(t, 45*time.Second, d.Std())

	assert.Error(t, json.Unmarshal([]byte(`45`), &d))
}

func TestMaybeSetJSON(t *testing.T) {
	var c ChangeWee
	require.NoError(t, json.Unmarshal([]byte(`{"mls":120,"comments":null}`), &c))

	mls, ok := c.Mls.Get()
	assert.True(t, ok)
	assert.Equal(t, 120, mls)

	comments, ok := c.Comments.Get()
	assert.True(t, ok)
	assert.Nil(t, comments)

	_, ok = c.Urgency.Get()
	assert.False(t, ok)

	w := Wee{Mls: 10, Urgency: 3, Comments: Ptr("old")}
	c.Apply(&w)
	assert.Equal(t, 120, w.Mls)
	assert.Equal(t, Urgency(3), w.Urgency)
	assert.Nil(t, w.Comments)

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mls":120,"comments":null}`, string(raw))
}

func TestMaybeSetValidationValue(t *testing.T) {
	assert.Nil(t, NoChange[int]().ValidationValue())
	assert.Equal(t, 4, Set(4).ValidationValue())
	assert.Equal(t, "", Set("").ValidationValue())
	assert.Nil(t, Set[*string](nil).ValidationValue())
	assert.Equal(t, "x", Set(Ptr("x")).ValidationValue())
}

func TestMaybeSetRejectsNullForRequiredFields(t *testing.T) {
	bodies := []struct {
		body string
		dst  any
	}{
		{`{"time":null}`, &ChangeWee{}},
		{`{"user_id":null}`, &ChangeNote{}},
		{`{"exercise_type":null}`, &ChangeExercise{}},
		{`{"consumption_type":null}`, &ChangeConsumption{}},
		{`{"unit":null}`, &ChangeConsumable{}},
		{`{"email":null}`, &ChangeUser{}},
		{`{"mls":null}`, &ChangeWee{}},
	}
	for _, tt := range bodies {
		err := json.Unmarshal([]byte(tt.body), tt.dst)
		assert.ErrorIs(t, err, ErrNullValue, tt.body)
	}

	var c ChangeExercise
	require.NoError(t, json.Unmarshal([]byte(`{"rpe":null,"comments":null}`), &c))
	rpe, ok := c.Rpe.Get()
	assert.True(t, ok)
	assert.Nil(t, rpe)
}

func TestEnumTitles(t *testing.T) {
	assert.Equal(t, "Indoor Cycling", ExerciseIndoorCycling.Title())
	assert.Equal(t, "Other", ExerciseType("unknown").Title())
	assert.Equal(t, "Very light", ExerciseRpe(1).Title())
	assert.Equal(t, "Maximal effort", ExerciseRpe(10).Title())
	assert.Empty(t, ExerciseRpe(11).Title())
	assert.Equal(t, "Inhale nose", ConsumptionInhaleNose.Title())
	assert.Equal(t, "IU", UnitInternationalUnits.Postfix())
	assert.Empty(t, UnitNumber.Postfix())
}

func TestSymptomDetails(t *testing.T) {
	s := Symptom{AbdominalPain: 4, AbdominalPainLocation: Ptr("left")}
	details := s.Details()
	require.Len(t, details, 3)
	assert.Equal(t, "abdominal_pain", details[1].Field)
	assert.Equal(t, 4, details[1].Intensity)
	assert.Equal(t, "left", *details[1].Detail)
}

func TestNewEventBuild(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.FixedZone("", 10*3600))
	n := NewPoo{NewEventMeta: NewEventMeta{UserID: 1, Time: at}, Bristol: 4, Quantity: 2}
	p := n.Build(EventMeta{ID: 7, UserID: 1, Time: at})
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, Bristol(4), p.Bristol)
	assert.Equal(t, 2, p.Quantity)
	assert.True(t, p.Time.Equal(at))
}
