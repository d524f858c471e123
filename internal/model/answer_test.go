package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerKind(t *testing.T) {
	assert.Equal(t, AnswerNone, NoAnswer().Kind())
	assert.Equal(t, AnswerText, TextAnswer("Paris").Kind())
	assert.Equal(t, AnswerList, ListAnswer("A", "B").Kind())
	assert.Equal(t, AnswerJustified, JustifiedAnswer("True", "because").Kind())

	var zero Answer
	assert.Equal(t, AnswerNone, zero.Kind())
	assert.False(t, zero.Answered())
}

func TestAnswerEqualText(t *testing.T) {
	assert.True(t, TextAnswer("Paris").Equal(TextAnswer("Paris")))
	// Comparison is case sensitive.
	assert.False(t, TextAnswer("paris").Equal(TextAnswer("Paris")))
	assert.False(t, TextAnswer("").Equal(TextAnswer("Paris")))
}

func TestAnswerEqualList(t *testing.T) {
	assert.True(t, ListAnswer("A", "C").Equal(ListAnswer("A", "C")))
	// Order matters.
	assert.False(t, ListAnswer("C", "A").Equal(ListAnswer("A", "C")))
	assert.False(t, ListAnswer("A").Equal(ListAnswer("A", "C")))
	assert.True(t, ListAnswer().Equal(ListAnswer()))
}

func TestAnswerEqualJustified(t *testing.T) {
	a := JustifiedAnswer("True", "Water boils at 100C at sea level")
	assert.True(t, a.Equal(JustifiedAnswer("True", "Water boils at 100C at sea level")))
	assert.False(t, a.Equal(JustifiedAnswer("True", "water boils at 100c at sea level")))
	assert.False(t, a.Equal(JustifiedAnswer("False", "Water boils at 100C at sea level")))
}

func TestAnswerEqualAcrossKinds(t *testing.T) {
	assert.False(t, TextAnswer("A").Equal(ListAnswer("A")))
	assert.False(t, NoAnswer().Equal(NoAnswer()))
	assert.False(t, NoAnswer().Equal(TextAnswer("")))
}

func TestAnswerJSONRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   Answer
		wire string
	}{
		{"none", NoAnswer(), `null`},
		{"text", TextAnswer("Paris"), `"Paris"`},
		{"list", ListAnswer("A", "C"), `["A","C"]`},
		{"justified", JustifiedAnswer("True", "why"), `{"selection":"True","justification":"why"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.in)
			require.NoError(t, err)
			assert.JSONEq(t, tc.wire, string(raw))

			var out Answer
			require.NoError(t, json.Unmarshal(raw, &out))
			assert.Equal(t, tc.in.Kind(), out.Kind())
			if tc.in.Answered() {
				assert.True(t, tc.in.Equal(out))
			}
		})
	}
}

func TestAnswerUnmarshalRejectsOtherShapes(t *testing.T) {
	var a Answer
	assert.Error(t, json.Unmarshal([]byte(`42`), &a))
	assert.Error(t, json.Unmarshal([]byte(`true`), &a))
}

func TestAnswerInsideStruct(t *testing.T) {
	type envelope struct {
		Answer Answer `json:"answer"`
	}

	var e envelope
	require.NoError(t, json.Unmarshal([]byte(`{"answer":["X","Y"]}`), &e))
	list, ok := e.Answer.List()
	require.True(t, ok)
	assert.Equal(t, []string{"X", "Y"}, list)

	require.NoError(t, json.Unmarshal([]byte(`{}`), &e))
}
