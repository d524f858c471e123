package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerKind identifies the shape of a submitted or reference answer.
type AnswerKind int

const (
	// AnswerNone is the absent marker: the question was never answered.
	AnswerNone AnswerKind = iota
	// AnswerText is a single string (single choice, true/false, short answer, essay).
	AnswerText
	// AnswerList is an ordered sequence of strings (multi-select, ordering, matching).
	AnswerList
	// AnswerJustified is a true/false selection with a written justification.
	AnswerJustified
)

// JustifiedChoice is the structured answer for justified true/false questions.
type JustifiedChoice struct {
	Selection     string `json:"selection"`
	Justification string `json:"justification"`
}

// Answer is a tagged union over the answer shapes the platform supports.
// The zero value is the absent marker ("no answer").
//
// On the wire an Answer is exactly the shape the exam UI produces:
// null, a JSON string, a JSON array of strings, or a
// {"selection": ..., "justification": ...} object.
type Answer struct {
	text      *string
	list      []string
	justified *JustifiedChoice
}

// NoAnswer returns the absent marker.
func NoAnswer() Answer {
	return Answer{}
}

// TextAnswer wraps a single string answer.
func TextAnswer(s string) Answer {
	return Answer{text: &s}
}

// ListAnswer wraps an ordered sequence answer. Order is significant.
func ListAnswer(items ...string) Answer {
	list := make([]string, len(items))
	copy(list, items)
	return Answer{list: list}
}

// JustifiedAnswer wraps a justified true/false answer.
func JustifiedAnswer(selection, justification string) Answer {
	return Answer{justified: &JustifiedChoice{Selection: selection, Justification: justification}}
}

// Kind reports the shape of the answer.
func (a Answer) Kind() AnswerKind {
	switch {
	case a.text != nil:
		return AnswerText
	case a.list != nil:
		return AnswerList
	case a.justified != nil:
		return AnswerJustified
	default:
		return AnswerNone
	}
}

// Answered reports whether an actual answer is present.
func (a Answer) Answered() bool {
	return a.Kind() != AnswerNone
}

// Text returns the string value for AnswerText answers.
func (a Answer) Text() (string, bool) {
	if a.text == nil {
		return "", false
	}
	return *a.text, true
}

// List returns a copy of the sequence for AnswerList answers.
func (a Answer) List() ([]string, bool) {
	if a.list == nil {
		return nil, false
	}
	out := make([]string, len(a.list))
	copy(out, a.list)
	return out, true
}

// Justified returns the structured value for AnswerJustified answers.
func (a Answer) Justified() (JustifiedChoice, bool) {
	if a.justified == nil {
		return JustifiedChoice{}, false
	}
	return *a.justified, true
}

// Equal reports structural deep equality between two answers.
// Sequences compare element-for-element in order; justified answers compare
// both selection and justification text exactly. An absent answer never
// equals anything, not even another absent answer.
func (a Answer) Equal(b Answer) bool {
	kind := a.Kind()
	if kind == AnswerNone || kind != b.Kind() {
		return false
	}
	switch kind {
	case AnswerText:
		return *a.text == *b.text
	case AnswerList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if a.list[i] != b.list[i] {
				return false
			}
		}
		return true
	case AnswerJustified:
		return *a.justified == *b.justified
	}
	return false
}

// MarshalJSON encodes the answer in its wire shape.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind() {
	case AnswerText:
		return json.Marshal(*a.text)
	case AnswerList:
		return json.Marshal(a.list)
	case AnswerJustified:
		return json.Marshal(a.justified)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any of the wire shapes, dispatching on the
// leading token.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = Answer{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if list == nil {
			list = []string{}
		}
		*a = Answer{list: list}
		return nil
	case '{':
		var jc JustifiedChoice
		if err := json.Unmarshal(trimmed, &jc); err != nil {
			return err
		}
		*a = Answer{justified: &jc}
		return nil
	default:
		return fmt.Errorf("answer: unsupported JSON shape starting with %q", trimmed[0])
	}
}
