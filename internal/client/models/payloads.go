package models

import (
	"encoding/json"
	"time"
)

// TypedPayload is implemented by every entity payload struct.
type TypedPayload interface {
	GetType() EntityType
}

// Wrap marshals a typed payload into the raw form stored on a Record.
func Wrap[T TypedPayload](v T) (json.RawMessage, error) {
	return json.Marshal(v)
}

// DecodePayload unmarshals raw payload bytes into the typed struct matching
// the entity type. Unknown types decode into a generic map.
func DecodePayload(t EntityType, data json.RawMessage) (any, error) {
	switch t {
	case EntityTypeNote:
		var v Note
		return v, json.Unmarshal(data, &v)
	case EntityTypeSubject:
		var v Subject
		return v, json.Unmarshal(data, &v)
	case EntityTypeTimetableSlot:
		var v TimetableSlot
		return v, json.Unmarshal(data, &v)
	case EntityTypeChatMessage:
		var v ChatMessage
		return v, json.Unmarshal(data, &v)
	case EntityTypeQuiz:
		var v Quiz
		return v, json.Unmarshal(data, &v)
	case EntityTypeDeck:
		var v Deck
		return v, json.Unmarshal(data, &v)
	case EntityTypeFlashcard:
		var v Flashcard
		return v, json.Unmarshal(data, &v)
	case EntityTypeAlarm:
		var v Alarm
		return v, json.Unmarshal(data, &v)
	case EntityTypeSetting:
		var v Setting
		return v, json.Unmarshal(data, &v)
	case EntityTypeAttachment:
		var v Attachment
		return v, json.Unmarshal(data, &v)
	default:
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Note is a free-form study note.
type Note struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

func (x Note) GetType() EntityType { return EntityTypeNote }

// Subject is a course the student takes.
type Subject struct {
	Name    string `json:"name"`
	Teacher string `json:"teacher,omitempty"`
	Color   string `json:"color,omitempty"`
}

func (x Subject) GetType() EntityType { return EntityTypeSubject }

// TimetableSlot is one recurring lesson in the weekly timetable.
// Weekday follows time.Weekday (0 = Sunday). Times are minutes from midnight.
type TimetableSlot struct {
	SubjectID   string `json:"subject_id"`
	Weekday     int    `json:"weekday"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Room        string `json:"room,omitempty"`
}

func (x TimetableSlot) GetType() EntityType { return EntityTypeTimetableSlot }

// ChatMessage is one message in a study-group thread.
type ChatMessage struct {
	ThreadID string    `json:"thread_id"`
	Author   string    `json:"author"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

func (x ChatMessage) GetType() EntityType { return EntityTypeChatMessage }

// QuizQuestion is a multiple-choice question; Answer indexes into Choices.
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
}

// Quiz is a self-test attached to a subject.
type Quiz struct {
	Title     string         `json:"title"`
	SubjectID string         `json:"subject_id,omitempty"`
	Questions []QuizQuestion `json:"questions"`
}

func (x Quiz) GetType() EntityType { return EntityTypeQuiz }

// Deck groups flashcards for review.
type Deck struct {
	Title     string `json:"title"`
	SubjectID string `json:"subject_id,omitempty"`
}

func (x Deck) GetType() EntityType { return EntityTypeDeck }

// Flashcard is a single front/back card plus its spaced-repetition state.
type Flashcard struct {
	DeckID string      `json:"deck_id"`
	Front  string      `json:"front"`
	Back   string      `json:"back"`
	Memory MemoryState `json:"memory"`
}

func (x Flashcard) GetType() EntityType { return EntityTypeFlashcard }

// Alarm is a study reminder.
type Alarm struct {
	Label    string    `json:"label"`
	FireAt   time.Time `json:"fire_at"`
	Weekdays []int     `json:"weekdays,omitempty"`
	Enabled  bool      `json:"enabled"`
}

func (x Alarm) GetType() EntityType { return EntityTypeAlarm }

// Setting is one user preference key/value pair.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (x Setting) GetType() EntityType { return EntityTypeSetting }

// Attachment references a file staged locally and uploaded to object storage.
type Attachment struct {
	NoteID     string `json:"note_id"`
	FileName   string `json:"file_name"`
	StorageKey string `json:"storage_key,omitempty"`
	Size       int64  `json:"size"`
	Uploaded   bool   `json:"uploaded"`
}

func (x Attachment) GetType() EntityType { return EntityTypeAttachment }
