// Package session tracks per-chat conversation state for the subtitle bot.
//
// Each chat progresses through an explicit state machine: idle, awaiting a
// language choice, awaiting a video upload, and processing. Transitions are
// pure functions over tagged state values so the conversation flow can be
// tested without a live chat transport.
package session

import "fmt"

// Kind identifies a conversation state variant.
type Kind string

const (
	KindIdle             Kind = "idle"
	KindAwaitingLanguage Kind = "awaiting_language"
	KindAwaitingUpload   Kind = "awaiting_upload"
	KindProcessing       Kind = "processing"
)

// State is a tagged conversation state. Exactly one variant applies at a time.
type State interface {
	Kind() Kind
}

// Idle is the resting state; no conversion is in progress.
type Idle struct{}

func (Idle) Kind() Kind { return KindIdle }

// AwaitingLanguage means a conversion was requested and the bot is waiting for
// a language selection.
type AwaitingLanguage struct{}

func (AwaitingLanguage) Kind() Kind { return KindAwaitingLanguage }

// AwaitingUpload means a language was chosen and the bot is waiting for a
// video file.
type AwaitingUpload struct {
	Language string
}

func (AwaitingUpload) Kind() Kind { return KindAwaitingUpload }

// Processing means an upload was accepted and a job is in the queue.
type Processing struct {
	Language string
	JobID    int64
}

func (Processing) Kind() Kind { return KindProcessing }

// Event drives a transition between conversation states.
type Event interface {
	event()
}

// ConvertRequested is raised by the /convert command.
type ConvertRequested struct{}

// LanguageChosen is raised when the user picks a subtitle language.
type LanguageChosen struct {
	Language string
}

// UploadAccepted is raised when a valid video upload was staged and enqueued.
type UploadAccepted struct {
	JobID int64
}

// JobFinished is raised when the queued job reaches a terminal status.
type JobFinished struct{}

// CancelRequested is raised by the /cancel command.
type CancelRequested struct{}

func (ConvertRequested) event() {}
func (LanguageChosen) event()   {}
func (UploadAccepted) event()   {}
func (JobFinished) event()      {}
func (CancelRequested) event()  {}

// ErrInvalidTransition reports an event that does not apply to the current
// state. The conversation state is left unchanged.
type ErrInvalidTransition struct {
	From  Kind
	Event Event
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("event %T does not apply in state %s", e.Event, e.From)
}

// Transition applies an event to a state and returns the next state. It is a
// pure function: unknown combinations return ErrInvalidTransition and the
// original state.
func Transition(state State, event Event) (State, error) {
	if state == nil {
		state = Idle{}
	}

	switch ev := event.(type) {
	case ConvertRequested:
		switch state.(type) {
		case Idle:
			return AwaitingLanguage{}, nil
		}
	case LanguageChosen:
		switch state.(type) {
		case AwaitingLanguage:
			return AwaitingUpload{Language: ev.Language}, nil
		}
	case UploadAccepted:
		switch s := state.(type) {
		case AwaitingUpload:
			return Processing{Language: s.Language, JobID: ev.JobID}, nil
		}
	case JobFinished:
		switch state.(type) {
		case Processing:
			return Idle{}, nil
		}
	case CancelRequested:
		switch state.(type) {
		case AwaitingLanguage, AwaitingUpload, Processing:
			return Idle{}, nil
		}
	}

	return state, &ErrInvalidTransition{From: state.Kind(), Event: event}
}
