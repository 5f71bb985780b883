package session

import (
	"errors"
	"testing"
)

func TestTransitionHappyPath(t *testing.T) {
	state, err := Transition(Idle{}, ConvertRequested{})
	if err != nil {
		t.Fatalf("convert from idle: %v", err)
	}
	if state.Kind() != KindAwaitingLanguage {
		t.Fatalf("expected awaiting_language, got %s", state.Kind())
	}

	state, err = Transition(state, LanguageChosen{Language: "km"})
	if err != nil {
		t.Fatalf("choose language: %v", err)
	}
	upload, ok := state.(AwaitingUpload)
	if !ok {
		t.Fatalf("expected AwaitingUpload, got %T", state)
	}
	if upload.Language != "km" {
		t.Fatalf("expected language km, got %q", upload.Language)
	}

	state, err = Transition(state, UploadAccepted{JobID: 12})
	if err != nil {
		t.Fatalf("accept upload: %v", err)
	}
	processing, ok := state.(Processing)
	if !ok {
		t.Fatalf("expected Processing, got %T", state)
	}
	if processing.Language != "km" || processing.JobID != 12 {
		t.Fatalf("unexpected processing state: %+v", processing)
	}

	state, err = Transition(state, JobFinished{})
	if err != nil {
		t.Fatalf("finish job: %v", err)
	}
	if state.Kind() != KindIdle {
		t.Fatalf("expected idle after completion, got %s", state.Kind())
	}
}

func TestTransitionCancel(t *testing.T) {
	cancelable := []State{
		AwaitingLanguage{},
		AwaitingUpload{Language: "en"},
		Processing{Language: "en", JobID: 3},
	}
	for _, from := range cancelable {
		state, err := Transition(from, CancelRequested{})
		if err != nil {
			t.Fatalf("cancel from %s: %v", from.Kind(), err)
		}
		if state.Kind() != KindIdle {
			t.Fatalf("expected idle after cancel from %s, got %s", from.Kind(), state.Kind())
		}
	}

	state, err := Transition(Idle{}, CancelRequested{})
	if err == nil {
		t.Fatal("expected error cancelling from idle")
	}
	if state.Kind() != KindIdle {
		t.Fatalf("expected state unchanged, got %s", state.Kind())
	}
}

func TestTransitionRejectsOutOfOrderEvents(t *testing.T) {
	cases := []struct {
		name  string
		state State
		event Event
	}{
		{"language before convert", Idle{}, LanguageChosen{Language: "en"}},
		{"upload before language", AwaitingLanguage{}, UploadAccepted{JobID: 1}},
		{"upload while idle", Idle{}, UploadAccepted{JobID: 1}},
		{"convert while awaiting upload", AwaitingUpload{Language: "en"}, ConvertRequested{}},
		{"convert while processing", Processing{Language: "en", JobID: 1}, ConvertRequested{}},
		{"finish while idle", Idle{}, JobFinished{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state, err := Transition(tc.state, tc.event)
			if err == nil {
				t.Fatal("expected invalid transition error")
			}
			var invalid *ErrInvalidTransition
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidTransition, got %T", err)
			}
			if state.Kind() != tc.state.Kind() {
				t.Fatalf("expected state unchanged, got %s", state.Kind())
			}
		})
	}
}

func TestTransitionNilStateDefaultsToIdle(t *testing.T) {
	state, err := Transition(nil, ConvertRequested{})
	if err != nil {
		t.Fatalf("convert from nil state: %v", err)
	}
	if state.Kind() != KindAwaitingLanguage {
		t.Fatalf("expected awaiting_language, got %s", state.Kind())
	}
}

func TestManagerLifecycle(t *testing.T) {
	manager := NewManager()

	if kind := manager.Get(1).Kind(); kind != KindIdle {
		t.Fatalf("expected idle default, got %s", kind)
	}

	if _, err := manager.Apply(1, ConvertRequested{}); err != nil {
		t.Fatalf("apply convert: %v", err)
	}
	if _, err := manager.Apply(1, LanguageChosen{Language: "en"}); err != nil {
		t.Fatalf("apply language: %v", err)
	}
	if manager.ActiveCount() != 1 {
		t.Fatalf("expected 1 active chat, got %d", manager.ActiveCount())
	}

	state, err := manager.Apply(1, UploadAccepted{JobID: 9})
	if err != nil {
		t.Fatalf("apply upload: %v", err)
	}
	if state.Kind() != KindProcessing {
		t.Fatalf("expected processing, got %s", state.Kind())
	}

	chatID, ok := manager.ProcessingChat(9)
	if !ok || chatID != 1 {
		t.Fatalf("expected chat 1 processing job 9, got %d %v", chatID, ok)
	}

	if _, err := manager.Apply(1, JobFinished{}); err != nil {
		t.Fatalf("apply finish: %v", err)
	}
	if manager.ActiveCount() != 0 {
		t.Fatalf("expected idle chats dropped, got %d", manager.ActiveCount())
	}
}

func TestManagerApplyInvalidKeepsState(t *testing.T) {
	manager := NewManager()
	if _, err := manager.Apply(2, ConvertRequested{}); err != nil {
		t.Fatalf("apply convert: %v", err)
	}

	state, err := manager.Apply(2, UploadAccepted{JobID: 1})
	if err == nil {
		t.Fatal("expected invalid transition error")
	}
	if state.Kind() != KindAwaitingLanguage {
		t.Fatalf("expected awaiting_language preserved, got %s", state.Kind())
	}
}

func TestManagerIsolatesChats(t *testing.T) {
	manager := NewManager()
	if _, err := manager.Apply(1, ConvertRequested{}); err != nil {
		t.Fatalf("apply convert: %v", err)
	}

	if kind := manager.Get(2).Kind(); kind != KindIdle {
		t.Fatalf("expected chat 2 idle, got %s", kind)
	}

	manager.Reset(1)
	if kind := manager.Get(1).Kind(); kind != KindIdle {
		t.Fatalf("expected chat 1 idle after reset, got %s", kind)
	}
}
