package modal

import (
	"sync"

	"logviewer-client/internal/handle"
)

// Entry is one open dialog.
type Entry struct {
	ID handle.ID
	Dialog
}

// Stack is an in-memory Presenter. The most recently opened dialog is on
// top. Answering a dialog closes it before its callback runs.
type Stack struct {
	ids *handle.Allocator

	mu       sync.Mutex
	entries  []Entry
	onChange func()
}

func NewStack() *Stack {
	return &Stack{ids: handle.NewAllocator()}
}

// OnChange sets a function called after every open or close.
func (s *Stack) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Stack) Open(d Dialog) handle.ID {
	id := s.ids.Next()
	s.mu.Lock()
	s.entries = append(s.entries, Entry{ID: id, Dialog: d})
	notify := s.onChange
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
	return id
}

func (s *Stack) Close(id handle.ID) {
	s.take(id)
}

func (s *Stack) take(id handle.ID) (Entry, bool) {
	s.mu.Lock()
	index := -1
	for i, entry := range s.entries {
		if entry.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return Entry{}, false
	}
	entry := s.entries[index]
	s.entries = append(s.entries[:index:index], s.entries[index+1:]...)
	notify := s.onChange
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
	return entry, true
}

// Entries returns a snapshot, bottom first.
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Stack) Top() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Confirm answers a confirm dialog. It reports whether id was open.
func (s *Stack) Confirm(id handle.ID, yes bool) bool {
	entry, ok := s.take(id)
	if !ok {
		return false
	}
	if entry.OnConfirm != nil {
		entry.OnConfirm(yes)
	}
	return true
}

func (s *Stack) Select(id handle.ID, value string) bool {
	entry, ok := s.take(id)
	if !ok {
		return false
	}
	if entry.OnSelect != nil {
		entry.OnSelect(value)
	}
	return true
}

func (s *Stack) Submit(id handle.ID, values map[string]string) bool {
	entry, ok := s.take(id)
	if !ok {
		return false
	}
	if entry.OnSubmit != nil {
		entry.OnSubmit(values)
	}
	return true
}

// Cancel dismisses a dialog. Confirm dialogs without OnCancel are answered
// with false. Progress dialogs cannot be dismissed by the user.
func (s *Stack) Cancel(id handle.ID) bool {
	s.mu.Lock()
	for _, entry := range s.entries {
		if entry.ID == id && entry.Kind == KindProgress {
			s.mu.Unlock()
			return false
		}
	}
	s.mu.Unlock()

	entry, ok := s.take(id)
	if !ok {
		return false
	}
	switch {
	case entry.OnCancel != nil:
		entry.OnCancel()
	case entry.Kind == KindConfirm && entry.OnConfirm != nil:
		entry.OnConfirm(false)
	}
	return true
}

// RunAction closes the dialog and runs its action at index.
func (s *Stack) RunAction(id handle.ID, index int) bool {
	s.mu.Lock()
	valid := false
	for _, entry := range s.entries {
		if entry.ID == id {
			valid = index >= 0 && index < len(entry.Actions)
			break
		}
	}
	s.mu.Unlock()
	if !valid {
		return false
	}
	entry, ok := s.take(id)
	if !ok {
		return false
	}
	if run := entry.Actions[index].Run; run != nil {
		run()
	}
	return true
}
