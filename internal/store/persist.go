package store

import "time"

// SetSaveDebounce changes the quiescence interval for coalescing saves.
func (s *Store) SetSaveDebounce(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.debounce = d
	}
}

// scheduleSaveLocked (re)arms the debounce timer: rapid consecutive mutations
// coalesce into one write after the quiescence interval. Callers hold s.mu.
func (s *Store) scheduleSaveLocked() {
	if s.saver == nil || s.closed {
		return
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(s.debounce, s.debouncedSave)
}

func (s *Store) debouncedSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.dirty || s.saver == nil {
		return
	}
	if err := s.saver.Save(s.doc); err != nil {
		s.logger.Printf("save failed: %v", err)
		return
	}
	s.dirty = false
}

// Flush cancels any pending debounce and writes unsaved state immediately.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	if s.saver == nil || !s.dirty {
		return nil
	}
	if err := s.saver.Save(s.doc); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Close flushes unsaved state and cancels pending timers. The store rejects
// every mutation afterwards, so no late callback can touch disposed state.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	err := s.flushLocked()
	s.closed = true
	return err
}
