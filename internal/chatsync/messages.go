package chatsync

import "context"

// messagesTick fetches messages for the selected conversation strictly after
// the watermark and appends them in order. The server's "after" filter is
// exclusive, so a message is never appended twice. The fetch runs outside
// the lock; the epoch captured before the fetch guards against a late
// response landing after the selection changed.
func (s *Session) messagesTick(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasSelected {
		s.mu.Unlock()
		return nil
	}
	chatID, epoch, after := s.selected.ID, s.epoch, s.watermark
	s.mu.Unlock()

	incoming, err := s.api.Messages(ctx, chatID, after)
	if err != nil {
		return err
	}
	if len(incoming) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// Selection changed while this fetch was in flight.
		s.mu.Unlock()
		return nil
	}
	s.messages = append(s.messages, incoming...)
	s.watermark = incoming[len(incoming)-1].CreatedAt
	s.mu.Unlock()
	s.notify()
	return nil
}
