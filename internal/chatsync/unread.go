package chatsync

import "context"

// unreadTick refreshes the aggregate unread badge. A single scalar, so the
// fetched value simply replaces the old one.
func (s *Session) unreadTick(ctx context.Context) error {
	total, err := s.api.UnreadCount(ctx, s.userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	changed := s.unread != total
	s.unread = total
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return nil
}
