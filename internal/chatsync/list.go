package chatsync

import "context"

// listTick refreshes the conversation list. The list is replaced wholesale;
// the selection is reconciled by id so its denormalized fields (unread
// counters, preview) refresh without the active conversation being swapped
// under the user. A selection that dropped out of the list is kept as-is and
// simply stops refreshing.
func (s *Session) listTick(ctx context.Context) error {
	rows, err := s.api.MyChats(ctx, s.userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.chats = rows
	switch {
	case !s.hasSelected && len(rows) > 0:
		// The backend orders by recency, so the first row is the freshest.
		s.selectLocked(ctx, rows[0])
	case s.hasSelected:
		for _, row := range rows {
			if row.ID == s.selected.ID {
				s.selected = row
				break
			}
		}
	}
	s.mu.Unlock()
	s.notify()
	return nil
}
