package reveal

// Ticket identifies one pair load request.
type Ticket uint64

// Selection tracks the mounted props triple and the pair load that belongs
// to it. Every new triple issues a fresh ticket, so a result is only
// accepted for the most recent request, even when an older request carried
// the same props.
type Selection struct {
	props   Props
	mounted bool
	ticket  Ticket
	pending bool
}

// Select mounts props. It reports false when props are already mounted;
// otherwise the caller must remount the widget and load the pair under the
// returned ticket.
func (s *Selection) Select(props Props) (Ticket, bool) {
	if s.mounted && s.props == props {
		return 0, false
	}
	s.ticket++
	s.props = props
	s.mounted = true
	s.pending = true
	return s.ticket, true
}

// Clear unmounts the current props and reports whether anything was mounted.
func (s *Selection) Clear() bool {
	was := s.mounted
	s.props = Props{}
	s.mounted = false
	s.pending = false
	return was
}

// Accept reports whether a load result for t should be applied. Stale
// tickets are refused, and a ticket is accepted at most once.
func (s *Selection) Accept(t Ticket) bool {
	if !s.pending || t != s.ticket {
		return false
	}
	s.pending = false
	return true
}

// Current returns the mounted props.
func (s *Selection) Current() (Props, bool) {
	return s.props, s.mounted
}

// Loading reports whether the mounted pair is still waiting for its images.
func (s *Selection) Loading() bool {
	return s.pending
}
