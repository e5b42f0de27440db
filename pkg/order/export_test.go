package order

import "time"

// SetClock replaces the service's time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }
