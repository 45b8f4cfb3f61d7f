package service

import "time"

// SetClock replaces the time source of the service and its token issuer.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
	s.tokens.now = now
}
