package ladder

// Session replaces a form's recompute-on-change effect with an explicit call.
// The presentation layer calls Recompute after any watched field changes.
//
// A Session is not safe for concurrent use.
type Session struct {
	validator Validator
	mode      Mode
	result    Result
}

// NewSession returns a Percentage-mode session with an empty result. A nil
// validator means TextValidator{}.
func NewSession(v Validator) *Session {
	if v == nil {
		v = TextValidator{}
	}
	return &Session{validator: v, result: Result{Mode: Percentage}}
}

// Recompute processes a new raw snapshot.
//
// Switching mode discards the previous rows before anything else happens.
// An invalid snapshot leaves the current result in place and reports false;
// a valid one replaces it wholesale.
func (s *Session) Recompute(raw RawInput) (Result, bool) {
	if raw.Mode != s.mode {
		s.mode = raw.Mode
		s.result = Result{Mode: raw.Mode}
	}

	in, err := s.validator.Validate(raw)
	if err != nil {
		return s.result, false
	}

	s.result = Compute(in)
	return s.result, true
}

// Result returns the last valid result for the current mode.
func (s *Session) Result() Result {
	return s.result
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	return s.mode
}
