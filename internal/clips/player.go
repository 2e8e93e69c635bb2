package clips

// Player is the external video player the engine is driven by. The
// production implementation wraps the actual media element; tests use a
// fake. Times are source seconds.
type Player interface {
	CurrentTime() float64
	Duration() float64
	Seek(seconds float64)
}

// NullPlayer satisfies Player when no media is attached.
type NullPlayer struct{}

func (NullPlayer) CurrentTime() float64 { return 0 }
func (NullPlayer) Duration() float64    { return 0 }
func (NullPlayer) Seek(float64)         {}
