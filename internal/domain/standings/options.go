package standings

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithMaxLeaders sets how many cars the leader strings list.
func WithMaxLeaders(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.maxLeaders = n
		}
	}
}
