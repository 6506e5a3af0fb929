package form

// Option configures a Machine.
type Option func(*Machine)

func WithRecorder(recorder WriteRecorder) Option {
	return func(m *Machine) {
		if recorder != nil {
			m.recorder = recorder
		}
	}
}
