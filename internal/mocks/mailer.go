package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(recipient string, data any, patterns ...string) error {
	args := m.Called(recipient, data, patterns)
	return args.Error(0)
}

// CapturingMailer records sends instead of asserting on them, for tests that
// only care that an email went out in the background.
type CapturingMailer struct {
	mu    sync.Mutex
	sends []CapturedMail
}

type CapturedMail struct {
	Recipient string
	Data      any
	Patterns  []string
}

func (m *CapturingMailer) Send(recipient string, data any, patterns ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, CapturedMail{Recipient: recipient, Data: data, Patterns: patterns})
	return nil
}

func (m *CapturingMailer) Sends() []CapturedMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CapturedMail(nil), m.sends...)
}
