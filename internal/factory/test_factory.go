package factory

import (
	"time"

	"github.com/replayhq/scoreserver/internal/dependencies/mocks"
	"github.com/replayhq/scoreserver/internal/services/password"
	"github.com/replayhq/scoreserver/internal/storage/memory"
	"github.com/replayhq/scoreserver/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// MockClock controls time in tests
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with a mocked
// clock and cheap hashing parameters
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	hasher := password.New(password.Config{
		Params: password.Params{
			Time:    1,
			Memory:  8 * 1024,
			Threads: 1,
			SaltLen: 16,
			KeyLen:  32,
		},
		MaxConcurrent: 2,
	})

	app := newWithDependencies(store, mockClock, hasher, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
