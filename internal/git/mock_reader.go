package git

import "context"

// MockProvider is a test double for HistoryProvider.
// It replays predefined commit data without needing a real Git repository.
// When FailAfter is positive, Error is returned after that many commits have
// been delivered, simulating a provider that breaks mid-stream.
type MockProvider struct {
	ChangeSets []CommitChangeSet
	Error      error
	FailAfter  int
}

// NewMockProvider creates a new MockProvider with the given data.
func NewMockProvider(changeSets []CommitChangeSet, err error) *MockProvider {
	return &MockProvider{
		ChangeSets: changeSets,
		Error:      err,
	}
}

// Walk replays the predefined change sets.
func (m *MockProvider) Walk(ctx context.Context, _ WalkOptions, fn func(CommitChangeSet) error) error {
	if m.Error != nil && m.FailAfter <= 0 {
		return m.Error
	}
	for i, cs := range m.ChangeSets {
		if m.Error != nil && i == m.FailAfter {
			return m.Error
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(cs); err != nil {
			return err
		}
	}
	if m.Error != nil {
		return m.Error
	}
	return nil
}
