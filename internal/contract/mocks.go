package contract

import (
	"context"

	"github.com/huangsam/repoquality/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// Clone implements the GitClient interface.
func (m *MockGitClient) Clone(ctx context.Context, url string, dest string, opts CloneOptions) error {
	ret := m.Called(ctx, url, dest, opts)
	return ret.Error(0)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// MockCommandRunner is a mock implementation of CommandRunner for testing.
type MockCommandRunner struct {
	mock.Mock
}

var _ CommandRunner = &MockCommandRunner{} // Compile-time check

// RunCommand implements the CommandRunner interface.
func (m *MockCommandRunner) RunCommand(ctx context.Context, inv Invocation) (CommandResult, error) {
	ret := m.Called(ctx, inv)
	result, _ := ret.Get(0).(CommandResult)
	return result, ret.Error(1)
}

// MockMetadataClient is a mock implementation of MetadataClient for testing.
type MockMetadataClient struct {
	mock.Mock
}

var _ MetadataClient = &MockMetadataClient{} // Compile-time check

// FetchMetadata implements the MetadataClient interface.
func (m *MockMetadataClient) FetchMetadata(ctx context.Context, fullName string) (schema.ProcessMetadata, error) {
	ret := m.Called(ctx, fullName)
	meta, _ := ret.Get(0).(schema.ProcessMetadata)
	return meta, ret.Error(1)
}
