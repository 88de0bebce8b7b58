package extractor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// funcRunner adapts a function to contract.CommandRunner.
type funcRunner func(ctx context.Context, inv contract.Invocation) (contract.CommandResult, error)

func (f funcRunner) RunCommand(ctx context.Context, inv contract.Invocation) (contract.CommandResult, error) {
	return f(ctx, inv)
}

func TestLauncherExitCodes(t *testing.T) {
	runner := new(contract.MockCommandRunner)
	ok := contract.Invocation{Name: "java", Args: []string{"-version"}}
	bad := contract.Invocation{Name: "java", Args: []string{"-jar", "broken.jar"}}
	runner.On("RunCommand", mock.Anything, ok).Return(contract.CommandResult{ExitCode: 0}, nil)
	runner.On("RunCommand", mock.Anything, bad).Return(contract.CommandResult{ExitCode: 1, Output: []byte("Exception in thread main\n at Foo")}, nil)

	l := NewLauncher(runner, time.Second, 2)
	defer l.Close()

	assert.NoError(t, l.Launch(context.Background(), ok))
	err := l.Launch(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 1")
	assert.Contains(t, err.Error(), "Exception in thread main | at Foo")
	runner.AssertExpectations(t)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "Exception in thread main | at Foo | at Bar",
		tail([]byte("Exception in thread main\n\tat Foo\r\n\n   at Bar\n"), 200))
	assert.Equal(t, "at Bar", tail([]byte("Exception\n at Foo\n at Bar"), 7))
	assert.Empty(t, tail(nil, 10))
}

func TestLauncherTimeoutKillsAttempt(t *testing.T) {
	hang := funcRunner(func(ctx context.Context, _ contract.Invocation) (contract.CommandResult, error) {
		<-ctx.Done()
		return contract.CommandResult{ExitCode: -1}, ctx.Err()
	})
	l := NewLauncher(hang, 50*time.Millisecond, 1)
	defer l.Close()

	start := time.Now()
	err := l.Launch(context.Background(), contract.Invocation{Name: "java"})
	assert.ErrorIs(t, err, ErrAttemptTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLauncherBoundsConcurrency(t *testing.T) {
	var running, peak int32
	slow := funcRunner(func(context.Context, contract.Invocation) (contract.CommandResult, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return contract.CommandResult{}, nil
	})
	l := NewLauncher(slow, time.Second, 2)
	defer l.Close()

	var wg sync.WaitGroup
	for range 6 {
		wg.Go(func() {
			assert.NoError(t, l.Launch(context.Background(), contract.Invocation{Name: "java"}))
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestDefaultStrategiesInvocations(t *testing.T) {
	var got []contract.Invocation
	launch := func(_ context.Context, inv contract.Invocation) error {
		got = append(got, inv)
		return nil
	}
	strategies := DefaultStrategies(Settings{JavaPath: "java", JarPath: "/opt/ck.jar"}, launch)
	require.Len(t, strategies, 4)

	env := Env{SourceTree: "/w/source", OutputDir: "/w/output/attempt_1", Started: time.Now()}
	for _, s := range strategies {
		require.NoError(t, s.Invoke(context.Background(), env))
	}

	assert.Equal(t, "run-in-source", strategies[0].Name)
	assert.Equal(t, []string{"-jar", "/opt/ck.jar", ".", "false", "0", "false", "/w/output/attempt_1/"}, got[0].Args)
	assert.Equal(t, "/w/source", got[0].Dir)

	assert.Equal(t, []string{"-jar", "/opt/ck.jar", "/w/source", "false", "0", "false", "."}, got[1].Args)
	assert.Equal(t, "/w/output/attempt_1", got[1].Dir)

	assert.Equal(t, []string{"-cp", "/opt/ck.jar", RunnerClass, "/w/source", "false", "0", "false", "/w/output/attempt_1/"}, got[2].Args)
	assert.Equal(t, "/w/output/attempt_1", got[2].Dir)

	assert.Equal(t, "--add-opens", got[3].Args[0])
	assert.Equal(t, "java.base/java.util=ALL-UNNAMED", got[3].Args[3])
	assert.Equal(t, "/w/output/attempt_1/", got[3].Args[len(got[3].Args)-1])
	assert.Equal(t, "/w/output/attempt_1", got[3].Dir)
	for _, inv := range got {
		assert.Equal(t, "java", inv.Name)
	}
}
