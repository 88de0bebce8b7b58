package extractor

import (
	"context"
	"path/filepath"

	"github.com/huangsam/repoquality/internal/contract"
)

// RunnerClass is the tool's main class, used when the jar manifest cannot be relied on.
const RunnerClass = "com.github.mauricioaniche.ck.Runner"

// Fixed positional tool arguments: useJars, maxFilesPerPartition, variablesAndFields.
var toolFlags = []string{"false", "0", "false"}

// Settings locate the JVM and the tool jar.
type Settings struct {
	JavaPath string
	JarPath  string
}

// LaunchFunc starts one tool process and reports failure as an error.
type LaunchFunc func(ctx context.Context, inv contract.Invocation) error

// DefaultStrategies returns the four invocation strategies in the order they are tried:
// running inside the source tree, letting the tool write to its working directory,
// calling the runner class directly, and opening JDK internals for newer JVMs.
// Every strategy runs the tool in a working directory private to the repository,
// so a table left behind by one repository is never visible to another.
func DefaultStrategies(s Settings, launch LaunchFunc) []Strategy {
	jar := s.JarPath
	if abs, err := filepath.Abs(jar); err == nil {
		jar = abs
	}
	return []Strategy{
		{
			Name: "run-in-source",
			Invoke: func(ctx context.Context, env Env) error {
				return launch(ctx, contract.Invocation{
					Name: s.JavaPath,
					Args: toolArgs([]string{"-jar", jar}, ".", explicitOutput(env)),
					Dir:  env.SourceTree,
				})
			},
			Locate: func(env Env) (string, bool) { return LocateTable(env, env.SourceTree) },
		},
		{
			Name: "implicit-output",
			Invoke: func(ctx context.Context, env Env) error {
				return launch(ctx, contract.Invocation{
					Name: s.JavaPath,
					Args: toolArgs([]string{"-jar", jar}, env.SourceTree, "."),
					Dir:  env.OutputDir,
				})
			},
			Locate: func(env Env) (string, bool) { return LocateTable(env, env.OutputDir) },
		},
		{
			Name: "runner-class",
			Invoke: func(ctx context.Context, env Env) error {
				return launch(ctx, contract.Invocation{
					Name: s.JavaPath,
					Args: toolArgs([]string{"-cp", jar, RunnerClass}, env.SourceTree, explicitOutput(env)),
					Dir:  env.OutputDir,
				})
			},
			Locate: func(env Env) (string, bool) { return LocateTable(env, env.OutputDir) },
		},
		{
			Name: "add-opens",
			Invoke: func(ctx context.Context, env Env) error {
				prefix := []string{
					"--add-opens", "java.base/java.lang=ALL-UNNAMED",
					"--add-opens", "java.base/java.util=ALL-UNNAMED",
					"-jar", jar,
				}
				return launch(ctx, contract.Invocation{
					Name: s.JavaPath,
					Args: toolArgs(prefix, env.SourceTree, explicitOutput(env)),
					Dir:  env.OutputDir,
				})
			},
			Locate: func(env Env) (string, bool) { return LocateTable(env, env.OutputDir) },
		},
	}
}

func toolArgs(prefix []string, source string, output string) []string {
	args := append([]string{}, prefix...)
	args = append(args, source)
	args = append(args, toolFlags...)
	return append(args, output)
}

// explicitOutput ends with a separator because the tool concatenates it with table names.
func explicitOutput(env Env) string {
	return env.OutputDir + string(filepath.Separator)
}

// NewDefaultAdapter wires the default strategies to a launcher.
func NewDefaultAdapter(s Settings, l *Launcher) *Adapter {
	return NewAdapter(DefaultStrategies(s, l.Launch))
}
