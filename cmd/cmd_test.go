package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand runs a cobra command with the given args and captures stdout
// and stderr separately. Flags left over from earlier runs are reset first.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	for _, c := range root.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return out.String(), errOut.String(), err
}

// isolate points HOME, XDG_DATA_HOME and the working directory at a temp dir
// so no real config or identity is touched. It returns the temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_DATA_HOME", tmp+"/data")
	t.Setenv("REELWATCH_API_TOKEN", "")
	t.Setenv("REELWATCH_LOG_LEVEL", "")
	t.Chdir(tmp)
	return tmp
}
