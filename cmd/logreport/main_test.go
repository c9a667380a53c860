package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = "000000000001USER0100012345000056782023-09-07 14:30\n" +
	"000000000002USER0100000001000000022023-09-08 09:05\n"

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Defaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile("sample-log.txt", []byte(sampleLog), 0o644))

	code, stdout, stderr := runCLI(t)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Log processing completed successfully. Output saved to output.txt\n", stdout)

	data, err := os.ReadFile(filepath.Join(dir, "output.txt"))
	require.NoError(t, err)
	assert.Equal(t, "USER01|12,345|5,678|September 07 2023, 14:30|000000000001\n"+
		"USER01|1|2|September 08 2023, 09:05|000000000002\n"+
		"\n"+
		"000000000001\n"+
		"000000000002\n"+
		"\n"+
		"[1] USER01", string(data))
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.txt")

	code, stdout, stderr := runCLI(t, "-input", filepath.Join(dir, "missing.txt"), "-output", out)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.True(t, strings.HasPrefix(stderr, "Error: input file not found"), stderr)
	assert.Equal(t, 1, strings.Count(stderr, "\n"), "diagnostic should be one line")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_BadDate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("000000000001USER010001234500005678not-a-date\n"), 0o644))

	code, _, stderr := runCLI(t, "-input", in, "-output", filepath.Join(dir, "out.txt"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `"not-a-date"`)
}

func TestRun_ConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	cfgPath := filepath.Join(dir, "logreport.yaml")
	require.NoError(t, os.WriteFile(in, []byte(sampleLog), 0o644))
	require.NoError(t, os.WriteFile(cfgPath, []byte("input: "+in+"\noutput: "+out+"\ndate:\n  style: weekday\n"), 0o644))

	code, _, stderr := runCLI(t, "-config", cfgPath)
	require.Equal(t, 0, code, stderr)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Thu, 07 September 2023 14:30:00")

	// A flag overrides the file.
	code, _, stderr = runCLI(t, "-config", cfgPath, "-date-style", "long")
	require.Equal(t, 0, code, stderr)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "September 07 2023, 14:30")
}

func TestRun_Archive(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	db := filepath.Join(dir, "runs.db")
	require.NoError(t, os.WriteFile(in, []byte(sampleLog), 0o644))

	code, _, stderr := runCLI(t, "-input", in, "-output", filepath.Join(dir, "out.txt"), "-archive", db)
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runCLI(t, "runs", "-archive", db)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "records=2 users=1")
	assert.Equal(t, 1, strings.Count(stdout, "\n"))
}

func TestRun_UsageErrors(t *testing.T) {
	code, _, _ := runCLI(t, "-nope")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "extra-arg")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "runs")
	assert.Equal(t, 2, code)

	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "weekday")
}
