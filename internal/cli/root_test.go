package cli

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hex "github.com/tmthrgd/go-hex"

	apperrors "shacheck/internal/errors"
	"shacheck/internal/hash"
)

const (
	abcHex   = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	emptyHex = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

type streams struct {
	out    bytes.Buffer
	errOut bytes.Buffer
}

func run(t *testing.T, stdin string, args ...string) (*streams, error) {
	t.Helper()
	s := &streams{}
	root := NewRootCommand(&s.out, &s.errOut, strings.NewReader(stdin))
	root.SetArgs(args)
	return s, root.Execute()
}

func TestRootCommandIncludesRequiredSubcommands(t *testing.T) {
	buf := &bytes.Buffer{}
	root := NewRootCommand(buf, buf, strings.NewReader(""))

	names := map[string]bool{}
	for _, command := range root.Commands() {
		names[command.Name()] = true
	}
	for _, required := range []string{"version", "hash", "check", "vectors"} {
		if !names[required] {
			t.Fatalf("expected root command to include %q subcommand", required)
		}
	}
}

func TestRootCommandHelpReturnsZero(t *testing.T) {
	s, err := run(t, "", "--help")
	if err != nil {
		t.Fatalf("expected help command to succeed, got error: %v", err)
	}

	out := s.out.String()
	for _, name := range []string{"hash", "check", "vectors", "version"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %q in help output, got: %q", name, out)
		}
	}
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	s, err := run(t, "", "frobnicate")
	require.ErrorIs(t, err, apperrors.ErrUsage)
	assert.Contains(t, s.errOut.String(), `unknown command "frobnicate"`)
}

func TestHashHelpIncludesFlags(t *testing.T) {
	s, err := run(t, "", "hash", "--help")
	require.NoError(t, err)
	for _, token := range []string{"--text", "--json", "--progress", "--jobs", "--checkpoint-dir", "--config", "--log-level"} {
		assert.Contains(t, s.out.String(), token)
	}
}

func TestHashText(t *testing.T) {
	s, err := run(t, "", "hash", "--text", "abc")
	require.NoError(t, err)
	assert.Equal(t, abcHex+`  "abc"`+"\n", s.out.String())
}

func TestHashEmptyText(t *testing.T) {
	s, err := run(t, "", "hash", "--text=")
	require.NoError(t, err)
	assert.Equal(t, emptyHex+`  ""`+"\n", s.out.String())
}

func TestHashStdin(t *testing.T) {
	s, err := run(t, "abc", "hash")
	require.NoError(t, err)
	assert.Equal(t, abcHex+"  -\n", s.out.String())
}

func TestHashFilesKeepArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, body := range []string{"abc", "", "abc"} {
		path := filepath.Join(dir, string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		paths = append(paths, path)
	}

	s, err := run(t, "", append([]string{"hash", "--jobs", "2", "--progress"}, paths...)...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(s.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, abcHex+"  "+paths[0], lines[0])
	assert.Equal(t, emptyHex+"  "+paths[1], lines[1])
	assert.Equal(t, abcHex+"  "+paths[2], lines[2])
	assert.Contains(t, s.errOut.String(), "hashed ")
}

func TestHashJSON(t *testing.T) {
	s, err := run(t, "", "hash", "--json", "--text", "abc")
	require.NoError(t, err)

	var rec hashRecord
	require.NoError(t, json.Unmarshal(s.out.Bytes(), &rec))
	assert.Equal(t, hashRecord{Name: `"abc"`, Bytes: 3, SHA256: abcHex}, rec)
}

func TestHashUsageErrors(t *testing.T) {
	tests := [][]string{
		{"hash", "--text", "abc", "file.txt"},
		{"hash", "--jobs", "0"},
		{"hash", "-", "-"},
		{"hash", "--bogus"},
		{"hash", "--log-level", "chatty", "--text", "x"},
	}
	for _, args := range tests {
		_, err := run(t, "", args...)
		assert.ErrorIs(t, err, apperrors.ErrUsage, "%v", args)
	}
}

func TestHashMissingFile(t *testing.T) {
	_, err := run(t, "", "hash", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, 1, apperrors.ExitCode(err))
}

func TestHashMissingFileStillPrintsOthers(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "abc.txt")
	require.NoError(t, os.WriteFile(good, []byte("abc"), 0o600))
	missing := filepath.Join(dir, "absent")
	other := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(other, nil, 0o600))

	s, err := run(t, "", "hash", good, missing, other)
	require.Error(t, err)
	assert.Equal(t, 1, apperrors.ExitCode(err))
	assert.Contains(t, err.Error(), missing)
	assert.Equal(t, abcHex+"  "+good+"\n"+emptyHex+"  "+other+"\n", s.out.String())
}

func TestVersionJSON(t *testing.T) {
	s, err := run(t, "", "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal(s.out.Bytes(), &info))
	assert.NotEmpty(t, info["version"])
	assert.NotEmpty(t, info["go"])
}

func TestVersionRejectsArguments(t *testing.T) {
	_, err := run(t, "", "version", "extra")
	assert.ErrorIs(t, err, apperrors.ErrUsage)
}

func TestHashWithCheckpointDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))
	ckpt := filepath.Join(dir, "ckpt")

	s, err := run(t, "", "hash", "--checkpoint-dir", ckpt, path)
	require.NoError(t, err)
	assert.Equal(t, abcHex+"  "+path+"\n", s.out.String())

	entries, err := os.ReadDir(ckpt)
	require.NoError(t, err)
	assert.Empty(t, entries, "checkpoint files should be cleaned up")
}

func TestHashSameFileTwiceWithCheckpointDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	data := bytes.Repeat([]byte("abcdefgh"), 512*1024)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	alias := filepath.Join(dir, ".", "big.bin")
	ckpt := filepath.Join(dir, "ckpt")
	want := sha256.Sum256(data)
	wantHex := hex.EncodeToString(want[:])

	for i := 0; i < 10; i++ {
		s, err := run(t, "", "hash", "--jobs", "4", "--checkpoint-dir", ckpt, path, path, alias)
		require.NoError(t, err, "run %d", i)
		assert.Equal(t, wantHex+"  "+path+"\n"+wantHex+"  "+path+"\n"+wantHex+"  "+alias+"\n", s.out.String())
	}
}

func TestPlanHashJobsSharesCheckpointedFiles(t *testing.T) {
	dir := t.TempDir()
	a := hash.Input{Name: "a", Path: filepath.Join(dir, "a")}
	aliasA := hash.Input{Name: "./a", Path: filepath.Join(dir, ".", "a")}
	b := hash.Input{Name: "b", Path: filepath.Join(dir, "b")}
	text := hash.Text("t", "x")
	inputs := []hash.Input{a, b, aliasA, text, text}
	failed := []error{nil, nil, nil, nil, nil}

	jobs, slots, err := planHashJobs(inputs, failed, filepath.Join(dir, "ckpt"))
	require.NoError(t, err)
	assert.Len(t, jobs, 4)
	assert.Equal(t, []int{0, 1, 0, 2, 3}, slots)

	jobs, slots, err = planHashJobs(inputs, failed, "")
	require.NoError(t, err)
	assert.Len(t, jobs, 5)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, slots)

	failed[1] = os.ErrNotExist
	_, slots, err = planHashJobs(inputs, failed, "")
	require.NoError(t, err)
	assert.Equal(t, []int{0, -1, 1, 2, 3}, slots)
}
