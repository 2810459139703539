package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troosts/doctranslate/internal/config"
	"github.com/troosts/doctranslate/internal/translator"
	"github.com/troosts/doctranslate/pkg/providers"
)

// echoProvider upper-cases every numbered input line so translations are
// distinguishable from originals without a real model.
type echoProvider struct {
	err   error
	calls int
}

func (p *echoProvider) Translate(_ context.Context, req *providers.Request) (*providers.Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}

	var parts []string
	for _, line := range strings.Split(req.Text, "\n") {
		if i := strings.Index(line, ". "); i > 0 && i <= 3 {
			parts = append(parts, strings.ToUpper(line[i+2:]))
		}
	}
	return &providers.Response{Text: strings.Join(parts, "\n"+translator.Separator+"\n")}, nil
}

func (p *echoProvider) Name() string { return "echo" }

func testConfig() *config.Config {
	return &config.Config{
		TargetLang:      "Dutch",
		MaxBatchChars:   3000,
		DocxBatchSize:   20,
		MaxChunkChars:   3000,
		BatchIntervalMS: 0,
		WatermarkText:   "generated with doctranslate",
	}
}

func writeTempText(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDriverTranslatesTextFile(t *testing.T) {
	dir := t.TempDir()
	in := writeTempText(t, dir, "letter.txt", "Hello world\n\n  indented line\n")

	prov := &echoProvider{}
	d := NewDriver(testConfig(), translator.NewInvoker(prov, 0, nil), nil, nil)

	var status []string
	results := d.Run(context.Background(), []string{in}, func(s string) { status = append(status, s) })

	require.Len(t, results, 1)
	res := results[0]
	require.NoError(t, res.Err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 4, res.Segments)
	assert.NotEmpty(t, res.ID)

	want := filepath.Join(dir, "translations", "Dutch_letter.txt")
	assert.Equal(t, want, res.Output)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD\n\n  INDENTED LINE\n", string(data))

	require.NotEmpty(t, status)
	assert.Contains(t, status[0], "letter.txt")
}

func TestDriverProviderFailureKeepsOriginalText(t *testing.T) {
	dir := t.TempDir()
	in := writeTempText(t, dir, "memo.txt", "Unchanged content\n")

	prov := &echoProvider{err: errors.New("endpoint down")}
	d := NewDriver(testConfig(), translator.NewInvoker(prov, 0, nil), nil, nil)

	results := d.Run(context.Background(), []string{in}, nil)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	data, err := os.ReadFile(results[0].Output)
	require.NoError(t, err)
	assert.Equal(t, "Unchanged content\n", string(data))
}

func TestDriverUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	in := writeTempText(t, dir, "image.png", "not a document")

	d := NewDriver(testConfig(), translator.NewInvoker(&echoProvider{}, 0, nil), nil, nil)

	results := d.Run(context.Background(), []string{in}, nil)
	require.Len(t, results, 1)
	assert.Equal(t, StateFailed, results[0].State)
	assert.Error(t, results[0].Err)
	assert.Empty(t, results[0].Output)
}

func TestDriverContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	bad := writeTempText(t, dir, "bad.xyz", "nope")
	good := writeTempText(t, dir, "good.txt", "Fine\n")

	d := NewDriver(testConfig(), translator.NewInvoker(&echoProvider{}, 0, nil), nil, nil)

	results := d.Run(context.Background(), []string{bad, good}, nil)
	require.Len(t, results, 2)
	assert.Equal(t, StateFailed, results[0].State)
	assert.Equal(t, StateDone, results[1].State)
}

func TestDriverMissingFileFails(t *testing.T) {
	d := NewDriver(testConfig(), translator.NewInvoker(&echoProvider{}, 0, nil), nil, nil)

	results := d.Run(context.Background(), []string{filepath.Join(t.TempDir(), "gone.txt")}, nil)
	require.Len(t, results, 1)
	assert.Equal(t, StateFailed, results[0].State)
}

func TestDriverCancelledContext(t *testing.T) {
	dir := t.TempDir()
	in := writeTempText(t, dir, "doc.txt", "one\n\ntwo\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDriver(testConfig(), translator.NewInvoker(&echoProvider{err: context.Canceled}, 0, nil), nil, nil)
	results := d.Run(ctx, []string{in}, nil)

	require.Len(t, results, 1)
	assert.Equal(t, StateFailed, results[0].State)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestTextToPDFWritesFile(t *testing.T) {
	dir := t.TempDir()
	in := writeTempText(t, dir, "plain.txt", "First line\n\nSecond paragraph\n")
	out := filepath.Join(dir, "plain.pdf")

	require.NoError(t, TextToPDF(in, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestReplaceExt(t *testing.T) {
	assert.Equal(t, "/a/b/file.pdf", replaceExt("/a/b/file.txt", ".pdf"))
	assert.Equal(t, "noext.pdf", replaceExt("noext", ".pdf"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(99).String())
}
