package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/titlemeta/internal/config"
	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/provider"
	"github.com/John-Robertt/titlemeta/internal/provider/combined"
)

const fixtures = "../../provider/combined/testdata"

func copyFixture(t *testing.T, name, dst string) {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(fixtures, name+".html"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, b, 0o644))
}

// newRoot 准备三页：一页干净、一页有字段诊断、一页无法导航。
func newRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	copyFixture(t, "matrix", filepath.Join(root, "movies", "matrix.html"))
	copyFixture(t, "broken_fields", filepath.Join(root, "broken.html"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.html"), []byte("plain text, no markup"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("ignored"), 0o644))
	return root
}

func newRunner(t *testing.T) Runner {
	t.Helper()
	reg, err := provider.NewRegistry(combined.Parser{})
	require.NoError(t, err)
	return Runner{Registry: reg}
}

func cfg(root string, apply bool) config.EffectiveConfig {
	return config.EffectiveConfig{
		Path:        root,
		Parser:      combined.Name,
		Apply:       apply,
		Concurrency: 2,
	}
}

func byPage(rr domain.RunReport) map[string]domain.ItemResult {
	out := make(map[string]domain.ItemResult, len(rr.Items))
	for _, it := range rr.Items {
		out[it.Page] = it
	}
	return out
}

func TestExecute_DryRun_NoWrites(t *testing.T) {
	root := newRoot(t)

	rr := newRunner(t).Execute(context.Background(), cfg(root, false))

	_, err := uuid.Parse(rr.RunID)
	assert.NoError(t, err, "run_id 必须是 uuid")
	assert.True(t, rr.DryRun)
	assert.Equal(t, combined.Name, rr.Parser)
	assert.Equal(t, domain.ReportSummary{Processed: 1, Partial: 1, Failed: 1}, rr.Summary)

	pages := make([]string, 0, len(rr.Items))
	for _, it := range rr.Items {
		pages = append(pages, it.Page)
	}
	assert.Equal(t, []string{"broken.html", "movies/matrix.html", "notes.html"}, pages)

	items := byPage(rr)
	m := items["movies/matrix.html"]
	assert.Equal(t, domain.StatusProcessed, m.Status)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, "movie", m.Kind)
	assert.Positive(t, m.Fields)
	assert.Empty(t, m.Outputs, "dry-run 不产出文件")

	b := items["broken.html"]
	assert.Equal(t, domain.StatusPartial, b.Status)
	assert.Len(t, b.Diagnostics, 7)

	n := items["notes.html"]
	assert.Equal(t, domain.StatusFailed, n.Status)
	assert.Equal(t, domain.ErrCodeNavigateFailed, n.ErrorCode)

	_, err = os.Stat(filepath.Join(root, "cache"))
	assert.True(t, os.IsNotExist(err), "dry-run 不应创建 cache/")
}

func TestExecute_Apply_WritesCacheAndReport(t *testing.T) {
	root := newRoot(t)
	eff := cfg(root, true)
	eff.NFO = true
	eff.Entries = true

	rr := newRunner(t).Execute(context.Background(), eff)
	require.Equal(t, 3, len(rr.Items))

	titleJSON := filepath.Join(root, "cache", "titles", "movies", "matrix.html.json")
	titleNFO := filepath.Join(root, "cache", "titles", "movies", "matrix.html.nfo")
	assert.Equal(t, []string{titleJSON, titleNFO}, byPage(rr)["movies/matrix.html"].Outputs)

	raw, err := os.ReadFile(titleJSON)
	require.NoError(t, err)
	var out struct {
		File        string                    `json:"file"`
		Data        map[string]any            `json:"data"`
		Diagnostics []domain.Diagnostic       `json:"diagnostics"`
		Entries     map[string][]domain.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "movies/matrix.html", out.File)
	assert.Equal(t, "The Matrix", out.Data["title"])
	assert.Empty(t, out.Diagnostics)
	assert.Equal(t, []domain.Entry{{Value: "136"}}, out.Entries["runtimes"])

	nfoRaw, err := os.ReadFile(titleNFO)
	require.NoError(t, err)
	assert.Contains(t, string(nfoRaw), "<title>The Matrix</title>")

	assert.Empty(t, byPage(rr)["notes.html"].Outputs, "失败页不写缓存")
	assert.NoFileExists(t, filepath.Join(root, "cache", "titles", "notes.html.json"))

	reportRaw, err := os.ReadFile(filepath.Join(root, "cache", "report.json"))
	require.NoError(t, err)
	var onDisk domain.RunReport
	require.NoError(t, json.Unmarshal(reportRaw, &onDisk))
	assert.Equal(t, rr.RunID, onDisk.RunID)
	assert.Equal(t, rr.Summary, onDisk.Summary)
	assert.False(t, onDisk.DryRun)
}

func TestExecute_Apply_SkipsCacheDirOnRescan(t *testing.T) {
	root := newRoot(t)
	r := newRunner(t)

	first := r.Execute(context.Background(), cfg(root, true))
	second := r.Execute(context.Background(), cfg(root, true))

	assert.Equal(t, len(first.Items), len(second.Items), "cache/ 下的产物不能被再次扫描")
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestExecute_UnknownParser(t *testing.T) {
	root := newRoot(t)
	eff := cfg(root, false)
	eff.Parser = "nope"

	rr := newRunner(t).Execute(context.Background(), eff)
	require.Len(t, rr.Items, 1)
	assert.Equal(t, "", rr.Items[0].Page)
	assert.Equal(t, domain.ErrCodeParserUnknown, rr.Items[0].ErrorCode)
	assert.Contains(t, rr.Items[0].ErrorMsg, combined.Name, "错误信息应列出可用 parser")
}

func TestExecute_Apply_CacheLocked(t *testing.T) {
	root := newRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cache"), 0o755))

	held := flock.New(filepath.Join(root, "cache", ".lock"))
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	rr := newRunner(t).Execute(context.Background(), cfg(root, true))
	require.Len(t, rr.Items, 1)
	assert.Equal(t, domain.ErrCodeCacheLocked, rr.Items[0].ErrorCode)
	assert.NoFileExists(t, filepath.Join(root, "cache", "report.json"))
}

func TestExecute_CanceledContext(t *testing.T) {
	root := newRoot(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rr := newRunner(t).Execute(ctx, cfg(root, false))
	require.Len(t, rr.Items, 3)
	for _, it := range rr.Items {
		assert.Equal(t, domain.ErrCodeCanceled, it.ErrorCode, "page %s", it.Page)
	}
}

type recordObserver struct {
	mu     sync.Mutex
	starts int
	phases []string
	items  []string
}

func (o *recordObserver) OnStart(config.EffectiveConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts++
}

func (o *recordObserver) OnPhaseDone(name string, _ map[string]any, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, name)
}

func (o *recordObserver) OnItemDone(_, _ int, res domain.ItemResult, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, res.Page)
}

func TestExecute_EmitsObserverEvents(t *testing.T) {
	root := newRoot(t)
	obs := &recordObserver{}
	r := newRunner(t)
	r.Observer = obs

	r.Execute(context.Background(), cfg(root, false))

	assert.Equal(t, 1, obs.starts)
	assert.Equal(t, []string{"scan", "parse"}, obs.phases)
	assert.ElementsMatch(t, []string{"broken.html", "movies/matrix.html", "notes.html"}, obs.items)
}
