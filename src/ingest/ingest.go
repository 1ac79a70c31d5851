package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/Protocol-Lattice/go-assistant/src/concurrent"
)

// Indexer receives the text of each accepted file.
type Indexer interface {
	Index(ctx context.Context, key, text string) error
}

// Result summarises one ingestion run.
type Result struct {
	FilesIndexed int
	FilesSkipped int
	FilesFailed  int
	TotalBytes   int64
	Duration     time.Duration
}

// Ingestor walks a repository and feeds source files into an Indexer.
type Ingestor struct {
	MaxFileBytes int64
	AllowedExts  map[string]struct{}
	Workers      int
	Logger       *slog.Logger
}

func NewIngestor(logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		MaxFileBytes: 10 << 20,
		AllowedExts: map[string]struct{}{
			".txt": {}, ".md": {}, ".markdown": {}, ".json": {}, ".yaml": {}, ".yml": {},
			".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".java": {}, ".rs": {}, ".cpp": {}, ".c": {}, ".cs": {}, ".sql": {},
		},
		Workers: 8,
		Logger:  logger,
	}
}

// IngestRepo accepts either a local directory or a remote git URL.
// Remote repositories are shallow-cloned into a temp dir first.
func (ig *Ingestor) IngestRepo(ctx context.Context, idx Indexer, repo string) (*Result, error) {
	if idx == nil {
		return nil, fmt.Errorf("ingest: nil indexer")
	}
	path := repo
	if isRemote(repo) {
		tmp, err := os.MkdirTemp("", "assistant-ingest-*")
		if err != nil {
			return nil, fmt.Errorf("ingest: temp dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		if err := cloneRepo(ctx, repo, tmp); err != nil {
			return nil, err
		}
		path = tmp
	}
	return ig.ingestDir(ctx, idx, path)
}

func isRemote(repo string) bool {
	return strings.HasPrefix(repo, "http://") ||
		strings.HasPrefix(repo, "https://") ||
		strings.HasPrefix(repo, "git@") ||
		strings.HasPrefix(repo, "ssh://")
}

func cloneRepo(ctx context.Context, url, dest string) error {
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dest)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ingest: clone %s: %w: %s", url, err, strings.TrimSpace(string(out)))
	}
	return nil
}

type candidate struct {
	path string
	rel  string
	size int64
}

func (ig *Ingestor) ingestDir(ctx context.Context, idx Indexer, dir string) (*Result, error) {
	start := time.Now()
	res := &Result{}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: resolve %s: %w", dir, err)
	}

	var gitIgnore *ignore.GitIgnore
	if _, err := os.Stat(filepath.Join(absDir, ".gitignore")); err == nil {
		// A malformed .gitignore is ignored rather than failing the run.
		gitIgnore, _ = ignore.CompileIgnoreFile(filepath.Join(absDir, ".gitignore"))
	}

	var files []candidate
	err = filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			res.FilesFailed++
			return nil
		}
		rel, err := filepath.Rel(absDir, path)
		if err != nil {
			res.FilesFailed++
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			if gitIgnore != nil && gitIgnore.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if gitIgnore != nil && gitIgnore.MatchesPath(rel) {
			res.FilesSkipped++
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := ig.AllowedExts[ext]; !ok {
			res.FilesSkipped++
			return nil
		}
		if info.Size() > ig.MaxFileBytes {
			res.FilesSkipped++
			return nil
		}
		files = append(files, candidate{path: path, rel: rel, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: walk %s: %w", absDir, err)
	}

	errs := concurrent.ForEach(ctx, files, ig.Workers, func(ctx context.Context, c candidate) error {
		content, err := os.ReadFile(c.path)
		if err != nil {
			return fmt.Errorf("read %s: %w", c.rel, err)
		}
		return idx.Index(ctx, c.rel, string(content))
	})
	for i, err := range errs {
		if err != nil {
			ig.Logger.Warn("index failed", "file", files[i].rel, "error", err)
			res.FilesFailed++
			continue
		}
		res.FilesIndexed++
		res.TotalBytes += files[i].size
	}

	res.Duration = time.Since(start)
	ig.Logger.Info("repo ingested",
		"dir", absDir,
		"indexed", res.FilesIndexed,
		"skipped", res.FilesSkipped,
		"failed", res.FilesFailed)
	return res, nil
}
