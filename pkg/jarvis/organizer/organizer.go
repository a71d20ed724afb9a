// Package organizer sorts the files of a directory into category folders
// based on their extension.
package organizer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OtherCategory receives files with an unknown extension.
const OtherCategory = "Others"

// categories maps folder names to the extensions they collect.
var categories = map[string][]string{
	"Images":        {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tiff", ".heic", ".svg"},
	"Videos":        {".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"},
	"Audio":         {".mp3", ".wav", ".aac", ".flac", ".m4a", ".ogg"},
	"Archives":      {".zip", ".rar", ".7z", ".tar", ".gz", ".bz2"},
	"Documents":     {".txt", ".rtf", ".md"},
	"PDFs":          {".pdf"},
	"Spreadsheets":  {".xls", ".xlsx", ".csv", ".ods"},
	"Presentations": {".ppt", ".pptx", ".odp"},
	"Code":          {".py", ".js", ".ts", ".java", ".go", ".cs", ".cpp", ".c", ".rs", ".rb", ".php", ".sh", ".bat", ".ps1"},
	"Executables":   {".exe", ".msi", ".apk", ".dmg"},
	"Design":        {".psd", ".ai", ".fig", ".xd", ".sketch"},
}

var extCategory = func() map[string]string {
	m := make(map[string]string)
	for cat, exts := range categories {
		for _, ext := range exts {
			m[ext] = cat
		}
	}
	return m
}()

// Category returns the folder a file name belongs to.
func Category(name string) string {
	if cat, ok := extCategory[strings.ToLower(filepath.Ext(name))]; ok {
		return cat
	}
	return OtherCategory
}

// Move describes one planned or performed file move.
type Move struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Category string `json:"category"`
}

// Report summarizes an organize run.
type Report struct {
	Root    string `json:"root"`
	DryRun  bool   `json:"dry_run"`
	Moves   []Move `json:"moves"`
	Moved   int    `json:"moved"`
	Skipped int    `json:"skipped"`
}

// Organizer moves files into category folders.
type Organizer struct {
	logger *slog.Logger
}

// New creates an Organizer.
func New(logger *slog.Logger) *Organizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Organizer{logger: logger.With("component", "organizer")}
}

// Organize sorts the top-level files of root into category folders.
// Subdirectories are left alone; existing category folders are not counted
// as skipped. With dryRun nothing is moved but the planned moves are
// reported. Moved counts the moves performed, or planned in a dry run.
func (o *Organizer) Organize(root string, dryRun bool) (*Report, error) {
	dir, err := ResolvePath(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("folder not found: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a folder: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	report := &Report{Root: dir, DryRun: dryRun}
	// planned tracks destinations claimed in this run so a dry run reports
	// the same collision-free names a real run would use.
	planned := make(map[string]bool)

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if !isCategoryDir(name) {
				report.Skipped++
			}
			continue
		}
		if !e.Type().IsRegular() {
			report.Skipped++
			continue
		}

		cat := Category(name)
		targetDir := filepath.Join(dir, cat)
		dest := uniqueDest(targetDir, name, planned)
		planned[dest] = true

		mv := Move{From: filepath.Join(dir, name), To: dest, Category: cat}
		if !dryRun {
			if err := os.MkdirAll(targetDir, 0o755); err != nil {
				o.logger.Warn("cannot create category folder", "dir", targetDir, "error", err)
				report.Skipped++
				continue
			}
			if err := os.Rename(mv.From, mv.To); err != nil {
				o.logger.Warn("cannot move file", "from", mv.From, "error", err)
				report.Skipped++
				continue
			}
		}

		report.Moves = append(report.Moves, mv)
		report.Moved++
	}

	o.logger.Info("folder organized",
		"root", dir,
		"dry_run", dryRun,
		"moved", report.Moved,
		"skipped", report.Skipped,
	)
	return report, nil
}

// ResolvePath expands a leading "~" and returns an absolute path.
func ResolvePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("folder path missing")
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}

func isCategoryDir(name string) bool {
	if name == OtherCategory {
		return true
	}
	_, ok := categories[name]
	return ok
}

// uniqueDest returns dir/name, or dir/"base (n).ext" when taken on disk or
// already claimed in this run.
func uniqueDest(dir, name string, claimed map[string]bool) string {
	dest := filepath.Join(dir, name)
	if !taken(dest, claimed) {
		return dest
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
		if !taken(dest, claimed) {
			return dest
		}
	}
}

func taken(path string, claimed map[string]bool) bool {
	if claimed[path] {
		return true
	}
	_, err := os.Lstat(path)
	return err == nil
}
