package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/analyzer"
	"github.com/blackwell-systems/devpulse/internal/output"
	"github.com/blackwell-systems/devpulse/internal/sessionfile"
	"github.com/blackwell-systems/devpulse/internal/store"
)

// importNamespace seeds the ids derived for records that carry none, so
// re-importing the same file is a no-op.
var importNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/blackwell-systems/devpulse/import"))

var importCmd = &cobra.Command{
	Use:   "import [file|dir]...",
	Short: "Import sessions from JSON or TOML files",
	Long: `Load session records from .json or .toml files into the devpulse
database. Directories are scanned (non-recursively) for supported files.
With no arguments the configured import_dir is used.

Records already present (same id) are skipped, so importing the same files
twice is safe. Records without an id get one derived from the file name
and the record's position and start time.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// importResult is the JSON-serializable output for the import command.
type importResult struct {
	Files    []importedFile `json:"files"`
	Parsed   int            `json:"parsed"`
	Inserted int            `json:"inserted"`
	Skipped  int            `json:"skipped"`
}

type importedFile struct {
	Path     string `json:"path"`
	Sessions int    `json:"sessions"`
}

// collectFiles parses every path, expanding directories.
func collectFiles(ctx context.Context, paths []string) ([]sessionfile.File, error) {
	var files []sessionfile.File
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			dirFiles, err := sessionfile.ParseDir(ctx, p)
			if err != nil {
				return nil, err
			}
			files = append(files, dirFiles...)
			continue
		}
		sessions, err := sessionfile.ParseFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, sessionfile.File{Path: p, Sessions: sessions})
	}
	return files, nil
}

// importRows converts parsed files into store rows, deriving stable ids for
// records that have none.
func importRows(files []sessionfile.File) []store.SessionRow {
	var rows []store.SessionRow
	for _, f := range files {
		source := sourcePath(f.Path)
		for i, s := range f.Sessions {
			if s.ID == "" {
				s.ID = derivedID(source, i, s)
			}
			rows = append(rows, store.FromAnalyzer(s, "import"))
		}
	}
	return rows
}

// sourcePath is the cleaned absolute form of path, so the same file yields
// the same ids whatever directory the import runs from.
func sourcePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func derivedID(file string, index int, s analyzer.Session) string {
	name := file + "#" + strconv.Itoa(index) + "@" + s.StartTime.UTC().Format("2006-01-02T15:04:05.999999999Z")
	return uuid.NewSHA1(importNamespace, []byte(name)).String()
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.ImportDir}
	}

	files, err := collectFiles(cmd.Context(), paths)
	if err != nil {
		return fmt.Errorf("reading session files: %w", err)
	}

	rows := importRows(files)
	inserted, err := db.InsertSessions(rows)
	if err != nil {
		return fmt.Errorf("storing sessions: %w", err)
	}

	result := importResult{
		Files:    make([]importedFile, 0, len(files)),
		Parsed:   len(rows),
		Inserted: inserted,
		Skipped:  len(rows) - inserted,
	}
	for _, f := range files {
		result.Files = append(result.Files, importedFile{Path: f.Path, Sessions: len(f.Sessions)})
		logger.Info("parsed session file", "path", f.Path, "sessions", len(f.Sessions))
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, output.Section("Import"))
	for _, f := range result.Files {
		renderKV(w, filepath.Base(f.Path), output.StyleMuted.Render(fmt.Sprintf("%d sessions", f.Sessions)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s %s\n",
		output.StyleSuccess.Render(fmt.Sprintf("%d imported", result.Inserted)),
		output.StyleMuted.Render(fmt.Sprintf("(%d already present)", result.Skipped)))
	return nil
}
