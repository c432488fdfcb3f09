package searxup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// SnapshotArtifacts archives the current configuration artifacts before
// a re-run overwrites them, so a known-good setup can be restored by
// hand. Missing files are skipped; a run against a fresh host produces
// no archive at all.
func SnapshotArtifacts(cfg Config) (string, error) {
	paths := []string{
		cfg.EnvPath(),
		cfg.SettingsPath(),
		cfg.CaddyPath(),
		cfg.ComposePath(),
	}

	var existing []string
	for _, p := range paths {
		if fileExists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return "", nil
	}

	backupDir := filepath.Join(cfg.ProjectDir, "backups")
	if err := ensureDir(backupDir, 0o750); err != nil {
		return "", err
	}

	ts := time.Now().UTC().Format("20060102T150405Z")
	outPath := filepath.Join(backupDir, fmt.Sprintf("searxup_%s.tar.gz", ts))

	outFile, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create backup archive: %w", err)
	}
	defer outFile.Close()

	gz := gzip.NewWriter(outFile)
	tw := tar.NewWriter(gz)

	for _, p := range existing {
		if err := addToArchive(tw, cfg.ProjectDir, p); err != nil {
			tw.Close()
			gz.Close()
			return "", err
		}
	}

	if err := tw.Close(); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	return outPath, nil
}

func addToArchive(tw *tar.Writer, root, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = rel
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archive %s: %w", rel, err)
	}
	return nil
}
