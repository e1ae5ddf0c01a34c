package extraction

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/pkg/errors"
)

var archiveExtensions = []string{".zip", ".rar", ".7z", ".tar", ".tar.gz", ".tgz", ".tar.xz"}

// IsArchive reports whether name looks like an archive ExtractArchive can open.
func IsArchive(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// skipEntry drops OS metadata that archivers add next to the real content.
func skipEntry(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == "__MACOSX" || strings.HasPrefix(part, "._") || part == ".DS_Store" {
			return true
		}
	}
	return false
}

// ExtractArchive extracts the contents of an archive to a temporary directory and
// returns the extracted files and the directory. The caller removes the directory.
func ExtractArchive(ctx context.Context, archivePath string) ([]string, string, error) {
	destDir, err := os.MkdirTemp("", "tour-sync-*")
	if err != nil {
		return nil, "", err
	}

	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", errors.Wrapf(err, "open archive %s", archivePath)
	}

	var files []string
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if skipEntry(p) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		destPath := filepath.Join(destDir, filepath.FromSlash(p))
		if err := extractFile(fsys, p, destPath); err != nil {
			return err
		}
		files = append(files, destPath)
		return nil
	})
	if err != nil {
		os.RemoveAll(destDir)
		return nil, "", err
	}

	return files, destDir, nil
}

func extractFile(fsys fs.FS, name, destPath string) error {
	reader, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	outFile, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, reader)
	return err
}

// SourceRoot returns the directory holding the tour folders of an extracted archive.
// Archives that wrap everything in one top-level folder are unwrapped when that folder
// is not itself a tour.
func SourceRoot(destDir string, isTour func(dir string) bool) string {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return destDir
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !skipEntry(e.Name()) && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) != 1 {
		return destDir
	}
	inner := filepath.Join(destDir, dirs[0])
	if isTour != nil && isTour(inner) {
		return destDir
	}
	return inner
}

// CreateArchive writes srcDir, under its own base name, into a zip file at outPath.
func CreateArchive(ctx context.Context, srcDir, outPath string) error {
	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		srcDir: path.Base(filepath.ToSlash(filepath.Clean(srcDir))),
	})
	if err != nil {
		return errors.Wrapf(err, "collect %s", srcDir)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := (archives.Zip{}).Archive(ctx, out, files); err != nil {
		out.Close()
		os.Remove(outPath)
		return errors.Wrapf(err, "write %s", outPath)
	}
	return out.Close()
}
