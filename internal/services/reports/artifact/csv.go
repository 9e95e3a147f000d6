// Package artifact writes report rows to disk and renders them for download
package artifact

import (
	"context"
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/services/reports/domain"
)

// Content types served for each format
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Files keeps one <id>.csv per job under Dir
type Files struct {
	Dir string
}

var _ domain.ArtifactSink = (*Files)(nil)

// NewFiles returns a sink rooted at dir; the directory is created on first write
func NewFiles(dir string) *Files {
	if strings.TrimSpace(dir) == "" {
		dir = "reports"
	}
	return &Files{Dir: dir}
}

// Path is where the artifact for id lives
func (f *Files) Path(id string) string {
	return filepath.Join(f.Dir, filepath.Base(id)+".csv")
}

// Write renders rows as csv under a temp name and renames it into place,
// so readers never observe a partial file
func (f *Files) Write(ctx context.Context, id string, rows []domain.StoreReportRow) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "create report dir %s", f.Dir)
	}
	tmp, err := os.CreateTemp(f.Dir, filepath.Base(id)+".*.tmp")
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "create temp artifact for %s", id)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := writeCSV(ctx, tmp, rows); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "close artifact for %s", id)
	}

	dst := f.Path(id)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "publish artifact for %s", id)
	}
	if abs, err := filepath.Abs(dst); err == nil {
		dst = abs
	}
	return dst, nil
}

func writeCSV(ctx context.Context, file *os.File, rows []domain.StoreReportRow) error {
	w := csv.NewWriter(file)
	if err := w.Write(domain.ReportColumns); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "write artifact header")
	}
	for i, r := range rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return perr.Wrap(err, perr.ErrorCodeTimeout, "write artifact")
			}
		}
		if err := w.Write(r.Record()); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "write artifact row %d", i+1)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "flush artifact")
	}
	return nil
}

// Open prepares the artifact at path for download in format, csv when empty
func (f *Files) Open(ctx context.Context, path, format string) (domain.Download, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Download{}, perr.NotFoundf("report file %s is gone", filepath.Base(path))
	}
	if err != nil {
		return domain.Download{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "stat %s", path)
	}
	if info.IsDir() {
		return domain.Download{}, perr.Internalf("report path %s is a directory", path)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch format {
	case "", domain.FormatCSV:
		return domain.Download{Name: base + ".csv", ContentType: ContentTypeCSV, Path: path}, nil
	case domain.FormatXLSX:
		b, err := RenderXLSX(ctx, path)
		if err != nil {
			return domain.Download{}, err
		}
		return domain.Download{Name: base + ".xlsx", ContentType: ContentTypeXLSX, Bytes: b}, nil
	}
	return domain.Download{}, perr.WithField(perr.Validationf("format must be one of [csv xlsx]"), "format")
}
