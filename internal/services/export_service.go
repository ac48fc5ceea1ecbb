package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/requestctx"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

const (
	exportContentType      = "application/zip"
	exportCompressionLevel = 6
	maxConcurrentLocales   = 4
)

// LocaleExportError reports which locale's aggregation fetch failed, so the
// caller can name the locale without exposing the underlying cause.
type LocaleExportError struct {
	Locale string
	Err    error
}

func (e *LocaleExportError) Error() string {
	return fmt.Sprintf("aggregate locale %s: %v", e.Locale, e.Err)
}

func (e *LocaleExportError) Unwrap() error { return e.Err }

// ArchiveUploader persists export archives to durable storage. Optional; when
// nil the archive is only streamed to the caller.
type ArchiveUploader interface {
	Upload(ctx context.Context, object string, contentType string, data []byte) (string, error)
}

// ExportServiceDeps enumerates collaborators required to construct the service.
type ExportServiceDeps struct {
	Projects     repositories.ProjectRepository
	Locales      repositories.LocaleRepository
	Keys         repositories.KeyRepository
	Translations repositories.TranslationRepository
	Uploader     ArchiveUploader
	Clock        func() time.Time
}

type exportService struct {
	projects     repositories.ProjectRepository
	locales      repositories.LocaleRepository
	keys         repositories.KeyRepository
	translations repositories.TranslationRepository
	uploader     ArchiveUploader
	clock        func() time.Time
}

// NewExportService wires dependencies into an ExportService implementation.
func NewExportService(deps ExportServiceDeps) (ExportService, error) {
	if deps.Projects == nil {
		return nil, errors.New("export service: project repository is required")
	}
	if deps.Locales == nil {
		return nil, errors.New("export service: locale repository is required")
	}
	if deps.Keys == nil {
		return nil, errors.New("export service: key repository is required")
	}
	if deps.Translations == nil {
		return nil, errors.New("export service: translation repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &exportService{
		projects:     deps.Projects,
		locales:      deps.Locales,
		keys:         deps.Keys,
		translations: deps.Translations,
		uploader:     deps.Uploader,
		clock:        func() time.Time { return clock().UTC() },
	}, nil
}

// Export aggregates every locale's translations into one JSON file per locale
// and packages them into a zip archive. Missing translations export as empty
// strings so every file carries the full key set.
func (s *exportService) Export(ctx context.Context, ownerID, projectID string) (ExportArchive, error) {
	project, err := s.loadOwnedProject(ctx, ownerID, projectID)
	if err != nil {
		return ExportArchive{}, err
	}

	locales, err := s.locales.ListByProject(ctx, project.ID)
	if err != nil {
		return ExportArchive{}, err
	}
	if len(locales) == 0 {
		return ExportArchive{}, fmt.Errorf("%w: project has no locales", ErrLocaleNotFound)
	}
	keys, err := s.keys.ListByProject(ctx, project.ID)
	if err != nil {
		return ExportArchive{}, err
	}

	// Fetch all locales in parallel; results land in index-stable slots so
	// the archive ordering matches the locale listing.
	files := make([][]byte, len(locales))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentLocales)
	for i, locale := range locales {
		group.Go(func() error {
			values, err := s.translations.ValuesByLocale(groupCtx, project.ID, locale.Code)
			if err != nil {
				return &LocaleExportError{Locale: locale.Code, Err: err}
			}
			encoded, err := encodeLocaleFile(keys, values)
			if err != nil {
				return fmt.Errorf("encode locale %s: %w", locale.Code, err)
			}
			files[i] = encoded
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return ExportArchive{}, err
	}

	content, err := packageArchive(locales, files)
	if err != nil {
		return ExportArchive{}, err
	}

	archive := ExportArchive{
		Filename:    exportFilename(project.Name, s.clock()),
		ContentType: exportContentType,
		Content:     content,
	}

	if s.uploader != nil {
		uri, err := s.uploader.Upload(ctx, archive.Filename, archive.ContentType, archive.Content)
		if err != nil {
			// Upload is best-effort; the response still carries the archive.
			requestctx.Logger(ctx).Warn("export archive upload failed",
				zap.String("project_id", project.ID),
				zap.Error(err),
			)
		} else {
			archive.ObjectURI = uri
		}
	}

	return archive, nil
}

// encodeLocaleFile renders one locale as pretty-printed JSON. Map keys are
// emitted in sorted order by encoding/json, which keeps output deterministic.
func encodeLocaleFile(keys []domain.Key, values map[string]domain.Translation) ([]byte, error) {
	entries := make(map[string]string, len(keys))
	for _, key := range keys {
		value := ""
		if translation, ok := values[key.ID]; ok && translation.Value != nil {
			value = *translation.Value
		}
		entries[key.FullKey] = value
	}

	encoded, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}

func packageArchive(locales []domain.ProjectLocale, files [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	writer.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, exportCompressionLevel)
	})

	for i, locale := range locales {
		entry, err := writer.Create(locale.Code + ".json")
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", locale.Code, err)
		}
		if _, err := entry.Write(files[i]); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", locale.Code, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalise archive: %w", err)
	}
	return buf.Bytes(), nil
}

// exportFilename builds "project-<name>-<timestamp>.zip". Characters outside
// [a-zA-Z0-9-_] in the project name become underscores; the timestamp is
// RFC 3339 UTC with colons and periods stripped.
func exportFilename(projectName string, now time.Time) string {
	sanitized := sanitizeFilenamePart(projectName)
	timestamp := now.UTC().Format(time.RFC3339)
	timestamp = strings.ReplaceAll(timestamp, ":", "")
	timestamp = strings.ReplaceAll(timestamp, ".", "")
	return fmt.Sprintf("project-%s-%s.zip", sanitized, timestamp)
}

func sanitizeFilenamePart(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (s *exportService) loadOwnedProject(ctx context.Context, ownerID, projectID string) (domain.Project, error) {
	ownerID = strings.TrimSpace(ownerID)
	projectID = strings.TrimSpace(projectID)
	if ownerID == "" || projectID == "" {
		return domain.Project{}, fmt.Errorf("%w: owner id and project id are required", ErrInvalidInput)
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	if project.OwnerID != ownerID {
		return domain.Project{}, ErrProjectNotFound
	}
	return project, nil
}
