package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

func newExportService(t *testing.T, env *testEnv, uploader ArchiveUploader) ExportService {
	t.Helper()
	svc, err := NewExportService(ExportServiceDeps{
		Projects:     env.projects,
		Locales:      env.locales,
		Keys:         env.keys,
		Translations: env.translations,
		Uploader:     uploader,
		Clock:        env.clock,
	})
	if err != nil {
		t.Fatalf("NewExportService: %v", err)
	}
	return svc
}

func readArchive(t *testing.T, content []byte) map[string]string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	files := make(map[string]string, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open %s: %v", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", file.Name, err)
		}
		files[file.Name] = string(data)
	}
	return files
}

func TestExportBuildsPerLocaleFiles(t *testing.T) {
	env := newTestEnv()
	svc := newExportService(t, env, nil)

	project := env.seedProject("owner-1", "Mobile App", "app", "en")
	env.seedLocale(project.ID, "fr")

	keyTitle := env.seedKey(project.ID, "app.home.title")
	keyBye := env.seedKey(project.ID, "app.home.goodbye")
	env.seedTranslation(project.ID, keyTitle.ID, "en", "Welcome")
	env.seedTranslation(project.ID, keyBye.ID, "en", "Goodbye")
	env.seedTranslation(project.ID, keyTitle.ID, "fr", "Bienvenue")

	archive, err := svc.Export(context.Background(), "owner-1", project.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if archive.ContentType != "application/zip" {
		t.Fatalf("unexpected content type %q", archive.ContentType)
	}

	files := readArchive(t, archive.Content)
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}

	var en map[string]string
	if err := json.Unmarshal([]byte(files["en.json"]), &en); err != nil {
		t.Fatalf("unmarshal en.json: %v", err)
	}
	if en["app.home.title"] != "Welcome" || en["app.home.goodbye"] != "Goodbye" {
		t.Fatalf("unexpected en.json %v", en)
	}

	var fr map[string]string
	if err := json.Unmarshal([]byte(files["fr.json"]), &fr); err != nil {
		t.Fatalf("unmarshal fr.json: %v", err)
	}
	// Missing translations export as empty strings, never dropped keys.
	if fr["app.home.title"] != "Bienvenue" || fr["app.home.goodbye"] != "" {
		t.Fatalf("unexpected fr.json %v", fr)
	}
	if _, ok := fr["app.home.goodbye"]; !ok {
		t.Fatalf("missing key must still be present in fr.json")
	}
}

func TestExportOutputIsDeterministic(t *testing.T) {
	env := newTestEnv()
	svc := newExportService(t, env, nil)

	project := env.seedProject("owner-1", "App", "app", "en")
	keyB := env.seedKey(project.ID, "app.b")
	keyA := env.seedKey(project.ID, "app.a")
	env.seedTranslation(project.ID, keyB.ID, "en", "B")
	env.seedTranslation(project.ID, keyA.ID, "en", "A")

	archive, err := svc.Export(context.Background(), "owner-1", project.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	files := readArchive(t, archive.Content)

	content := files["en.json"]
	if !strings.Contains(content, "  \"app.a\"") {
		t.Fatalf("expected 2-space indentation, got %q", content)
	}
	if strings.Index(content, "app.a") > strings.Index(content, "app.b") {
		t.Fatalf("keys must be sorted, got %q", content)
	}

	again, err := svc.Export(context.Background(), "owner-1", project.ID)
	if err != nil {
		t.Fatalf("Export second run: %v", err)
	}
	if files["en.json"] != readArchive(t, again.Content)["en.json"] {
		t.Fatalf("export output must be deterministic")
	}
}

func TestExportFilename(t *testing.T) {
	env := newTestEnv()
	svc := newExportService(t, env, nil)
	project := env.seedProject("owner-1", "My App (v2)!", "app", "en")

	archive, err := svc.Export(context.Background(), "owner-1", project.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	// Clock is fixed at 2026-08-01T12:00:00Z; colons are stripped.
	want := "project-My_App__v2__-2026-08-01T120000Z.zip"
	if archive.Filename != want {
		t.Fatalf("expected filename %q, got %q", want, archive.Filename)
	}
}

type localeFailingTranslations struct {
	repositories.TranslationRepository
	locale string
}

func (r *localeFailingTranslations) ValuesByLocale(ctx context.Context, projectID, locale string) (map[string]domain.Translation, error) {
	if locale == r.locale {
		return nil, errors.New("backend unavailable")
	}
	return r.TranslationRepository.ValuesByLocale(ctx, projectID, locale)
}

func TestExportLocaleFetchFailureIsTyped(t *testing.T) {
	env := newTestEnv()
	project := env.seedProject("owner-1", "App", "app", "en")
	env.seedLocale(project.ID, "fr")

	svc, err := NewExportService(ExportServiceDeps{
		Projects:     env.projects,
		Locales:      env.locales,
		Keys:         env.keys,
		Translations: &localeFailingTranslations{TranslationRepository: env.translations, locale: "fr"},
		Clock:        env.clock,
	})
	if err != nil {
		t.Fatalf("NewExportService: %v", err)
	}

	_, err = svc.Export(context.Background(), "owner-1", project.ID)
	var localeErr *LocaleExportError
	if !errors.As(err, &localeErr) {
		t.Fatalf("expected LocaleExportError, got %v", err)
	}
	if localeErr.Locale != "fr" {
		t.Fatalf("expected locale fr, got %q", localeErr.Locale)
	}
}

func TestExportOwnership(t *testing.T) {
	env := newTestEnv()
	svc := newExportService(t, env, nil)
	project := env.seedProject("owner-1", "App", "app", "en")

	if _, err := svc.Export(context.Background(), "owner-2", project.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if _, err := svc.Export(context.Background(), "owner-1", "missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound for missing project, got %v", err)
	}
}

type recordingUploader struct {
	object string
	err    error
}

func (u *recordingUploader) Upload(_ context.Context, object, _ string, _ []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.object = object
	return "gs://exports/" + object, nil
}

func TestExportUploadsWhenConfigured(t *testing.T) {
	env := newTestEnv()
	uploader := &recordingUploader{}
	svc := newExportService(t, env, uploader)
	project := env.seedProject("owner-1", "App", "app", "en")

	archive, err := svc.Export(context.Background(), "owner-1", project.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if uploader.object != archive.Filename {
		t.Fatalf("expected uploaded object %q, got %q", archive.Filename, uploader.object)
	}
	if archive.ObjectURI != "gs://exports/"+archive.Filename {
		t.Fatalf("unexpected object uri %q", archive.ObjectURI)
	}

	// Upload failures degrade gracefully.
	uploader.err = errors.New("bucket unavailable")
	degraded, err := svc.Export(context.Background(), "owner-1", project.ID)
	if err != nil {
		t.Fatalf("Export with failing uploader: %v", err)
	}
	if degraded.ObjectURI != "" {
		t.Fatalf("expected empty object uri on upload failure")
	}
	if len(degraded.Content) == 0 {
		t.Fatalf("archive must still be returned")
	}
}
