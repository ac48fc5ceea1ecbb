package config

import (
	"errors"
	"testing"
	"time"
)

func baseEnv() map[string]string {
	return map[string]string{
		"API_FIREBASE_PROJECT_ID": "demo-project",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(baseEnv()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected read timeout %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "demo-project" {
		t.Fatalf("firestore project must default to firebase project, got %q", cfg.Firestore.ProjectID)
	}
	if cfg.PubSub.ProjectID != "demo-project" {
		t.Fatalf("pubsub project must default to firebase project, got %q", cfg.PubSub.ProjectID)
	}
	if cfg.PubSub.TranslationTopic != "translation-jobs" {
		t.Fatalf("unexpected topic %q", cfg.PubSub.TranslationTopic)
	}
	if !cfg.Features.EnableMachineTranslation {
		t.Fatalf("machine translation must default to enabled")
	}
	if cfg.Features.EnableExportUpload {
		t.Fatalf("export upload must default to disabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["API_SERVER_PORT"] = "9000"
	env["API_SERVER_READ_TIMEOUT"] = "5s"
	env["API_FIRESTORE_PROJECT_ID"] = "db-project"
	env["API_FEATURE_MACHINE_TRANSLATION"] = "off"

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Fatalf("expected port override, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("expected read timeout override, got %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "db-project" {
		t.Fatalf("expected firestore override, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.Features.EnableMachineTranslation {
		t.Fatalf("expected machine translation disabled")
	}
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{}))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	fields := validationErr.Fields()
	found := false
	for _, field := range fields {
		if field == "Firebase.ProjectID" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Firebase.ProjectID in %v", fields)
	}
}

func TestLoadExportUploadRequiresBucket(t *testing.T) {
	env := baseEnv()
	env["API_FEATURE_EXPORT_UPLOAD"] = "true"

	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(env))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	env["API_STORAGE_EXPORTS_BUCKET"] = "exports"
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.ExportsBucket != "exports" {
		t.Fatalf("unexpected bucket %q", cfg.Storage.ExportsBucket)
	}
}
