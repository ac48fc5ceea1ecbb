package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/karoldydo/i18n-mate-sub003/internal/services"
)

// PubSubTranslationPublisher publishes machine-translation jobs to a Pub/Sub topic
// consumed by the translation worker.
type PubSubTranslationPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubTranslationPublisher constructs a Pub/Sub backed translation job publisher.
func NewPubSubTranslationPublisher(topic *pubsub.Topic) (*PubSubTranslationPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub translation publisher: topic is required")
	}
	return &PubSubTranslationPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishTranslationJob enqueues a translation job message on the configured topic.
func (p *PubSubTranslationPublisher) PublishTranslationJob(ctx context.Context, message services.TranslationJobMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub translation publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal translation job: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "jobId", message.JobID)
	setAttr(attrs, "projectId", message.ProjectID)
	setAttr(attrs, "mode", message.Mode)
	setAttr(attrs, "targetLocale", message.TargetLocale)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish translation job: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
