package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
)

const defaultPublishTimeout = 10 * time.Second

type publisher interface {
	Publish(context.Context, *pubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// Publisher submits scans to the scanner topic, for carts without a reader
// of their own and for the dashboard's test scans.
type Publisher struct {
	pub publisher
}

func NewPublisher(p *pubsub.Publisher) (*Publisher, error) {
	if p == nil {
		return nil, fmt.Errorf("scanner publisher required")
	}
	return &Publisher{pub: &gcpPublisher{Publisher: p}}, nil
}

// Publish returns the server-assigned message id.
func (p *Publisher) Publish(ctx context.Context, scan Scan, source string) (string, error) {
	data, err := json.Marshal(scan)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode scan")
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"source":      source,
			"occurred_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := p.pub.Publish(publishCtx, msg)
	if result == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "scanner topic not configured")
	}
	id, err := result.Get(publishCtx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish scan")
	}
	return id, nil
}

type gcpPublisher struct {
	*pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*pubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
