package scanner

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/metrics"
)

// Consumer feeds scanner messages from Pub/Sub into the Service.
type Consumer struct {
	svc          Service
	subscription *pubsub.Subscriber
	metrics      *metrics.ScannerMetrics
	logg         *logger.Logger
}

func NewConsumer(svc Service, subscription *pubsub.Subscriber, m *metrics.ScannerMetrics, logg *logger.Logger) (*Consumer, error) {
	if svc == nil {
		return nil, fmt.Errorf("scanner service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("scanner subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{svc: svc, subscription: subscription, metrics: m, logg: logg}, nil
}

// Run receives until ctx is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.ID, msg.Data).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

// process acks anything that can never succeed (bad payload, unknown tag or
// product) and nacks dependency failures so Pub/Sub redelivers.
func (c *Consumer) process(ctx context.Context, messageID string, data []byte) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", messageID)

	var scan Scan
	if err := json.Unmarshal(data, &scan); err != nil {
		c.logg.Error(logCtx, "scanner.decode_failed", err)
		c.metrics.Inc(metrics.ScanDropped)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"rfid_tag": scan.RFIDTag,
		"barcode":  scan.Barcode,
	})

	if _, err := c.svc.HandleScan(logCtx, scan); err != nil {
		switch pkgerrors.CodeOf(err) {
		case pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
			c.logg.Warn(logCtx, "scanner.scan_dropped: "+err.Error())
			c.metrics.Inc(metrics.ScanDropped)
			return processResult{ack: true}
		default:
			c.logg.Error(logCtx, "scanner.scan_failed", err)
			c.metrics.Inc(metrics.ScanRetried)
			return processResult{nack: true}
		}
	}
	c.metrics.Inc(metrics.ScanInserted)
	return processResult{ack: true}
}
