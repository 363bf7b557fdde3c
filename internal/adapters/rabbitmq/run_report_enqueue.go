package rabbitmq

import (
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/contracts"
	"auction-normalizer-service/internal/core/domain"
	"auction-normalizer-service/internal/core/port"
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	runReportEventName    = "NormalizationRunReportEvent"
	runReportEventVersion = "1.0.0"
)

// RunReportDTO is the body of a run report message.
type RunReportDTO struct {
	RunID      string           `json:"run_id"`
	Status     domain.RunStatus `json:"status"`
	StartedAt  string           `json:"started_at"`
	FinishedAt string           `json:"finished_at"`
	Processed  int              `json:"processed"`
	Errors     int              `json:"errors"`
	Coverage   domain.Coverage  `json:"coverage"`
}

type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

type RunReporterAdapter struct {
	producer   publisher
	routingKey string
}

func NewRunReporterAdapter(producer publisher, routingKey string) (*RunReporterAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &RunReporterAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func toRunReportDTO(summary *domain.RunSummary) RunReportDTO {
	finishedAt := summary.Run.StartedAt
	if summary.Run.FinishedAt != nil {
		finishedAt = *summary.Run.FinishedAt
	}
	return RunReportDTO{
		RunID:      summary.RunID,
		Status:     summary.Status,
		StartedAt:  summary.Run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: finishedAt.UTC().Format(time.RFC3339),
		Processed:  summary.Run.Processed,
		Errors:     summary.Run.Errors,
		Coverage:   summary.Coverage,
	}
}

func (a *RunReporterAdapter) ReportRun(ctx context.Context, summary *domain.RunSummary) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "RunReporterAdapter",
		"routing_key": a.routingKey,
		"run_id":      summary.RunID,
	})

	body, err := json.Marshal(toRunReportDTO(summary))
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal run report: %w", err)
	}
	if err := contracts.Validate(runReportEventName, runReportEventVersion, body); err != nil {
		adapterLogger.Error("Run report does not match its contract", err, nil)
		return fmt.Errorf("rabbitmq adapter: invalid run report: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Type:         runReportEventName,
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	adapterLogger.Info("Publishing run report", nil)
	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish run report", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish report for run %s: %w", summary.RunID, err)
	}

	adapterLogger.Info("Successfully published run report", nil)
	return nil
}
