// Copyright 2025 Arcentra Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arcentrix/ringway/internal/ringbuf"
	"github.com/google/uuid"
)

// DemoEvent is the slot type the demo pipeline publishes into the ring.
// Slots are preallocated once by NewRingBuffer's factory and reused
// forever, so CorrelationID and Payload are overwritten on every claim
// rather than allocated fresh.
type DemoEvent struct {
	CorrelationID uuid.UUID
	Payload       int64
	ValidatedAt   time.Time
}

// validateStage is the first stage of the demo two-stage DAG: it checks
// Payload and sets ValidatedAt, gating the record stage behind it.
type validateStage struct {
	logger   *slog.Logger
	sequence *ringbuf.Sequence
}

func (s *validateStage) OnEvent(event *DemoEvent, sequence int64, endOfBatch bool) error {
	if event.Payload < 0 {
		return fmt.Errorf("event %d: negative payload %d", sequence, event.Payload)
	}
	event.ValidatedAt = time.Now()
	return nil
}

// recordStage is the terminal stage: it logs the validated event. In a
// real deployment this is where a durable sink would live; here it just
// demonstrates a consumer gated behind another consumer.
type recordStage struct {
	logger *slog.Logger
}

func (s *recordStage) OnEvent(event *DemoEvent, sequence int64, endOfBatch bool) error {
	s.logger.Info("recorded event",
		"sequence", sequence,
		"correlation_id", event.CorrelationID.String(),
		"payload", event.Payload,
		"end_of_batch", endOfBatch,
	)
	return nil
}

// loggingExceptionHandler forwards every processor fault to slog at
// error level instead of halting the processor, mirroring the teacher's
// processRequest panic-recovery logging in internal/disruptor/processor.go
// translated from log.Printf to structured fields. It implements the
// full optional exception-handler capability set so lifecycle and
// timeout faults are reported too, not just event faults.
type loggingExceptionHandler struct {
	logger *slog.Logger
	stage  string
}

func (h *loggingExceptionHandler) HandleEventException(err error, sequence int64, event *DemoEvent) error {
	h.logger.Error("handler fault", "stage", h.stage, "sequence", sequence, "err", err)
	return nil
}

func (h *loggingExceptionHandler) HandleOnStartException(err error) {
	h.logger.Error("onStart fault", "stage", h.stage, "err", err)
}

func (h *loggingExceptionHandler) HandleOnShutdownException(err error) {
	h.logger.Error("onShutdown fault", "stage", h.stage, "err", err)
}

func (h *loggingExceptionHandler) HandleOnTimeoutException(err error, sequence int64) {
	h.logger.Error("onTimeout fault", "stage", h.stage, "sequence", sequence, "err", err)
}

// pipeline wires a RingBuffer[DemoEvent] through a validate->record
// two-stage DAG and exposes the producer side as Publish.
type pipeline struct {
	ring        *ringbuf.RingBuffer[DemoEvent]
	validateBEP *ringbuf.BatchEventProcessor[DemoEvent]
	recordBEP   *ringbuf.BatchEventProcessor[DemoEvent]
}

// buildPipeline allocates the ring and wires the validate->record DAG:
// record's barrier depends on validate's sequence, and record's
// sequence, as the terminal stage, is the sole gating sequence the
// producer must stay behind.
// validateLogger and recordLogger are expected to be each stage's own
// named channel logger (see pkg/logger's Channel) so the two stages'
// log lines, and any fault it reports, can be told apart.
func buildPipeline(bufferSize int64, producerType ringbuf.ProducerType, waitStrategy ringbuf.WaitStrategy, validateLogger, recordLogger *slog.Logger) (*pipeline, error) {
	ring, err := ringbuf.NewRingBuffer[DemoEvent](bufferSize, producerType, waitStrategy, func() DemoEvent {
		return DemoEvent{}
	})
	if err != nil {
		return nil, fmt.Errorf("build ring buffer: %w", err)
	}

	validateBarrier := ring.NewBarrier()
	validateHandler := &validateStage{logger: validateLogger}
	validateBEP := ringbuf.NewBatchEventProcessor[DemoEvent](ring, validateBarrier, validateHandler)
	validateHandler.sequence = validateBEP.GetSequence()
	validateBEP.SetExceptionHandler(&loggingExceptionHandler{logger: validateLogger, stage: "validate"})

	recordBarrier := ring.NewBarrier(validateBEP.GetSequence())
	recordHandler := &recordStage{logger: recordLogger}
	recordBEP := ringbuf.NewBatchEventProcessor[DemoEvent](ring, recordBarrier, recordHandler)
	recordBEP.SetExceptionHandler(&loggingExceptionHandler{logger: recordLogger, stage: "record"})

	ring.AddGatingSequences(recordBEP.GetSequence())

	return &pipeline{
		ring:        ring,
		validateBEP: validateBEP,
		recordBEP:   recordBEP,
	}, nil
}

// Start runs both processors in the background until ctx is cancelled.
func (p *pipeline) Start(ctx context.Context) {
	go func() { _ = p.validateBEP.Run() }()
	go func() { _ = p.recordBEP.Run() }()

	go func() {
		<-ctx.Done()
		p.validateBEP.Halt()
		p.recordBEP.Halt()
	}()
}

// Publish claims a slot, fills it with a fresh correlation ID and the
// given payload, and publishes it.
func (p *pipeline) Publish(payload int64) int64 {
	return p.ring.PublishEvent(func(slot *DemoEvent, sequence int64) {
		slot.CorrelationID = uuid.New()
		slot.Payload = payload
		slot.ValidatedAt = time.Time{}
	})
}
