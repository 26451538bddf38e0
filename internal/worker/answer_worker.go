package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"learnpool-client/internal/app"
	"learnpool-client/internal/model"
	"learnpool-client/internal/platform/rabbitmq"
	"learnpool-client/internal/repository"
)

// AnswerWorker consumes ask requests and attaches a canned answer after
// a configurable delay, so transcript polling shows the same
// pending-then-answered progression a real generation pipeline produces.
type AnswerWorker struct {
	conn        *amqp.Connection
	answerRepo  *repository.AnswerRepository
	sessionRepo *repository.SessionRepository
	reportCache app.ReportCache
	queueName   string
	modelName   string
	delay       time.Duration
	log         *logrus.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAnswerWorker(
	conn *amqp.Connection,
	answerRepo *repository.AnswerRepository,
	sessionRepo *repository.SessionRepository,
	reportCache app.ReportCache,
	queueName, modelName string,
	delay time.Duration,
	log *logrus.Logger,
) *AnswerWorker {
	return &AnswerWorker{
		conn:        conn,
		answerRepo:  answerRepo,
		sessionRepo: sessionRepo,
		reportCache: reportCache,
		queueName:   queueName,
		modelName:   modelName,
		delay:       delay,
		log:         log,
	}
}

func (w *AnswerWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var req rabbitmq.AnswerRequest
				if err := json.Unmarshal(d.Body, &req); err != nil {
					w.log.WithError(err).Warn("worker decode answer request failed")
					_ = d.Nack(false, false)
					continue
				}

				if err := w.answer(workerCtx, req); err != nil {
					w.log.WithError(err).WithField("question_id", req.QuestionID).
						Warn("worker answer failed")
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *AnswerWorker) answer(ctx context.Context, req rabbitmq.AnswerRequest) error {
	if w.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.delay):
		}
	}

	start := time.Now()
	answer := cannedAnswer(req, w.modelName)
	latency := time.Since(start).Milliseconds() + w.delay.Milliseconds()
	answer.GenerationLatencyMS = &latency

	if err := w.answerRepo.Create(answer); err != nil {
		return err
	}

	if w.reportCache != nil {
		_ = w.reportCache.DeleteReport(ctx, req.SessionID)
		_ = w.reportCache.MarkDirty(ctx, req.SessionID)
	}
	return nil
}

func (w *AnswerWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

var personalityOpeners = map[string]string{
	string(model.PersonalitySupportive): "Great question, let's work through it together.",
	string(model.PersonalityNormal):     "Here is a direct answer.",
	string(model.PersonalityFunny):      "Buckle up, this one is fun.",
}

// cannedAnswer builds a deterministic answer with two citations ordered
// densely from 1. Content echoes the question so manual testing can tell
// answers apart.
func cannedAnswer(req rabbitmq.AnswerRequest, modelName string) *model.Answer {
	opener, ok := personalityOpeners[req.Personality]
	if !ok {
		opener = personalityOpeners[string(model.PersonalitySupportive)]
	}

	page1, page2 := 12, 31
	return &model.Answer{
		QuestionID: req.QuestionID,
		Content: fmt.Sprintf("%s You asked: %q. The short answer is that this topic is covered in the attached lecture material; see the cited passages for the key definitions and a worked example.",
			opener, req.Content),
		ModelUsed: modelName,
		Citations: []model.Citation{
			{
				ChunkID:        fmt.Sprintf("chunk-%d-1", req.QuestionID),
				Content:        "Definition and core properties, with the standard notation used in lecture.",
				PageNumber:     &page1,
				RelevanceScore: 0.92,
				CitationOrder:  1,
			},
			{
				ChunkID:        fmt.Sprintf("chunk-%d-2", req.QuestionID),
				Content:        "Worked example applying the definition step by step.",
				PageNumber:     &page2,
				RelevanceScore: 0.81,
				CitationOrder:  2,
			},
		},
	}
}
