// internal/workers/scouting/player-search/handler.go
package playersearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	commonerrors "scout-search/internal/common/errors"
	"scout-search/internal/common/logger"
	"scout-search/internal/search/orchestrator"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "player-search"
)

var (
	ErrPlayerSearchFailed = errors.New("PLAYER_SEARCH_FAILED")
)

type Handler struct {
	config       *Config
	orchestrator *orchestrator.Orchestrator
	logger       logger.Logger
}

func NewHandler(config *Config, orch *orchestrator.Orchestrator, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		orchestrator: orch,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		var verr *commonerrors.ValidationError
		if errors.As(err, &verr) {
			serr := commonerrors.NewValidationFailedError(strings.Join(verr.Messages(), "; "))
			h.failJob(client, job, string(serr.Code), serr.Details)
			return
		}
		h.failJob(client, job, "PLAYER_SEARCH_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	response, err := h.orchestrator.Search(ctx, orchestrator.Request{
		Query:  input.Query,
		Caller: input.Caller,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("search finished", map[string]interface{}{
		"searchId":     response.SearchID,
		"results":      len(response.Results),
		"total":        response.Total,
		"fallbackUsed": response.FallbackUsed,
	})

	return &Output{
		SearchID:         response.SearchID,
		Results:          response.Results,
		Total:            response.Total,
		Page:             response.Page,
		PageSize:         response.PageSize,
		Confidence:       response.Confidence,
		FallbackUsed:     response.FallbackUsed,
		Suggestions:      response.Suggestions,
		ProcessingTimeMs: response.ProcessingTimeMs,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
