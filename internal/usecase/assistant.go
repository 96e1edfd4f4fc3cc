package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"jobfit-agent/internal/domain"
)

// Completer sends one completion request to a provider and returns the text
// of the first completion. Implementations wrap domain.ErrEmptyCompletion
// when the response carries no text.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// AnalyzeJobInput is a raw job posting; Website may be empty.
type AnalyzeJobInput struct {
	Website     string
	Description string
}

// AnalyzeFitInput pairs a prior job analysis with the candidate's resume.
type AnalyzeFitInput struct {
	JobAnalysis string
	Resume      string
}

// GenerateInput feeds both resume and cover-letter generation.
type GenerateInput struct {
	JobAnalysis    string
	Resume         string
	AdditionalInfo string
	FitAnalysis    string
}

// AssistantService implements the four job-application operations. It holds
// no per-request state and is safe for concurrent use.
type AssistantService struct {
	direct Completer
	sdk    Completer
	logger *slog.Logger

	analyzeJob          operation
	analyzeFit          operation
	generateResume      operation
	generateCoverLetter operation
}

// NewAssistantService routes job analysis to direct and the other three
// operations to sdk. Empty Models fields fall back to DefaultModels.
func NewAssistantService(direct, sdk Completer, models Models, logger *slog.Logger) (*AssistantService, error) {
	if direct == nil {
		return nil, errors.New("usecase: direct completer must not be nil")
	}
	if sdk == nil {
		return nil, errors.New("usecase: sdk completer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &AssistantService{direct: direct, sdk: sdk, logger: logger}
	s.analyzeJob, s.analyzeFit, s.generateResume, s.generateCoverLetter = buildOperations(models)
	return s, nil
}

// AnalyzeJob returns an HTML analysis of a job posting. An empty completion
// is an UPSTREAM_ERROR; this operation has no fallback text.
func (s *AssistantService) AnalyzeJob(ctx context.Context, caller domain.Caller, in AnalyzeJobInput) (string, error) {
	if !caller.Authenticated() {
		return "", ErrUnauthorized()
	}
	return s.complete(ctx, s.analyzeJob, buildJobAnalysisPrompt(in))
}

// AnalyzeFit returns an HTML fit assessment, or "No analysis generated" when
// the provider answers without content.
func (s *AssistantService) AnalyzeFit(ctx context.Context, caller domain.Caller, in AnalyzeFitInput) (string, error) {
	if !caller.Authenticated() {
		return "", ErrUnauthorized()
	}
	return s.complete(ctx, s.analyzeFit, buildFitAnalysisPrompt(in))
}

// GenerateResume returns a tailored HTML resume, or its failure text as a
// fallback when the provider answers without content.
func (s *AssistantService) GenerateResume(ctx context.Context, caller domain.Caller, in GenerateInput) (string, error) {
	if !caller.Authenticated() {
		return "", ErrUnauthorized()
	}
	return s.complete(ctx, s.generateResume, buildResumePrompt(in))
}

// GenerateCoverLetter returns an HTML cover letter, with the same fallback
// behavior as GenerateResume.
func (s *AssistantService) GenerateCoverLetter(ctx context.Context, caller domain.Caller, in GenerateInput) (string, error) {
	if !caller.Authenticated() {
		return "", ErrUnauthorized()
	}
	return s.complete(ctx, s.generateCoverLetter, buildCoverLetterPrompt(in))
}

func (s *AssistantService) complete(ctx context.Context, op operation, prompt string) (string, error) {
	client := s.sdk
	if op.provider == providerDirect {
		client = s.direct
	}
	provider := client.Name()

	out, err := client.Complete(ctx, op.request(prompt))
	if err == nil && out == "" {
		err = domain.ErrEmptyCompletion
	}
	if err == nil {
		return out, nil
	}

	if errors.Is(err, domain.ErrEmptyCompletion) {
		if op.fallback != "" {
			s.logger.WarnContext(ctx, "provider returned no completion, using fallback",
				"operation", op.name, "provider", provider, "model", op.model)
			return op.fallback, nil
		}
		s.logger.ErrorContext(ctx, "provider returned no completion",
			"operation", op.name, "provider", provider, "model", op.model, "err", err)
		return "", newError(ErrorUpstream, "empty_completion", op.failureMessage(err), err)
	}

	s.logger.ErrorContext(ctx, "provider call failed",
		"operation", op.name, "provider", provider, "model", op.model, "err", err)
	if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
		return "", newError(ErrorRateLimited, provider+"_rate_limited", op.failureMessage(err), err)
	}
	return "", newError(ErrorUpstream, provider+"_error", op.failureMessage(err), err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
