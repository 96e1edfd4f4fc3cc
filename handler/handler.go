package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"jobfit-agent/internal/domain"
	"jobfit-agent/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

const (
	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// next-auth uses the __Secure- prefix when served over https.
var sessionCookieNames = []string{
	"__Secure-next-auth.session-token",
	"next-auth.session-token",
}

type Assistant interface {
	AnalyzeJob(ctx context.Context, caller domain.Caller, in usecase.AnalyzeJobInput) (string, error)
	AnalyzeFit(ctx context.Context, caller domain.Caller, in usecase.AnalyzeFitInput) (string, error)
	GenerateResume(ctx context.Context, caller domain.Caller, in usecase.GenerateInput) (string, error)
	GenerateCoverLetter(ctx context.Context, caller domain.Caller, in usecase.GenerateInput) (string, error)
}

type SessionLookup interface {
	LookupSession(ctx context.Context, token string) (domain.Session, bool, error)
}

type route func(ctx context.Context, caller domain.Caller, body []byte) (string, error)

type Handler struct {
	assistant Assistant
	sessions  SessionLookup
	logger    *slog.Logger
	routes    map[string]route
}

type analyzeJobRequest struct {
	Website     string `json:"website"`
	Description string `json:"description"`
}

type analyzeFitRequest struct {
	JobAnalysis string `json:"jobAnalysis"`
	Resume      string `json:"resume"`
}

type generateResumeRequest struct {
	JobAnalysis    string `json:"jobAnalysis"`
	OriginalResume string `json:"originalResume"`
	AdditionalInfo string `json:"additionalInfo"`
	FitAnalysis    string `json:"fitAnalysis"`
}

type coverLetterRequest struct {
	JobAnalysis    string `json:"jobAnalysis"`
	Resume         string `json:"resume"`
	AdditionalInfo string `json:"additionalInfo"`
	FitAnalysis    string `json:"fitAnalysis"`
}

type htmlResponse struct {
	HTML string `json:"html"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewHandler(assistant Assistant, sessions SessionLookup, logger *slog.Logger) (*Handler, error) {
	if assistant == nil {
		return nil, errors.New("handler: assistant must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("handler: session lookup must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{assistant: assistant, sessions: sessions, logger: logger}
	h.routes = map[string]route{
		"analyze-job":           h.analyzeJob,
		"analyze-fit":           h.analyzeFit,
		"generate-resume":       h.generateResume,
		"generate-cover-letter": h.generateCoverLetter,
	}
	return h, nil
}

// Handle serves API Gateway proxy events. Failures are always rendered as
// responses; the returned error is reserved for the Lambda runtime.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	correlationID := strings.TrimSpace(headerValue(event.Headers, correlationHeader))
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	name := routeName(event.Path)

	resp := h.dispatch(ctx, name, event)
	resp.Headers[correlationHeader] = correlationID

	h.logger.InfoContext(ctx, "request handled",
		"route", name,
		"status", resp.StatusCode,
		"correlation_id", correlationID,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (h *Handler) dispatch(ctx context.Context, name string, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	handle, ok := h.routes[name]
	if !ok {
		return jsonResponse(http.StatusNotFound, errorResponse{Error: codeNotFound, Message: "unknown operation"})
	}
	if event.HTTPMethod != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: codeMethodNotAllowed, Message: "use POST"})
	}

	caller, err := h.resolveCaller(ctx, event.Headers)
	if err != nil {
		h.logger.ErrorContext(ctx, "session lookup failed", "route", name, "err", err)
		return h.errorResponse(ctx, &usecase.Error{Code: usecase.ErrorInternal, Reason: "session_lookup_error", Err: err})
	}
	if !caller.Authenticated() {
		return h.errorResponse(ctx, usecase.ErrUnauthorized())
	}

	body, err := requestBody(event)
	if err != nil {
		return h.errorResponse(ctx, err)
	}
	html, err := handle(ctx, caller, body)
	if err != nil {
		return h.errorResponse(ctx, err)
	}
	return jsonResponse(http.StatusOK, htmlResponse{HTML: html})
}

func (h *Handler) resolveCaller(ctx context.Context, headers map[string]string) (domain.Caller, error) {
	token := sessionToken(headers)
	if token == "" {
		return domain.Anonymous(), nil
	}
	session, ok, err := h.sessions.LookupSession(ctx, token)
	if err != nil {
		return domain.Anonymous(), err
	}
	if !ok {
		return domain.Anonymous(), nil
	}
	return domain.Authenticated(session), nil
}

func (h *Handler) analyzeJob(ctx context.Context, caller domain.Caller, body []byte) (string, error) {
	var req analyzeJobRequest
	if err := decodeBody(body, &req); err != nil {
		return "", err
	}
	return h.assistant.AnalyzeJob(ctx, caller, usecase.AnalyzeJobInput{
		Website:     req.Website,
		Description: req.Description,
	})
}

func (h *Handler) analyzeFit(ctx context.Context, caller domain.Caller, body []byte) (string, error) {
	var req analyzeFitRequest
	if err := decodeBody(body, &req); err != nil {
		return "", err
	}
	return h.assistant.AnalyzeFit(ctx, caller, usecase.AnalyzeFitInput{
		JobAnalysis: req.JobAnalysis,
		Resume:      req.Resume,
	})
}

func (h *Handler) generateResume(ctx context.Context, caller domain.Caller, body []byte) (string, error) {
	var req generateResumeRequest
	if err := decodeBody(body, &req); err != nil {
		return "", err
	}
	return h.assistant.GenerateResume(ctx, caller, usecase.GenerateInput{
		JobAnalysis:    req.JobAnalysis,
		Resume:         req.OriginalResume,
		AdditionalInfo: req.AdditionalInfo,
		FitAnalysis:    req.FitAnalysis,
	})
}

func (h *Handler) generateCoverLetter(ctx context.Context, caller domain.Caller, body []byte) (string, error) {
	var req coverLetterRequest
	if err := decodeBody(body, &req); err != nil {
		return "", err
	}
	return h.assistant.GenerateCoverLetter(ctx, caller, usecase.GenerateInput{
		JobAnalysis:    req.JobAnalysis,
		Resume:         req.Resume,
		AdditionalInfo: req.AdditionalInfo,
		FitAnalysis:    req.FitAnalysis,
	})
}

func (h *Handler) errorResponse(ctx context.Context, err error) events.APIGatewayProxyResponse {
	var usecaseErr *usecase.Error
	if !errors.As(err, &usecaseErr) {
		h.logger.ErrorContext(ctx, "unexpected error", "err", err)
		return jsonResponse(http.StatusInternalServerError, errorResponse{
			Error:   string(usecase.ErrorInternal),
			Message: "internal error",
		})
	}
	message := usecaseErr.Message
	if message == "" && usecaseErr.Code == usecase.ErrorInternal {
		message = "internal error"
	}
	return jsonResponse(statusFor(usecaseErr.Code), errorResponse{Error: string(usecaseErr.Code), Message: message})
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorUnauthorized:
		return http.StatusUnauthorized
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonResponse(status int, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func requestBody(event events.APIGatewayProxyRequest) ([]byte, error) {
	if !event.IsBase64Encoded {
		return []byte(event.Body), nil
	}
	body, err := base64.StdEncoding.DecodeString(event.Body)
	if err != nil {
		return nil, invalidBody(err)
	}
	return body, nil
}

func decodeBody(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return invalidBody(err)
	}
	return nil
}

func invalidBody(err error) *usecase.Error {
	return &usecase.Error{
		Code:    usecase.ErrorInvalidInput,
		Reason:  "invalid_body",
		Message: "request body must be a JSON object",
		Err:     err,
	}
}

func routeName(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return path
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// sessionToken prefers a bearer token and falls back to the next-auth
// session cookie.
func sessionToken(headers map[string]string) string {
	if auth := strings.TrimSpace(headerValue(headers, "Authorization")); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	raw := headerValue(headers, "Cookie")
	if raw == "" {
		return ""
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return ""
	}
	for _, name := range sessionCookieNames {
		for _, c := range cookies {
			if c.Name == name && c.Value != "" {
				return c.Value
			}
		}
	}
	return ""
}
