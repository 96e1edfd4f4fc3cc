package usecase

import "jobfit-agent/internal/domain"

type providerKind int

const (
	providerDirect providerKind = iota
	providerSDK
)

const (
	defaultTemperature   = 0.7
	jobAnalysisMaxTokens = 1024
)

const (
	fallbackFitAnalysis = "No analysis generated"
	fallbackResume      = "Failed to generate resume"
	fallbackCoverLetter = "Failed to generate cover letter"
)

// Models selects the model identifier used by each operation.
type Models struct {
	AnalyzeJob          string
	AnalyzeFit          string
	GenerateResume      string
	GenerateCoverLetter string
}

func DefaultModels() Models {
	return Models{
		AnalyzeJob:          "sonar",
		AnalyzeFit:          "gpt-4o-mini",
		GenerateResume:      "gpt-3.5-turbo",
		GenerateCoverLetter: "o3-mini",
	}
}

func (m Models) withDefaults() Models {
	def := DefaultModels()
	if m.AnalyzeJob == "" {
		m.AnalyzeJob = def.AnalyzeJob
	}
	if m.AnalyzeFit == "" {
		m.AnalyzeFit = def.AnalyzeFit
	}
	if m.GenerateResume == "" {
		m.GenerateResume = def.GenerateResume
	}
	if m.GenerateCoverLetter == "" {
		m.GenerateCoverLetter = def.GenerateCoverLetter
	}
	return m
}

// operation is the fixed call configuration of one use-site. Asymmetries
// between operations (no temperature for the cover letter, no fallback for
// job analysis) are kept here on purpose so they stay visible.
type operation struct {
	name        string
	provider    providerKind
	model       string
	system      string
	temperature *float64
	maxTokens   int
	// fallback is returned when the provider answers without content.
	// Empty means the operation fails instead.
	fallback string
	// failure is the caller-facing message on provider errors. Empty means
	// the upstream error text is surfaced.
	failure string
}

func buildOperations(m Models) (analyzeJob, analyzeFit, generateResume, generateCoverLetter operation) {
	m = m.withDefaults()
	analyzeJob = operation{
		name:        "analyze-job",
		provider:    providerDirect,
		model:       m.AnalyzeJob,
		system:      jobAnalysisSystemPrompt,
		temperature: floatPtr(defaultTemperature),
		maxTokens:   jobAnalysisMaxTokens,
	}
	analyzeFit = operation{
		name:        "analyze-fit",
		provider:    providerSDK,
		model:       m.AnalyzeFit,
		temperature: floatPtr(defaultTemperature),
		fallback:    fallbackFitAnalysis,
		failure:     "Failed to analyze fit",
	}
	generateResume = operation{
		name:        "generate-resume",
		provider:    providerSDK,
		model:       m.GenerateResume,
		temperature: floatPtr(defaultTemperature),
		fallback:    fallbackResume,
		failure:     "Failed to generate resume",
	}
	generateCoverLetter = operation{
		name:     "generate-cover-letter",
		provider: providerSDK,
		model:    m.GenerateCoverLetter,
		fallback: fallbackCoverLetter,
		failure:  "Failed to generate cover letter",
	}
	return analyzeJob, analyzeFit, generateResume, generateCoverLetter
}

func (op operation) request(prompt string) domain.CompletionRequest {
	messages := make([]domain.ChatMessage, 0, 2)
	if op.system != "" {
		messages = append(messages, domain.ChatMessage{Role: "system", Content: op.system})
	}
	messages = append(messages, domain.ChatMessage{Role: "user", Content: prompt})
	return domain.CompletionRequest{
		Model:       op.model,
		Messages:    messages,
		Temperature: op.temperature,
		MaxTokens:   op.maxTokens,
	}
}

func (op operation) failureMessage(err error) string {
	if op.failure != "" {
		return op.failure
	}
	return err.Error()
}

func floatPtr(v float64) *float64 {
	return &v
}
