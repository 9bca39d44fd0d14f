package agents

import (
	"context"
	"fmt"

	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/stream"
)

// GeneralAgent answers greetings, capability questions, and anything
// the router could not map to a specialist.
type GeneralAgent struct {
	client *llm.Client
}

func NewGeneralAgent(client *llm.Client) *GeneralAgent {
	return &GeneralAgent{client: client}
}

func (a *GeneralAgent) Kind() string { return "general" }

func (a *GeneralAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`You are Bianca, a helpful AI assistant. You can create flowcharts, draft emails and documents, research topics, brainstorm ideas, manage checklists and calendars, and send WhatsApp messages.

Respond conversationally to the user. Keep it brief and friendly.

USER: %s`, req.Prompt)

	text, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("general agent failed: %w", err)
	}
	return stream.TextResult(a.Kind(), text), nil
}

// ResearchAgent researches a topic and returns a summary with sources.
type ResearchAgent struct {
	client *llm.Client
}

func NewResearchAgent(client *llm.Client) *ResearchAgent {
	return &ResearchAgent{client: client}
}

func (a *ResearchAgent) Kind() string { return "research" }

func (a *ResearchAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`Research the following topic and produce a thorough but readable summary in markdown.

TOPIC: %s

OUTPUT FORMAT (JSON):
{"summary": "markdown summary", "sources": ["source or reference 1", "..."], "query": "the research question you answered"}

Return ONLY valid JSON.`, req.Task)

	var out struct {
		Summary string   `json:"summary"`
		Sources []string `json:"sources"`
		Query   string   `json:"query"`
	}
	if err := a.client.GenerateJSON(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("research agent failed: %w", err)
	}
	if out.Summary == "" {
		return nil, fmt.Errorf("research agent returned an empty summary")
	}

	return &stream.ResultData{
		Kind: a.Kind(),
		Research: &stream.ResearchResult{
			Result:  out.Summary,
			Sources: out.Sources,
			Query:   out.Query,
		},
	}, nil
}

// EmailAgent drafts an email from a task description.
type EmailAgent struct {
	client *llm.Client
}

func NewEmailAgent(client *llm.Client) *EmailAgent {
	return &EmailAgent{client: client}
}

func (a *EmailAgent) Kind() string { return "email" }

func (a *EmailAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`Draft a professional email for the following request. If the recipient is named, use their name; otherwise leave "to" empty.

REQUEST: %s

OUTPUT FORMAT (JSON):
{"to": "recipient", "subject": "subject line", "body": "email body"}

Return ONLY valid JSON.`, req.Task)

	var out struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := a.client.GenerateJSON(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("email agent failed: %w", err)
	}
	if out.Body == "" {
		return nil, fmt.Errorf("email agent returned an empty draft")
	}

	return &stream.ResultData{
		Kind: a.Kind(),
		Email: &stream.EmailResult{
			To:      out.To,
			Subject: out.Subject,
			Body:    out.Body,
			Status:  "drafted",
		},
	}, nil
}

// DocumentAgent drafts reports, proposals, blog posts, and essays.
type DocumentAgent struct {
	client *llm.Client
}

func NewDocumentAgent(client *llm.Client) *DocumentAgent {
	return &DocumentAgent{client: client}
}

func (a *DocumentAgent) Kind() string { return "document" }

func (a *DocumentAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`Write the requested document in well-structured markdown with headings.

REQUEST: %s`, req.Task)

	text, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("document agent failed: %w", err)
	}
	return stream.TextResult(a.Kind(), text), nil
}

// BrainstormAgent generates ideas and creative prompts.
type BrainstormAgent struct {
	client *llm.Client
}

func NewBrainstormAgent(client *llm.Client) *BrainstormAgent {
	return &BrainstormAgent{client: client}
}

func (a *BrainstormAgent) Kind() string { return "brainstorm" }

func (a *BrainstormAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`Brainstorm for the following request. Produce a markdown list of distinct, concrete ideas with a one-line rationale each.

REQUEST: %s`, req.Task)

	text, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("brainstorm agent failed: %w", err)
	}
	return stream.TextResult(a.Kind(), text), nil
}

// CaseStudyAgent writes a comprehensive case study.
type CaseStudyAgent struct {
	client *llm.Client
}

func NewCaseStudyAgent(client *llm.Client) *CaseStudyAgent {
	return &CaseStudyAgent{client: client}
}

func (a *CaseStudyAgent) Kind() string { return "case_study" }

func (a *CaseStudyAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`Write a comprehensive case study in markdown with these sections: Overview, Problem, Approach, Results, Lessons Learned.

REQUEST: %s`, req.Task)

	text, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("case study agent failed: %w", err)
	}
	return stream.TextResult(a.Kind(), text), nil
}

// SummaryAgent only works with file uploads, which the chat flow does
// not carry; it reports that limitation instead of failing the task.
type SummaryAgent struct{}

func NewSummaryAgent() *SummaryAgent { return &SummaryAgent{} }

func (a *SummaryAgent) Kind() string { return "summary" }

func (a *SummaryAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	return stream.TextResult(a.Kind(),
		"The summary agent requires a file upload. Please upload a PDF, DOCX, TXT, or MD file to summarize."), nil
}
