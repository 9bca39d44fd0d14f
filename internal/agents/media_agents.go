package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/stream"
)

// ImageAgent turns a request into a detailed generation brief: the
// refined topic and visual style the image model will be driven with.
// Rendering itself happens in the image pipeline, which fills in the
// URL once the file exists.
type ImageAgent struct {
	client *llm.Client
}

func NewImageAgent(client *llm.Client) *ImageAgent {
	return &ImageAgent{client: client}
}

func (a *ImageAgent) Kind() string { return "image" }

func (a *ImageAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`Refine the following image request into a generation brief.

REQUEST: %s

OUTPUT FORMAT (JSON):
{"topic": "one-line description of what to depict", "style": "visual style, e.g. professional and modern"}

Return ONLY valid JSON.`, req.Task)

	var out struct {
		Topic string `json:"topic"`
		Style string `json:"style"`
	}
	if err := a.client.GenerateJSON(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("image agent failed: %w", err)
	}
	if out.Topic == "" {
		return nil, fmt.Errorf("image agent could not determine what to depict")
	}
	if out.Style == "" {
		out.Style = "professional and modern"
	}

	return &stream.ResultData{
		Kind: a.Kind(),
		Image: &stream.ImageResult{
			Topic: out.Topic,
			Style: out.Style,
		},
	}, nil
}

// supportedChartTypes are the chart kinds the rendering backend knows.
var supportedChartTypes = map[string]bool{
	"bar":            true,
	"pie":            true,
	"line":           true,
	"scatter":        true,
	"area":           true,
	"horizontal_bar": true,
	"stacked_bar":    true,
	"grouped_bar":    true,
}

// PlottingAgent picks the chart type and title for a data
// visualization request. The chart renderer fills in the image URL.
type PlottingAgent struct {
	client *llm.Client
}

func NewPlottingAgent(client *llm.Client) *PlottingAgent {
	return &PlottingAgent{client: client}
}

func (a *PlottingAgent) Kind() string { return "plotting" }

func (a *PlottingAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`Plan a chart for the following request.

REQUEST: %s

Pick chart_type from: bar, pie, line, scatter, area, horizontal_bar, stacked_bar, grouped_bar.

OUTPUT FORMAT (JSON):
{"chart_type": "bar", "title": "short chart title"}

Return ONLY valid JSON.`, req.Task)

	var out struct {
		ChartType string `json:"chart_type"`
		Title     string `json:"title"`
	}
	if err := a.client.GenerateJSON(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("plotting agent failed: %w", err)
	}

	chartType := strings.ToLower(strings.TrimSpace(out.ChartType))
	if !supportedChartTypes[chartType] {
		chartType = "bar"
	}
	title := strings.TrimSpace(out.Title)
	if title == "" {
		title = "Chart"
	}

	return &stream.ResultData{
		Kind: a.Kind(),
		Plotting: &stream.PlottingResult{
			ChartType: chartType,
			Title:     title,
		},
	}, nil
}

// PresentationAgent plans a slide deck: tone, template, and slide
// count for a topic. Deck assembly is handled by the PowerPoint
// pipeline, which produces the file and its URL.
type PresentationAgent struct {
	client *llm.Client
}

func NewPresentationAgent(client *llm.Client) *PresentationAgent {
	return &PresentationAgent{client: client}
}

func (a *PresentationAgent) Kind() string { return "presentation" }

func (a *PresentationAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	prompt := fmt.Sprintf(`Plan a slide deck for the following request.

REQUEST: %s

OUTPUT FORMAT (JSON):
{"topic": "deck topic", "slides": 8, "template": "general", "tone": "professional"}

"slides" must be between 6 and 12. "template" is one of: general, swift.
Return ONLY valid JSON.`, req.Task)

	var out struct {
		Topic    string `json:"topic"`
		Slides   int    `json:"slides"`
		Template string `json:"template"`
		Tone     string `json:"tone"`
	}
	if err := a.client.GenerateJSON(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("presentation agent failed: %w", err)
	}
	if out.Topic == "" {
		out.Topic = strings.TrimSpace(req.Task)
	}
	if out.Slides < 6 || out.Slides > 12 {
		out.Slides = 8
	}
	if out.Template != "general" && out.Template != "swift" {
		out.Template = "general"
	}
	if out.Tone == "" {
		out.Tone = "professional"
	}

	return &stream.ResultData{
		Kind: a.Kind(),
		Presentation: &stream.PresentationResult{
			Topic:    out.Topic,
			Slides:   out.Slides,
			Template: out.Template,
			Tone:     out.Tone,
		},
	}, nil
}
