package stream

// EventType identifies the kind of a stream event.
type EventType string

const (
	// EventTasks announces the planned task list for a prompt.
	EventTasks EventType = "tasks"
	// EventProcessing announces that an agent is about to run.
	EventProcessing EventType = "processing"
	// EventResult carries one agent's result (or its failure).
	EventResult EventType = "result"
	// EventComplete marks the clean end of a session.
	EventComplete EventType = "complete"
	// EventError reports a top-level failure of the whole session.
	EventError EventType = "error"
)

// Task is one planned unit of work, as announced by the tasks event.
// Agent is the raw agent kind (e.g. "research"), not a display name.
type Task struct {
	Agent    string `json:"agent"`
	Task     string `json:"task"`
	Priority int    `json:"priority,omitempty"`
}

// Event is a single record on the wire. Which fields are populated
// depends on Type; unused fields are omitted from the JSON encoding.
// Index only carries meaning on processing and result records. A
// record with no type and only an error is the bare error shape some
// servers emit before a session starts.
type Event struct {
	Type  EventType   `json:"type,omitempty"`
	Tasks []Task      `json:"tasks,omitempty"`
	Agent string      `json:"agent,omitempty"`
	Index int         `json:"index,omitempty"`
	Data  *ResultData `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// FlowchartResult is a Mermaid diagram produced by the flowchart agent.
type FlowchartResult struct {
	Flowchart string `json:"flowchart"`
	Title     string `json:"title,omitempty"`
}

// EmailResult is a drafted email produced by the email agent.
type EmailResult struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Status  string `json:"status"`
}

// ImageResult references a generated image.
type ImageResult struct {
	Topic    string `json:"topic"`
	Style    string `json:"style"`
	ImageURL string `json:"image_url"`
}

// ResearchResult is a research summary with its sources.
type ResearchResult struct {
	Result  string   `json:"result"`
	Sources []string `json:"sources,omitempty"`
	Query   string   `json:"query,omitempty"`
}

// ChecklistResult reports the outcome of a checklist operation.
type ChecklistResult struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// CalendarResult reports the outcome of a calendar operation.
type CalendarResult struct {
	Message      string         `json:"message"`
	Details      []string       `json:"details,omitempty"`
	EventPreview *CalendarEvent `json:"event_preview,omitempty"`
}

// CalendarEvent is a draft or stored calendar entry.
type CalendarEvent struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time,omitempty"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// PlottingResult references a rendered chart. ChartURL duplicates
// ImageURL for clients that predate the PNG renderer.
type PlottingResult struct {
	ChartType string `json:"chart_type"`
	Title     string `json:"title"`
	ChartURL  string `json:"chart_url,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// PresentationResult references a generated slide deck.
type PresentationResult struct {
	Filename string `json:"filename"`
	Topic    string `json:"topic,omitempty"`
	Slides   int    `json:"slides"`
	Template string `json:"template,omitempty"`
	Tone     string `json:"tone,omitempty"`
	PptxURL  string `json:"pptx_url,omitempty"`
}

// WhatsAppResult is a drafted outbound WhatsApp message.
type WhatsAppResult struct {
	Message string           `json:"message"`
	Preview *WhatsAppPreview `json:"preview_data,omitempty"`
}

// WhatsAppPreview carries the recipient and body shown for confirmation
// before an actual send.
type WhatsAppPreview struct {
	Recipient string `json:"recipient"`
	Number    string `json:"number,omitempty"`
	Body      string `json:"body"`
}

// ResultData is the payload of a result event. Exactly one variant is
// populated, discriminated by Kind, which matches the raw agent kind of
// the task that produced it. Text covers the purely textual agents
// (general, document, brainstorm, summary, case_study).
type ResultData struct {
	Kind         string              `json:"kind"`
	Text         string              `json:"text,omitempty"`
	Flowchart    *FlowchartResult    `json:"flowchart,omitempty"`
	Email        *EmailResult        `json:"email,omitempty"`
	Image        *ImageResult        `json:"image,omitempty"`
	Research     *ResearchResult     `json:"research,omitempty"`
	Plotting     *PlottingResult     `json:"plotting,omitempty"`
	Checklist    *ChecklistResult    `json:"checklist,omitempty"`
	Calendar     *CalendarResult     `json:"calendar,omitempty"`
	WhatsApp     *WhatsAppResult     `json:"whatsapp,omitempty"`
	Presentation *PresentationResult `json:"presentation,omitempty"`
}

// TextResult builds a plain-text payload for the given agent kind.
func TextResult(kind, text string) *ResultData {
	return &ResultData{Kind: kind, Text: text}
}
