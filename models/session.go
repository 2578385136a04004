package models

const (
	// DefaultTranscriptText is stored when a session is created without audio,
	// so the troubleshooting pipeline always has a transcript to work from.
	DefaultTranscriptText = "General troubleshooting request"
)

type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Remediation tool / action identifiers. This is a closed set: the tool
// selector, the action extractor and the execute-action endpoint all draw
// from the same names.
const (
	ToolRestartSTB     = "restart_stb"
	ToolRefreshAccount = "refresh_account"
	ToolCheckAccount   = "check_account"
	ToolQuickTVCheck   = "quick_tv_check"
	ToolDetectTVErrors = "detect_tv_errors"
	ToolAnalyzeImage   = "analyze_image"
)

// Session artifact names, stored under sessions/{session_id}/{artifact}.
const (
	ArtifactImage           = "image.jpg"
	ArtifactAudio           = "audio.wav"
	ArtifactTranscript      = "transcript.json"
	ArtifactTranscriptJob   = "transcript_job.json"
	ArtifactImageAnalysis   = "image_analysis.json"
	ArtifactTroubleshooting = "troubleshooting.json"
	ArtifactResponseAudio   = "response.mp3"
	ArtifactMetadata        = "metadata.json"
)

type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	Timestamp  string  `json:"timestamp,omitempty"`
}

type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ImageAnalysis holds the label and text detections for a session's image.
// ExtractedText only contains line-level detections above the 80% confidence
// threshold; a session without an analyzed image gets the zero value.
type ImageAnalysis struct {
	Labels        []Label  `json:"labels"`
	CustomLabels  []Label  `json:"custom_labels"`
	ExtractedText []string `json:"extracted_text"`
	Timestamp     string   `json:"timestamp,omitempty"`
}

// ToolResult is the outcome of one remediation tool invocation. Failures are
// captured here, never raised: Timeout marks a deadline hit, StatusCode a
// non-200 answer from the device-management API.
type ToolResult struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Timeout    bool           `json:"timeout,omitempty"`
	StatusCode int            `json:"status_code,omitempty"`
}

type ToolResults map[string]ToolResult

// TroubleshootingRecord is the durable output of one troubleshooting
// invocation, overwritten on each run for the same session.
type TroubleshootingRecord struct {
	ResponseText       string   `json:"response_text"`
	AudioKey           string   `json:"audio_key"`
	RecommendedActions []string `json:"recommended_actions"`
	ToolsExecuted      []string `json:"tools_executed"`
	ToolResultsSummary string   `json:"tool_results_summary,omitempty"`
}

type SessionMetadata struct {
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
	ImageKey  string `json:"image_key,omitempty"`
	AudioKey  string `json:"audio_key,omitempty"`
	Status    string `json:"status"`
}

// TranscriptionJob tracks the state of an asynchronous transcription run so
// the transcribe handler can poll it through the session store.
type TranscriptionJob struct {
	Status     string  `json:"status"` // running | completed | failed
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// ActionLog records one direct remediation action execution.
type ActionLog struct {
	SessionID string     `json:"session_id"`
	Action    string     `json:"action"`
	Result    ToolResult `json:"result"`
	Timestamp int64      `json:"timestamp"`
	Status    string     `json:"status"`
}
