// internal/types/models.go
package types

import (
	"time"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Personality selects the assistant's tone for a session.
type Personality string

const (
	PersonalityDefault       Personality = "Default"
	PersonalityFormalAdvisor Personality = "Formal Advisor"
	PersonalityFriendlyMentor Personality = "Friendly Mentor"
	PersonalityCodingWizard  Personality = "Coding Wizard"
	PersonalityComedian      Personality = "Comedian"
)

// Attachment references a staged binary file by payload handle. The bytes
// themselves live in the attachment store.
type Attachment struct {
	ID       AttachmentID `json:"id"`
	Name     string       `json:"name"`
	MimeType string       `json:"mime_type"`
	Size     int64        `json:"size"`
}

// Upload is an attachment whose bytes have not been persisted yet. Callers
// hand these to the engine alongside the user's text.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// WorkflowStep is one stage of the agentic perceive/reason/act/learn workflow.
type WorkflowStep struct {
	Active  bool   `json:"active"`
	Done    bool   `json:"done"`
	Content string `json:"content"`
}

// WorkflowState holds the four agentic workflow stages.
type WorkflowState struct {
	Perceive WorkflowStep `json:"perceive"`
	Reason   WorkflowStep `json:"reason"`
	Act      WorkflowStep `json:"act"`
	Learn    WorkflowStep `json:"learn"`
}

// Translation is the result of the translation pipeline.
type Translation struct {
	SourceText   string `json:"source_text"`
	Language     string `json:"language"`
	Translation  string `json:"translation"`
	Phonetic     string `json:"phonetic"`
	LanguageCode string `json:"language_code"`
}

// VideoLink is a titled external video URL.
type VideoLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// MusicConcept is a generated song concept plus reference tracks.
type MusicConcept struct {
	Title       string      `json:"title"`
	Artist      string      `json:"artist"`
	Description string      `json:"description"`
	Tempo       int         `json:"tempo"`
	Mood        string      `json:"mood"`
	Links       []VideoLink `json:"links"`
}

// VideoResult is one embeddable video returned by the video-search pipeline.
type VideoResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	VideoID     string `json:"video_id"`
}

// VideoSearchResults carries the query and its matches.
type VideoSearchResults struct {
	Query   string        `json:"query"`
	Results []VideoResult `json:"results"`
}

// VideoPlayback identifies a single video resolved for in-app playback.
type VideoPlayback struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
}

// Location is a resolved real-world place.
type Location struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CodeBlock is a generated code snippet with its explanation and a simulated
// run transcript.
type CodeBlock struct {
	Language        string `json:"language"`
	Code            string `json:"code"`
	Explanation     string `json:"explanation"`
	SimulatedOutput string `json:"simulated_output"`
}

// KeyConcept is one entry of a study guide.
type KeyConcept struct {
	Concept     string `json:"concept"`
	Explanation string `json:"explanation"`
}

// StudyGuide is a structured learning aid for a topic.
type StudyGuide struct {
	Topic             string       `json:"topic"`
	Summary           string       `json:"summary"`
	KeyConcepts       []KeyConcept `json:"key_concepts"`
	PracticeQuestions []string     `json:"practice_questions"`
	FurtherReading    []string     `json:"further_reading"`
}

// ActionType enumerates the automated tasks the assistant can propose.
type ActionType string

const (
	ActionSendEmail       ActionType = "send_email"
	ActionScheduleMeeting ActionType = "schedule_meeting"
	ActionFetchReport     ActionType = "fetch_report"
)

// ActionParams holds the parameters for a proposed action. Only the fields
// relevant to the action type are populated.
type ActionParams struct {
	To        string   `json:"to,omitempty"`
	Subject   string   `json:"subject,omitempty"`
	Body      string   `json:"body,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Details   string   `json:"details,omitempty"`
	StartTime string   `json:"start_time,omitempty"`
	EndTime   string   `json:"end_time,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
	URL       string   `json:"url,omitempty"`
}

// Action is an automated task drafted by the model, validated before it is
// exposed to the user for execution.
type Action struct {
	Type        ActionType   `json:"type"`
	Description string       `json:"description"`
	Parameters  ActionParams `json:"parameters"`
}

// AgentRole is the closed set of specialist roles available to the
// multi-agent pipeline.
type AgentRole string

const (
	RolePlanner     AgentRole = "Planner"
	RoleResearcher  AgentRole = "Researcher"
	RoleCoder       AgentRole = "Coder"
	RoleDesigner    AgentRole = "Designer"
	RoleSynthesizer AgentRole = "Synthesizer"
)

// AgentRoles returns every role in declaration order.
func AgentRoles() []AgentRole {
	return []AgentRole{RolePlanner, RoleResearcher, RoleCoder, RoleDesigner, RoleSynthesizer}
}

// AgentTask is one unit of work inside a multi-agent run. Tasks are created
// by planning, mutated by execution, never reordered.
type AgentTask struct {
	Role        AgentRole `json:"role"`
	Instruction string    `json:"instruction"`
	Output      string    `json:"output"`
	Complete    bool      `json:"complete"`
}

// MultiAgentState is the observable state of one multi-agent run. It lives
// inside exactly one Message for the lifetime of the run.
type MultiAgentState struct {
	OriginalQuery string      `json:"original_query"`
	Plan          string      `json:"plan"`
	Tasks         []AgentTask `json:"tasks"`
	FinalResponse string      `json:"final_response"`
}

// Clone returns a deep copy; snapshots handed to observers must not alias
// the orchestrator's working state.
func (s *MultiAgentState) Clone() *MultiAgentState {
	out := &MultiAgentState{
		OriginalQuery: s.OriginalQuery,
		Plan:          s.Plan,
		FinalResponse: s.FinalResponse,
	}
	if len(s.Tasks) > 0 {
		out.Tasks = make([]AgentTask, len(s.Tasks))
		copy(out.Tasks, s.Tasks)
	}
	return out
}

// Payload is the tagged union of domain-specific result shapes a Message can
// carry. At most one variant is populated.
type Payload struct {
	Translation *Translation        `json:"translation,omitempty"`
	Music       *MusicConcept       `json:"music,omitempty"`
	VideoSearch *VideoSearchResults `json:"video_search,omitempty"`
	Video       *VideoPlayback      `json:"video,omitempty"`
	Location    *Location           `json:"location,omitempty"`
	CodeBlock   *CodeBlock          `json:"code_block,omitempty"`
	Workflow    *WorkflowState      `json:"workflow,omitempty"`
	StudyGuide  *StudyGuide         `json:"study_guide,omitempty"`
	MultiAgent  *MultiAgentState    `json:"multi_agent,omitempty"`
	Actions     []Action            `json:"actions,omitempty"`
}

// Message is one turn in a conversation. A message always has text, an
// attachment, or a payload; it is never fully empty.
type Message struct {
	ID          MessageID    `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content,omitempty"`
	Language    string       `json:"language,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Sources     []Source     `json:"sources,omitempty"`
	Payload     *Payload     `json:"payload,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Source is a web reference that grounded an assistant message.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Empty reports whether the message carries neither text, attachments, nor
// a payload.
func (m *Message) Empty() bool {
	return m.Content == "" && len(m.Attachments) == 0 && m.Payload == nil
}

// Session is an ordered, append-mostly conversation owned by one user
// surface. It owns its message list exclusively.
type Session struct {
	ID          SessionID   `json:"id"`
	Key         SessionKey  `json:"key"`
	Title       string      `json:"title"`
	Personality Personality `json:"personality"`
	History     []*Message  `json:"history"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Goal is a user objective tracked across conversations.
type Goal struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Profile holds user-provided customization folded into system instructions.
type Profile struct {
	Name           string `json:"name,omitempty"`
	Nickname       string `json:"nickname,omitempty"`
	Profession     string `json:"profession,omitempty"`
	Traits         string `json:"traits,omitempty"`
	Interests      string `json:"interests,omitempty"`
	LongTermMemory string `json:"long_term_memory,omitempty"`
	Goals          []Goal `json:"goals,omitempty"`
}

// InboundEvent is a user turn arriving from a delivery surface.
type InboundEvent struct {
	Source     string     `json:"source"`
	SessionKey SessionKey `json:"session_key"`
	UserID     string     `json:"user_id"`
	Text       string     `json:"text"`
	PinnedTool Tool       `json:"pinned_tool,omitempty"`
	Uploads    []Upload   `json:"-"`
}
