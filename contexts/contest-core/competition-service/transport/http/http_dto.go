package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateCompetitionRequest struct {
	ChatID              *int64    `json:"chat_id,omitempty"`
	DeclaredMemberCount *int      `json:"declared_member_count,omitempty"`
	AcceptFilesDeadline time.Time `json:"accept_files_deadline"`
	PollingDeadline     time.Time `json:"polling_deadline"`
	MinTextSize         int       `json:"min_text_size"`
	MaxTextSize         int       `json:"max_text_size"`
	MaxFilesPerMember   int       `json:"max_files_per_member"`
	Subject             string    `json:"subject"`
	SubjectExt          string    `json:"subject_ext,omitempty"`
	PollingSchemeID     int64     `json:"polling_scheme_id"`
}

type UpdateCompetitionRequest struct {
	Subject             *string    `json:"subject,omitempty"`
	SubjectExt          *string    `json:"subject_ext,omitempty"`
	MinTextSize         *int       `json:"min_text_size,omitempty"`
	MaxTextSize         *int       `json:"max_text_size,omitempty"`
	MaxFilesPerMember   *int       `json:"max_files_per_member,omitempty"`
	AcceptFilesDeadline *time.Time `json:"accept_files_deadline,omitempty"`
	PollingDeadline     *time.Time `json:"polling_deadline,omitempty"`
}

type JoinCompetitionRequest struct {
	UserTitle  string `json:"user_title"`
	EntryToken string `json:"entry_token,omitempty"`
}

type SubmitFileRequest struct {
	FileID   int64  `json:"file_id"`
	Title    string `json:"title"`
	TextSize int    `json:"text_size"`
}

type AttachChatRequest struct {
	ChatID int64 `json:"chat_id"`
}

type CancelCompetitionRequest struct {
	Reason string `json:"reason,omitempty"`
}

type CompetitionResponse struct {
	CompetitionID       int64      `json:"competition_id"`
	ChatID              *int64     `json:"chat_id,omitempty"`
	CreatedBy           int64      `json:"created_by"`
	Stage               string     `json:"stage"`
	Canceled            bool       `json:"canceled"`
	OpenType            bool       `json:"open_type"`
	DeclaredMemberCount *int       `json:"declared_member_count,omitempty"`
	EntryToken          string     `json:"entry_token,omitempty"`
	AcceptFilesDeadline time.Time  `json:"accept_files_deadline"`
	PollingDeadline     time.Time  `json:"polling_deadline"`
	MinTextSize         int        `json:"min_text_size"`
	MaxTextSize         int        `json:"max_text_size"`
	MaxFilesPerMember   int        `json:"max_files_per_member"`
	Subject             string     `json:"subject"`
	SubjectExt          string     `json:"subject_ext,omitempty"`
	PollingSchemeID     int64      `json:"polling_scheme_id"`
	Created             time.Time  `json:"created"`
	Confirmed           *time.Time `json:"confirmed,omitempty"`
	Started             *time.Time `json:"started,omitempty"`
	PollingStarted      *time.Time `json:"polling_started,omitempty"`
	Finished            *time.Time `json:"finished,omitempty"`
}

type CompetitionListResponse struct {
	Items []CompetitionResponse `json:"items"`
}

type MemberItem struct {
	UserID    int64  `json:"user_id"`
	UserTitle string `json:"user_title"`
}

type SubmittedFileItem struct {
	FileID   int64     `json:"file_id"`
	OwnerID  int64     `json:"owner_id"`
	Title    string    `json:"title"`
	TextSize int       `json:"text_size"`
	Loaded   time.Time `json:"loaded"`
}

type CompetitionStatResponse struct {
	CompetitionID     int64               `json:"competition_id"`
	RegisteredMembers []MemberItem        `json:"registered_members"`
	SubmittedFiles    []SubmittedFileItem `json:"submitted_files"`
	SubmittedMembers  int                 `json:"submitted_members"`
	TotalTextSize     int                 `json:"total_text_size"`
}

type UserStatsResponse struct {
	UserID   int64 `json:"user_id"`
	Wins     int   `json:"wins"`
	HalfWins int   `json:"half_wins"`
	Losses   int   `json:"losses"`
}
