package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastBallotRequest struct {
	FileID int64 `json:"file_id"`
}

type DraftSlotRequest struct {
	Slot   int   `json:"slot"`
	FileID int64 `json:"file_id"`
}

type DraftResponse struct {
	CompetitionID int64     `json:"competition_id"`
	VoterID       int64     `json:"voter_id"`
	FirstFileID   int64     `json:"first_file_id,omitempty"`
	SecondFileID  *int64    `json:"second_file_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type FileResultItem struct {
	FileID   int64 `json:"file_id"`
	Position int   `json:"position"`
	Score    int   `json:"score"`
}

type FileResultsResponse struct {
	CompetitionID int64            `json:"competition_id"`
	Items         []FileResultItem `json:"items"`
}

type SchemaItem struct {
	SchemaID           int64  `json:"schema_id"`
	HandlerName        string `json:"handler_name"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	ForOpenType        bool   `json:"for_open_type"`
	MinimumMemberCount int    `json:"minimum_member_count"`
	MaximumMemberCount int    `json:"maximum_member_count,omitempty"`
}

type SchemaListResponse struct {
	Items []SchemaItem `json:"items"`
}

type VoterCountResponse struct {
	CompetitionID int64 `json:"competition_id"`
	Voters        int   `json:"voters"`
}
