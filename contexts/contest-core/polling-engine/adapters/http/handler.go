package httpadapter

import (
	"context"
	"log/slog"

	"litgb/contexts/contest-core/polling-engine/application/commands"
	"litgb/contexts/contest-core/polling-engine/application/queries"
	httptransport "litgb/contexts/contest-core/polling-engine/transport/http"
)

type Handler struct {
	Cast       commands.CastBallotUseCase
	SetSlot    commands.SetDraftSlotUseCase
	Apply      commands.ApplyDraftUseCase
	Retract    commands.RetractBallotsUseCase
	Results    queries.GetFileResultsUseCase
	Schemas    queries.ListSchemasUseCase
	Draft      queries.GetDraftUseCase
	VoterCount queries.CountVotersUseCase
	Logger     *slog.Logger
}

func (h Handler) CastBallotHandler(
	ctx context.Context,
	compID int64,
	voterID int64,
	req httptransport.CastBallotRequest,
) error {
	return h.Cast.Execute(ctx, commands.CastBallotCommand{
		CompetitionID: compID,
		VoterID:       voterID,
		FileID:        req.FileID,
	})
}

func (h Handler) SetDraftSlotHandler(
	ctx context.Context,
	compID int64,
	voterID int64,
	req httptransport.DraftSlotRequest,
) (httptransport.DraftResponse, error) {
	draft, err := h.SetSlot.Execute(ctx, commands.SetDraftSlotCommand{
		CompetitionID: compID,
		VoterID:       voterID,
		Slot:          req.Slot,
		FileID:        req.FileID,
	})
	if err != nil {
		return httptransport.DraftResponse{}, err
	}
	return httptransport.DraftResponse{
		CompetitionID: draft.CompetitionID,
		VoterID:       draft.VoterID,
		FirstFileID:   draft.FirstFileID,
		SecondFileID:  draft.SecondFileID,
		UpdatedAt:     draft.UpdatedAt,
	}, nil
}

func (h Handler) ApplyDraftHandler(ctx context.Context, compID int64, voterID int64) error {
	return h.Apply.Execute(ctx, commands.ApplyDraftCommand{
		CompetitionID: compID,
		VoterID:       voterID,
	})
}

func (h Handler) RetractBallotsHandler(ctx context.Context, compID int64, voterID int64) error {
	return h.Retract.Execute(ctx, commands.RetractBallotsCommand{
		CompetitionID: compID,
		VoterID:       voterID,
	})
}

func (h Handler) GetDraftHandler(ctx context.Context, compID int64, voterID int64) (httptransport.DraftResponse, error) {
	draft, err := h.Draft.Execute(ctx, compID, voterID)
	if err != nil {
		return httptransport.DraftResponse{}, err
	}
	return httptransport.DraftResponse{
		CompetitionID: draft.CompetitionID,
		VoterID:       draft.VoterID,
		FirstFileID:   draft.FirstFileID,
		SecondFileID:  draft.SecondFileID,
		UpdatedAt:     draft.UpdatedAt,
	}, nil
}

func (h Handler) GetFileResultsHandler(ctx context.Context, compID int64) (httptransport.FileResultsResponse, error) {
	results, err := h.Results.Execute(ctx, compID)
	if err != nil {
		return httptransport.FileResultsResponse{}, err
	}
	resp := httptransport.FileResultsResponse{CompetitionID: compID}
	for _, result := range results {
		resp.Items = append(resp.Items, httptransport.FileResultItem{
			FileID:   result.FileID,
			Position: result.Position,
			Score:    result.Score,
		})
	}
	return resp, nil
}

func (h Handler) ListSchemasHandler(ctx context.Context) (httptransport.SchemaListResponse, error) {
	infos, err := h.Schemas.Execute(ctx)
	if err != nil {
		return httptransport.SchemaListResponse{}, err
	}
	resp := httptransport.SchemaListResponse{
		Items: make([]httptransport.SchemaItem, 0, len(infos)),
	}
	for _, info := range infos {
		resp.Items = append(resp.Items, httptransport.SchemaItem{
			SchemaID:           info.ID,
			HandlerName:        info.HandlerName,
			Title:              info.Title,
			Description:        info.Description,
			ForOpenType:        info.ForOpenType,
			MinimumMemberCount: info.MinimumMemberCount,
			MaximumMemberCount: info.MaximumMemberCount,
		})
	}
	return resp, nil
}

func (h Handler) CountVotersHandler(ctx context.Context, compID int64) (httptransport.VoterCountResponse, error) {
	voters, err := h.VoterCount.Execute(ctx, compID)
	if err != nil {
		return httptransport.VoterCountResponse{}, err
	}
	return httptransport.VoterCountResponse{
		CompetitionID: compID,
		Voters:        voters,
	}, nil
}
