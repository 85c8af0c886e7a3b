package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"litgb/contexts/contest-core/competition-service/domain/entities"
	"litgb/contexts/contest-core/competition-service/ports"
	contractsv1 "litgb/contracts/gen/events/v1"
)

// OutboxNotifier materializes notification intents as outbox events. The
// chat-platform delivery layer consumes them from the bus; nothing here
// blocks or fails a committed stage transition beyond the outbox append.
type OutboxNotifier struct {
	Outbox ports.OutboxWriter
	IDGen  ports.IDGenerator
	Clock  ports.Clock
	Logger *slog.Logger
}

func (n OutboxNotifier) ReportCompetitionState(ctx context.Context, comp entities.Competition, message string) error {
	return n.append(ctx, "competition.state_changed", comp.ID, map[string]any{
		"competition_id": comp.ID,
		"chat_id":        comp.ChatID,
		"stage":          string(comp.Stage()),
		"canceled":       comp.Canceled,
		"message":        message,
	})
}

func (n OutboxNotifier) SendSubmittedFiles(ctx context.Context, chatID int64, stat entities.CompetitionStat) error {
	fileIDs := make([]int64, 0, stat.SubmittedFileCount())
	for _, file := range stat.AllFiles() {
		fileIDs = append(fileIDs, file.ID)
	}
	return n.append(ctx, "competition.files_broadcast", stat.CompetitionID, map[string]any{
		"competition_id": stat.CompetitionID,
		"chat_id":        chatID,
		"file_ids":       fileIDs,
	})
}

func (n OutboxNotifier) SendMergedSubmittedFiles(ctx context.Context, chatID int64, compID int64, stat entities.CompetitionStat) error {
	return n.append(ctx, "competition.files_merged_broadcast", compID, map[string]any{
		"competition_id": compID,
		"chat_id":        chatID,
		"file_count":     stat.SubmittedFileCount(),
	})
}

func (n OutboxNotifier) AnnounceFileAuthors(ctx context.Context, comp entities.Competition, stat entities.CompetitionStat) error {
	authors := make([]map[string]any, 0, stat.SubmittedFileCount())
	for _, member := range stat.RegisteredMembers {
		for _, file := range stat.SubmittedFiles[member.ID] {
			authors = append(authors, map[string]any{
				"user_id":    member.ID,
				"user_title": member.Title,
				"file_id":    file.ID,
				"file_title": file.Title,
			})
		}
	}
	return n.append(ctx, "competition.authors_revealed", comp.ID, map[string]any{
		"competition_id": comp.ID,
		"chat_id":        comp.ChatID,
		"authors":        authors,
	})
}

func (n OutboxNotifier) AnnounceMemberOutcome(ctx context.Context, comp entities.Competition, member entities.UserInfo, outcome entities.MemberOutcome) error {
	return n.append(ctx, "competition.member_outcome", comp.ID, map[string]any{
		"competition_id": comp.ID,
		"chat_id":        comp.ChatID,
		"user_id":        member.ID,
		"user_title":     member.Title,
		"outcome":        string(outcome),
	})
}

func (n OutboxNotifier) append(ctx context.Context, eventType string, compID int64, payload map[string]any) error {
	eventID, err := n.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if n.Clock != nil {
		now = n.Clock.Now().UTC()
	}
	envelope := contractsv1.NewEnvelope(eventID, eventType, strconv.FormatInt(compID, 10), now, data)
	return n.Outbox.AppendOutbox(ctx, envelope)
}

var _ ports.Notifier = OutboxNotifier{}
