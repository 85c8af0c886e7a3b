package entities

// CompetitionView is the polling engine's projection of a competition. The
// engine never mutates the aggregate; the competition service supplies this
// snapshot per call.
type CompetitionView struct {
	CompetitionID   int64
	OpenType        bool
	PollingSchemeID int64
	PollingStarted  bool
	Finished        bool
}

// SubmissionView is one submitted file visible to voters.
type SubmissionView struct {
	FileID  int64
	OwnerID int64
	Title   string
}

// SubmissionStat is the submission read model the scoring contract operates
// on.
type SubmissionStat struct {
	Files []SubmissionView
}

func (s SubmissionStat) SubmittedMemberCount() int {
	owners := map[int64]struct{}{}
	for _, file := range s.Files {
		owners[file.OwnerID] = struct{}{}
	}
	return len(owners)
}

func (s SubmissionStat) File(fileID int64) (SubmissionView, bool) {
	for _, file := range s.Files {
		if file.FileID == fileID {
			return file, true
		}
	}
	return SubmissionView{}, false
}

func (s SubmissionStat) IsOwner(userID int64, fileID int64) bool {
	file, ok := s.File(fileID)
	return ok && file.OwnerID == userID
}

func (s SubmissionStat) HasSubmitted(userID int64) bool {
	for _, file := range s.Files {
		if file.OwnerID == userID {
			return true
		}
	}
	return false
}
