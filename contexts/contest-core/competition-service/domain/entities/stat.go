package entities

import "strings"

// CompetitionStat is the submission read model. It is recomputed on demand by
// the repository and owned transiently by the caller; membership can change
// between stage transitions, so it must never be cached across them.
type CompetitionStat struct {
	CompetitionID     int64
	RegisteredMembers []UserInfo
	SubmittedFiles    map[int64][]SubmittedFile
}

func (s CompetitionStat) SubmittedMemberCount() int {
	count := 0
	for _, files := range s.SubmittedFiles {
		if len(files) > 0 {
			count++
		}
	}
	return count
}

func (s CompetitionStat) SubmittedFileCount() int {
	count := 0
	for _, files := range s.SubmittedFiles {
		count += len(files)
	}
	return count
}

func (s CompetitionStat) TotalSubmittedTextSize() int {
	total := 0
	for _, files := range s.SubmittedFiles {
		for _, file := range files {
			total += file.TextSize
		}
	}
	return total
}

func (s CompetitionStat) IsRegistered(userID int64) bool {
	for _, member := range s.RegisteredMembers {
		if member.ID == userID {
			return true
		}
	}
	return false
}

func (s CompetitionStat) IsSubmitted(userID int64) bool {
	return len(s.SubmittedFiles[userID]) > 0
}

func (s CompetitionStat) Member(userID int64) (UserInfo, bool) {
	for _, member := range s.RegisteredMembers {
		if member.ID == userID {
			return member, true
		}
	}
	return UserInfo{}, false
}

// AllFiles flattens submissions grouped per registered member order, each
// member's files in submission order.
func (s CompetitionStat) AllFiles() []SubmittedFile {
	files := make([]SubmittedFile, 0, s.SubmittedFileCount())
	for _, member := range s.RegisteredMembers {
		files = append(files, s.SubmittedFiles[member.ID]...)
	}
	return files
}

func (s CompetitionStat) FileOwner(fileID int64) (int64, bool) {
	for ownerID, files := range s.SubmittedFiles {
		for _, file := range files {
			if file.ID == fileID {
				return ownerID, true
			}
		}
	}
	return 0, false
}

// HasFileTitled reports whether the user already submitted a file with the
// same normalized title.
func (s CompetitionStat) HasFileTitled(userID int64, title string) bool {
	normalized := NormalizeFileTitle(title)
	for _, file := range s.SubmittedFiles[userID] {
		if NormalizeFileTitle(file.Title) == normalized {
			return true
		}
	}
	return false
}

func NormalizeFileTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
