package model

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

type Vote struct {
	UserID  string   `json:"user_id"`
	ReplyID string   `json:"reply_id"`
	Type    VoteType `json:"type"`
}
