package models

import "time"

// Poll visibility constants
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	VisibilityDraft   = "draft"
)

// Poll status constants
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// User role constants
const (
	RoleAdmin = "admin"
	RoleVoter = "voter"
)

// Derived voting state of a poll
const (
	StateOpen   = "OPEN"
	StateClosed = "CLOSED"
)

// Document collections
const (
	CollectionPolls = "polls"
	CollectionUsers = "users"
	CollectionAudit = "auditLogs"
)

// SchemaVersion is written into every poll and user document.
const SchemaVersion = 1

// Choice limits for create and edit
const (
	MinChoices = 2
	MaxChoices = 6
)

// Domain types

type Choice struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type VoteRecord struct {
	UserID   string    `json:"userId"`
	ChoiceID string    `json:"choiceId"`
	Reason   string    `json:"reason,omitempty"`
	VotedAt  time.Time `json:"votedAt"`
}

type Poll struct {
	ID            string       `json:"id"`
	Question      string       `json:"question"`
	Description   string       `json:"description,omitempty"`
	Choices       []Choice     `json:"choices"`
	Deadline      time.Time    `json:"deadline"`
	Visibility    string       `json:"visibility"`
	Status        string       `json:"status"`
	Voters        []VoteRecord `json:"voters"`
	CreatedAt     time.Time    `json:"createdAt"`
	CreatedBy     string       `json:"createdBy"`
	SchemaVersion int          `json:"schemaVersion"`
}

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	Role          string    `json:"role"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	SchemaVersion int       `json:"schemaVersion"`
}

type AuditEntry struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Action    string            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// Result types

type ChoiceResult struct {
	ChoiceID   string  `json:"choice_id"`
	Text       string  `json:"text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type Tally struct {
	PollID     string         `json:"poll_id"`
	TotalVotes int            `json:"total_votes"`
	Choices    []ChoiceResult `json:"choices"`
}

type PollEngagement struct {
	PollID     string    `json:"poll_id"`
	Question   string    `json:"question"`
	TotalVotes int       `json:"total_votes"`
	CreatedAt  time.Time `json:"created_at"`
}

type PollStats struct {
	TotalPolls          int              `json:"total_polls"`
	ActivePolls         int              `json:"active_polls"`
	TotalVotes          int              `json:"total_votes"`
	AverageVotesPerPoll float64          `json:"average_votes_per_poll"`
	Engagement          []PollEngagement `json:"engagement"`
}

type UserStats struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
	AdminUsers  int `json:"admin_users"`
}

type VoteHistoryEntry struct {
	PollID     string    `json:"poll_id"`
	Question   string    `json:"question"`
	ChoiceID   string    `json:"choice_id"`
	ChoiceText string    `json:"choice_text"`
	VotedAt    time.Time `json:"voted_at"`
}

// Request types

type CreatePollRequest struct {
	Question    string    `json:"question"`
	Description string    `json:"description"`
	Choices     []string  `json:"choices"`
	Deadline    time.Time `json:"deadline"`
	Visibility  string    `json:"visibility"`
}

type EditPollRequest struct {
	Question    string    `json:"question"`
	Description string    `json:"description"`
	Choices     []string  `json:"choices"`
	Deadline    time.Time `json:"deadline"`
	Visibility  string    `json:"visibility"`
	Status      string    `json:"status"`
}

type CastVoteRequest struct {
	ChoiceID string `json:"choice_id"`
	Reason   string `json:"reason"`
}

type RegisterUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type SetVisibilityRequest struct {
	Visibility string `json:"visibility"`
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// Response types

type CreatePollResponse struct {
	PollID string `json:"poll_id"`
}

type CastVoteResponse struct {
	PollID   string    `json:"poll_id"`
	ChoiceID string    `json:"choice_id"`
	VotedAt  time.Time `json:"voted_at"`
	Message  string    `json:"message"`
}

type PollView struct {
	Poll     Poll   `json:"poll"`
	State    string `json:"state"`
	HasVoted bool   `json:"has_voted"`
}

type ResultsResponse struct {
	Tally    Tally  `json:"tally"`
	State    string `json:"state"`
	ClosesIn string `json:"closes_in"`
}

type RegisterUserResponse struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token,omitempty"`
}

type PollListResponse struct {
	Polls []Poll `json:"polls"`
}

type UserListResponse struct {
	Users []User `json:"users"`
}

type VoteHistoryResponse struct {
	Votes []VoteHistoryEntry `json:"votes"`
}

type AuditLogResponse struct {
	Entries []AuditEntry `json:"entries"`
}

type AdminStatsResponse struct {
	Polls PollStats `json:"polls"`
	Users UserStats `json:"users"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
