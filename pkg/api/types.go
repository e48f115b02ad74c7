package api

import "github.com/shopspring/decimal"

// Amounts are decimal strings on the wire ("12.50").

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type Participant struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	IsRegistered bool   `json:"isRegistered"`
}

type Group struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedBy string         `json:"createdBy"`
	Members   []*Participant `json:"members"`
	Guests    []*Participant `json:"guests"`
	CreatedAt int64          `json:"createdAt"`
}

type Split struct {
	ParticipantID   string          `json:"participantId"`
	ParticipantName string          `json:"participantName"`
	IsRegistered    bool            `json:"isRegistered"`
	Amount          decimal.Decimal `json:"amount"`
}

type Bill struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"groupId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paidBy"`
	Splits      []*Split        `json:"splits"`
	CreatedAt   int64           `json:"createdAt"`
}

// MemberBalance is positive when the participant is owed money.
type MemberBalance struct {
	ParticipantID string          `json:"participantId"`
	DisplayName   string          `json:"displayName"`
	NetBalance    decimal.Decimal `json:"netBalance"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	TotalOwed     decimal.Decimal `json:"totalOwed"`
}

type DebtEdge struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupTransaction is a simplified debt annotated with its group.
type GroupTransaction struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`
	FromName  string          `json:"fromName"`
	To        string          `json:"to"`
	ToName    string          `json:"toName"`
	Amount    decimal.Decimal `json:"amount"`
	GroupID   string          `json:"groupId"`
	GroupName string          `json:"groupName"`
}

type Settlement struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"groupId"`
	GroupName string          `json:"groupName"`
	PayerID   string          `json:"payerId"`
	PayeeID   string          `json:"payeeId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
}

// Event tells a dashboard to refresh.
type Event struct {
	Kind         string `json:"kind"`
	GroupID      string `json:"groupId,omitempty"`
	SettlementID string `json:"settlementId,omitempty"`
	Status       string `json:"status,omitempty"`
	At           int64  `json:"at"`
}
