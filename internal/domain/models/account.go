package models

import "github.com/shopspring/decimal"

// TradingAccount is a single tradable account under a CSP account. It has no
// lifecycle of its own; the owning CSPAccount holds the list.
type TradingAccount struct {
	ID      string
	Number  string
	Type    string // "spot", "futures"
	Balance decimal.Decimal
	IsLive  bool
	Status  string
}

// CSPAccount is a custodial/broker-side account grouping trading accounts.
type CSPAccount struct {
	ID              string
	Name            string
	APIName         string
	Status          string
	OwnerEmail      string
	TradingAccounts []TradingAccount
}

// AccountRow is a denormalized join row: CSP-account fields plus one trading
// account's fields, as delivered by the account-linking upstream.
type AccountRow struct {
	CSPID         string
	CSPName       string
	APIName       string
	Status        string
	OwnerEmail    string
	UserID        string
	AccountID     string
	AccountNumber string
	AccountType   string
	Balance       string // display string from the provider; parsed lazily
	IsLive        bool
	AccountStatus string
}
