package models

// Requests for the monitoring HTTP endpoints. Defined in domain for
// consistency and reuse.

type ErrorListRequest struct {
	Search   string `query:"q" json:"q"`
	Severity string `query:"severity" json:"severity" default:"all" validate:"oneof=all low medium high critical"`
	Category string `query:"category" json:"category" default:"all" validate:"oneof=all auth trading integration time conn system unknown"`
	Status   string `query:"status" json:"status" default:"all"`
	BotType  string `query:"bot_type" json:"bot_type" default:"all" validate:"oneof=all user premium prop"`
	UserID   string `query:"user_id" json:"user_id"`
	Since    string `query:"since" json:"since"`
	Sort     string `query:"sort" json:"sort" default:"newest" validate:"oneof=newest oldest severity-high severity-low"`
	Limit    int    `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=1000"`
}

type ReconciliationRequest struct {
	SignalID string `param:"id" json:"signal_id" validate:"required"`
}

type HierarchyRequest struct {
	UserID string `query:"user_id" json:"user_id" validate:"required"`
	Live   string `query:"live" json:"live" default:"all" validate:"oneof=all live demo"`
}

type MarkReadRequest struct {
	SignalID string `param:"id" json:"signal_id" validate:"required"`
}

type ResolveRequest struct {
	SignalID string `param:"id" json:"signal_id" validate:"required"`
	Note     string `json:"note"`
}
