package constants

// Exchange for run reports
const (
	RunsExchange     = "normalization_exchange"
	RunsExchangeType = "direct"
)

// Routing keys
const (
	RoutingKeyRunReports = "notify.normalization.run"
)
