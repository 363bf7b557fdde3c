package constants

// PushgatewayJob is the job label of pushed pipeline metrics.
const PushgatewayJob = "auction_normalizer"
