package routes

const (
	// Health
	Health = "/health"

	// Tenant / manager request endpoints
	RequestsBase     = "/api/v1/maintenance-requests"
	RequestsDispatch = "/api/v1/maintenance-requests/dispatch"
	RequestByID      = "/api/v1/maintenance-requests/{id}"

	// Work-order lifecycle
	WorkOrdersBase     = "/api/v1/work-orders"
	WorkOrderByID      = "/api/v1/work-orders/{id}"
	WorkOrdersAccept   = "/api/v1/work-orders/accept"
	WorkOrdersDecline  = "/api/v1/work-orders/decline"
	WorkOrdersComplete = "/api/v1/work-orders/complete"
	WorkOrdersCancel   = "/api/v1/work-orders/cancel"
	WorkOrdersStatus   = "/api/v1/work-orders/status"

	// Quote protocol
	QuotesBase    = "/api/v1/work-orders/quotes"
	QuotesApprove = "/api/v1/work-orders/quotes/approve"
	QuotesReject  = "/api/v1/work-orders/quotes/reject"

	// Admin / debug surface
	OnCallCurrent = "/api/v1/on-call/current"
)
