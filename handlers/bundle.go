package handlers

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	Wizard       *WizardHandler
	Catalog      *CatalogHandler
	Family       *FamilyHandler
	Availability *AvailabilityHandler
	Recurring    *RecurringHandler
	Requests     *RequestHandler
	Tracking     *TrackingHandler
	User         *UserHandler
}
