package email

const (
	subjectWelcome              = "Welcome to Household Services"
	subjectVerificationApproved = "Your professional profile has been approved"
	subjectRequestAssignedFmt   = "A professional accepted your %s request"
	subjectRequestCancelled     = "A booking on your calendar was cancelled"
	subjectRequestCompletedFmt  = "Your %s request is complete"
	subjectDailyReminder        = "You have pending service requests"
	subjectExportReady          = "Your service report export is ready"
)
