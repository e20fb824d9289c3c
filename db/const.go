package db

const (
	// staff user roles
	AdminRole   UserRole = "admin"
	OfficerRole UserRole = "officer"

	// appointment lifecycle statuses
	AppointmentPending   AppointmentStatus = "Pending"
	AppointmentApproved  AppointmentStatus = "Approved"
	AppointmentRejected  AppointmentStatus = "Rejected"
	AppointmentCollected AppointmentStatus = "Collected"
	AppointmentProcessed AppointmentStatus = "Processed"
	AppointmentTested    AppointmentStatus = "Tested"
	AppointmentLabelled  AppointmentStatus = "Labelled"
	AppointmentCancelled AppointmentStatus = "Cancelled"

	// camp statuses
	CampPending  CampStatus = "Pending"
	CampApproved CampStatus = "Approved"
	CampRejected CampStatus = "Rejected"

	// NoTeam is the team label of a camp without an allocated response team.
	NoTeam = "None"
)

// BloodGroups is the fixed set of blood types tracked by the stock ledger.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

var validBloodGroups = func() map[string]bool {
	m := make(map[string]bool, len(BloodGroups))
	for _, bg := range BloodGroups {
		m[bg] = true
	}
	return m
}()

// IsValidBloodGroup function checks if the blood group label is valid.
func IsValidBloodGroup(bg string) bool {
	return validBloodGroups[bg]
}

// validAppointmentStatuses is a map that contains the valid appointment statuses
var validAppointmentStatuses = map[AppointmentStatus]bool{
	AppointmentPending:   true,
	AppointmentApproved:  true,
	AppointmentRejected:  true,
	AppointmentCollected: true,
	AppointmentProcessed: true,
	AppointmentTested:    true,
	AppointmentLabelled:  true,
	AppointmentCancelled: true,
}

// IsValidAppointmentStatus function checks if the appointment status is valid.
func IsValidAppointmentStatus(s string) bool {
	return validAppointmentStatuses[AppointmentStatus(s)]
}

// validRoles is a map that contains the valid staff roles
var validRoles = map[UserRole]bool{
	AdminRole:   true,
	OfficerRole: true,
}

// IsValidUserRole function checks if the staff role is valid.
func IsValidUserRole(role UserRole) bool {
	return validRoles[role]
}

// ProcessingStepNames are the named sub-steps of the blood processing stage,
// in the order they are performed at the bench.
var ProcessingStepNames = []string{
	"Centrifugation",
	"Component Separation",
	"Plasma Extraction",
	"Platelet Extraction",
}

var validProcessingSteps = func() map[string]bool {
	m := make(map[string]bool, len(ProcessingStepNames))
	for _, name := range ProcessingStepNames {
		m[name] = true
	}
	return m
}()

// IsValidProcessingStep function checks if the processing step name is valid.
func IsValidProcessingStep(name string) bool {
	return validProcessingSteps[name]
}

// TestNames are the screening tests run on every collected unit.
var TestNames = []string{
	"HIV",
	"Hepatitis B",
	"Hepatitis C",
	"Syphilis",
	"Malaria",
}

var validTestNames = func() map[string]bool {
	m := make(map[string]bool, len(TestNames))
	for _, name := range TestNames {
		m[name] = true
	}
	return m
}()

// IsValidTestName function checks if the screening test name is valid.
func IsValidTestName(name string) bool {
	return validTestNames[name]
}
