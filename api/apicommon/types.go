package apicommon

import (
	"time"

	"github.com/bloodline/backend/db"
)

// UserInfo is the request to register a staff account and the login
// credentials payload.
type UserInfo struct {
	Email     string `json:"email,omitempty"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// LoginResponse is the response of the login and refresh handlers, with the
// JWT token and its expiration time.
type LoginResponse struct {
	Token    string    `json:"token"`
	Expirity time.Time `json:"expirity"`
}

// CreateAppointmentRequest is the donor booking payload. The date is a plain
// calendar day in "2006-01-02" format.
type CreateAppointmentRequest struct {
	SelectedDate  string           `json:"selectedDate"`
	SelectedSlot  string           `json:"selectedSlot"`
	DonorInfo     db.DonorInfo     `json:"donorInfo"`
	Questionnaire db.Questionnaire `json:"questionnaire"`
}

// CreatedResponse carries the identifier of a newly created resource.
type CreatedResponse struct {
	ID string `json:"id"`
}

// AppointmentsResponse is a paginated appointment listing.
type AppointmentsResponse struct {
	Appointments []db.Appointment `json:"appointments"`
	Total        int64            `json:"total"`
	Page         int              `json:"page"`
}

// TransitionRequest is the optional payload of approve, reject and cancel
// operations. The remark is forwarded to the donor notification.
type TransitionRequest struct {
	Remark string `json:"remark,omitempty"`
}

// CollectRequest is the blood draw payload of the collect operation.
type CollectRequest struct {
	Collection db.BloodCollection `json:"collection"`
}

// ProcessRequest is the payload of the process operation.
type ProcessRequest struct {
	Steps []db.ProcessingStep `json:"steps"`
}

// TestRequest is the payload of the test operation.
type TestRequest struct {
	Results []db.TestResult `json:"results"`
}

// LabelRequest is the payload of the label operation. A missing label
// identifier is generated server side, and a missing expiry date defaults to
// the whole-blood shelf life.
type LabelRequest struct {
	Labelling db.Labelling `json:"labelling"`
}

// CreateCampRequest is the organizer registration payload. The date is a
// plain calendar day in "2006-01-02" format.
type CreateCampRequest struct {
	Organizer      db.Organizer    `json:"organizer"`
	Organization   string          `json:"organization"`
	Date           string          `json:"date"`
	StartTime      string          `json:"startTime"`
	EndTime        string          `json:"endTime"`
	Location       db.CampLocation `json:"location"`
	ExpectedDonors int             `json:"expectedDonors"`
}

// CampsResponse is a camp listing.
type CampsResponse struct {
	Camps []db.Camp `json:"camps"`
}

// BookedSlotsResponse lists the taken camp time slots of a day.
type BookedSlotsResponse struct {
	Slots []string `json:"slots"`
}

// TeamRequest is the payload of the camp team allocation.
type TeamRequest struct {
	Team string `json:"team"`
}

// StockResponse lists the aggregated stock levels.
type StockResponse struct {
	Levels []db.StockLevel `json:"levels"`
}

// StockCorrectionRequest is the manual ledger correction payload. Deltas may
// be negative to debit a level.
type StockCorrectionRequest struct {
	BloodType string `json:"bloodType"`
	Units     int    `json:"units"`
	Volume    int    `json:"volume"`
	Reason    string `json:"reason,omitempty"`
}

// SMSRequest is the SMS pass-through payload.
type SMSRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// ChatRequest is a chatbot message. The session identifier threads the
// conversation and may be empty on the first message.
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the chatbot answer.
type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Intent    string `json:"intent,omitempty"`
	Answer    string `json:"answer"`
}
