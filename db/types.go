package db

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole is the dashboard role of a staff user.
type UserRole string

// AppointmentStatus is the lifecycle status label of an appointment.
type AppointmentStatus string

// CampStatus is the approval status label of a camp registration.
type CampStatus string

// User is a staff member (admin or blood-bank officer) with dashboard access.
type User struct {
	ID        uint64   `json:"id" bson:"_id"`
	Email     string   `json:"email" bson:"email"`
	Password  string   `json:"password" bson:"password"`
	FirstName string   `json:"firstName" bson:"firstName"`
	LastName  string   `json:"lastName" bson:"lastName"`
	Role      UserRole `json:"role" bson:"role"`
	Verified  bool     `json:"verified" bson:"verified"`
}

// Donor is the local mirror of an identity-provider profile, keyed by email.
type Donor struct {
	Email      string    `json:"email" bson:"_id"`
	NIC        string    `json:"nic" bson:"nic"`
	Name       string    `json:"name" bson:"name"`
	Contact    string    `json:"contact" bson:"contact"`
	Address    string    `json:"address" bson:"address"`
	Province   string    `json:"province" bson:"province"`
	District   string    `json:"district" bson:"district"`
	BirthDate  time.Time `json:"birthDate" bson:"birthDate"`
	Age        int       `json:"age" bson:"age"`
	BloodGroup string    `json:"bloodGroup" bson:"bloodGroup"`
	Gender     string    `json:"gender" bson:"gender"`
	AvatarURL  string    `json:"avatarURL" bson:"avatarURL"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// DonorInfo is the denormalized donor snapshot embedded in an appointment at
// booking time. It is copied by value on purpose: later profile edits do not
// rewrite historical appointments.
type DonorInfo struct {
	DonorEmail string    `json:"email" bson:"email"`
	NIC        string    `json:"nic" bson:"nic"`
	Name       string    `json:"name" bson:"name"`
	Contact    string    `json:"contact" bson:"contact"`
	Address    string    `json:"address" bson:"address"`
	BirthDate  time.Time `json:"birthDate" bson:"birthDate"`
	Age        int       `json:"age" bson:"age"`
	BloodGroup string    `json:"bloodGroup" bson:"bloodGroup"`
	Gender     string    `json:"gender" bson:"gender"`
	AvatarURL  string    `json:"avatarURL" bson:"avatarURL"`
}

// QuestionnaireForm holds the answers of one section of the donor intake
// questionnaire. Keys are question identifiers, values are the yes/no or
// free-text answers.
type QuestionnaireForm map[string]string

// Questionnaire is the seven-section medical history captured at booking.
type Questionnaire struct {
	FirstForm   QuestionnaireForm `json:"firstForm" bson:"firstForm"`
	SecondForm  QuestionnaireForm `json:"secondForm" bson:"secondForm"`
	ThirdForm   QuestionnaireForm `json:"thirdForm" bson:"thirdForm"`
	FourthForm  QuestionnaireForm `json:"fourthForm" bson:"fourthForm"`
	FifthForm   QuestionnaireForm `json:"fifthForm" bson:"fifthForm"`
	SixthForm   QuestionnaireForm `json:"sixthForm" bson:"sixthForm"`
	SeventhForm QuestionnaireForm `json:"seventhForm" bson:"seventhForm"`
}

// BloodCollection records the physical draw of the unit.
type BloodCollection struct {
	Volume    int       `json:"volume" bson:"volume"` // milliliters
	StartTime time.Time `json:"startTime" bson:"startTime"`
	EndTime   time.Time `json:"endTime" bson:"endTime"`
	Officer   string    `json:"officer" bson:"officer"`
}

// ProcessingStep is one named sub-step of the processing stage.
type ProcessingStep struct {
	Name        string    `json:"name" bson:"name"`
	Completed   bool      `json:"completed" bson:"completed"`
	Officer     string    `json:"officer" bson:"officer"`
	CompletedAt time.Time `json:"completedAt" bson:"completedAt"`
}

// TestResult is the outcome of one screening test on the unit.
type TestResult struct {
	Name     string    `json:"name" bson:"name"`
	Result   string    `json:"result" bson:"result"`
	Officer  string    `json:"officer" bson:"officer"`
	TestedAt time.Time `json:"testedAt" bson:"testedAt"`
}

// Labelling records the final labelling of the unit before it enters stock.
type Labelling struct {
	Labelled   bool      `json:"labelled" bson:"labelled"`
	Officer    string    `json:"officer" bson:"officer"`
	LabelID    string    `json:"labelId" bson:"labelId"`
	ExpiryDate time.Time `json:"expiryDate" bson:"expiryDate"`
}

// Appointment is a donor's scheduled donation and its processing lifecycle.
type Appointment struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SelectedDate    time.Time          `json:"selectedDate" bson:"selectedDate"`
	SelectedSlot    string             `json:"selectedSlot" bson:"selectedSlot"`
	Status          AppointmentStatus  `json:"status" bson:"status"`
	DonorInfo       DonorInfo          `json:"donorInfo" bson:"donorInfo"`
	Questionnaire   Questionnaire      `json:"questionnaire" bson:"questionnaire"`
	BloodCollection *BloodCollection   `json:"bloodCollection,omitempty" bson:"bloodCollection,omitempty"`
	Processing      []ProcessingStep   `json:"processing,omitempty" bson:"processing,omitempty"`
	Testing         []TestResult       `json:"testing,omitempty" bson:"testing,omitempty"`
	Labelling       *Labelling         `json:"labelling,omitempty" bson:"labelling,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// AppointmentFilter narrows an appointment listing. Zero values are ignored.
type AppointmentFilter struct {
	Status   AppointmentStatus
	Email    string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// Organizer identifies who submitted a camp registration.
type Organizer struct {
	Name    string `json:"name" bson:"name"`
	NIC     string `json:"nic" bson:"nic"`
	Email   string `json:"email" bson:"email"`
	Contact string `json:"contact" bson:"contact"`
}

// CampLocation is where a donation camp takes place.
type CampLocation struct {
	Province string `json:"province" bson:"province"`
	District string `json:"district" bson:"district"`
	City     string `json:"city" bson:"city"`
	Venue    string `json:"venue" bson:"venue"`
	MapLink  string `json:"mapLink" bson:"mapLink"`
}

// Camp is an organization-sponsored blood-donation event.
type Camp struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Organizer      Organizer          `json:"organizer" bson:"organizer"`
	Organization   string             `json:"organization" bson:"organization"`
	Date           time.Time          `json:"date" bson:"date"`
	StartTime      string             `json:"startTime" bson:"startTime"`
	EndTime        string             `json:"endTime" bson:"endTime"`
	Location       CampLocation       `json:"location" bson:"location"`
	ExpectedDonors int                `json:"expectedDonors" bson:"expectedDonors"`
	Status         CampStatus         `json:"status" bson:"status"`
	Team           string             `json:"team" bson:"team"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// StockUnit is one labelled blood unit in the per-unit ledger, keyed by the
// label printed on the bag. The unique labelId index is what makes crediting
// stock idempotent under retry.
type StockUnit struct {
	LabelID       string    `json:"labelId" bson:"_id"`
	BloodType     string    `json:"bloodType" bson:"bloodType"`
	Volume        int       `json:"volume" bson:"volume"`
	ExpiryDate    time.Time `json:"expiryDate" bson:"expiryDate"`
	Officer       string    `json:"officer" bson:"officer"`
	AppointmentID string    `json:"appointmentId,omitempty" bson:"appointmentId,omitempty"`
	Expired       bool      `json:"expired" bson:"expired"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// StockLevel is the aggregated inventory for one blood type.
type StockLevel struct {
	BloodType string    `json:"bloodType" bson:"_id"`
	Units     int       `json:"units" bson:"units"`
	Volume    int       `json:"volume" bson:"volume"` // milliliters
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Object is a stored binary blob (donor avatars), mongo backend of the
// object storage.
type Object struct {
	ID          string    `json:"id" bson:"_id"`
	Data        []byte    `json:"data" bson:"data"`
	UserID      string    `json:"userId" bson:"userId"`
	ContentType string    `json:"contentType" bson:"contentType"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
