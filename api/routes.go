package api

const (
	// GET /ping to check the server is alive
	pingEndpoint = "/ping"

	// auth routes

	// POST /auth/refresh to refresh the JWT token
	authRefreshTokenEndpoint = "/auth/refresh"
	// POST /auth/login to login and get a JWT token
	authLoginEndpoint = "/auth/login"

	// staff user routes

	// POST /users to register a new staff account
	usersEndpoint = "/users"
	// GET /users/me to get the current staff user information
	usersMeEndpoint = "/users/me"
	// POST /users/{userID}/verify to verify a staff account (admin)
	usersVerifyEndpoint = "/users/{userID}/verify"

	// donor routes

	// POST /user-info to sync the donor profile from the identity provider
	userInfoEndpoint = "/user-info"

	// appointment routes

	// POST /appointments to book, GET /appointments to list
	appointmentsEndpoint = "/appointments"
	// GET /appointments/{appointmentID} to fetch one appointment
	appointmentEndpoint = "/appointments/{appointmentID}"
	// GET /appointments/date/{date} to list the appointments of a day
	appointmentsByDateEndpoint = "/appointments/date/{date}"
	// POST /appointments/{appointmentID}/approve to approve the booking
	appointmentApproveEndpoint = "/appointments/{appointmentID}/approve"
	// POST /appointments/{appointmentID}/reject to reject the booking
	appointmentRejectEndpoint = "/appointments/{appointmentID}/reject"
	// PUT /appointments/{appointmentID}/cancel to cancel the booking
	appointmentCancelEndpoint = "/appointments/{appointmentID}/cancel"
	// POST /appointments/{appointmentID}/collect to record the blood draw
	appointmentCollectEndpoint = "/appointments/{appointmentID}/collect"
	// POST /appointments/{appointmentID}/process to record processing steps
	appointmentProcessEndpoint = "/appointments/{appointmentID}/process"
	// POST /appointments/{appointmentID}/test to record screening results
	appointmentTestEndpoint = "/appointments/{appointmentID}/test"
	// POST /appointments/{appointmentID}/label to label the unit into stock
	appointmentLabelEndpoint = "/appointments/{appointmentID}/label"

	// camp routes

	// POST /camps to register, GET /camps to list
	campsEndpoint = "/camps"
	// GET /camps/{campID} to fetch one camp
	campEndpoint = "/camps/{campID}"
	// GET /camps/booked-slots/{date} to list taken camp slots of a day
	campBookedSlotsEndpoint = "/camps/booked-slots/{date}"
	// POST /camps/{campID}/approve to approve the registration
	campApproveEndpoint = "/camps/{campID}/approve"
	// POST /camps/{campID}/reject to reject the registration
	campRejectEndpoint = "/camps/{campID}/reject"
	// PUT /camps/{campID}/team to allocate a response team
	campTeamEndpoint = "/camps/{campID}/team"

	// stock routes

	// GET /stock to list levels, POST /stock for a manual correction
	stockEndpoint = "/stock"
	// GET /stock/{bloodType} to fetch the level of one blood type
	stockByTypeEndpoint = "/stock/{bloodType}"

	// messaging routes

	// POST /subscription/send to send an SMS through the gateway
	subscriptionSendEndpoint = "/subscription/send"
	// POST /chatbot/chat to talk to the donor assistant
	chatbotChatEndpoint = "/chatbot/chat"

	// storage routes

	// POST /storage to upload a donor avatar
	storageUploadEndpoint = "/storage"
	// GET /storage/{objectName} to download an avatar
	storageDownloadEndpoint = "/storage/{objectName}"
)
