package api

import "time"

const (
	// jwtExpiration is how long an issued staff token stays valid.
	jwtExpiration = 360 * time.Hour // 15 days
	// passwordSalt is the salt for staff password hashing.
	passwordSalt = "bloodline365"
	// dateParamLayout is the layout of {date} URL parameters.
	dateParamLayout = "2006-01-02"
	// defaultShelfLife is the expiry applied to a labelled unit when the
	// officer does not provide one. Whole blood keeps for 35 days.
	defaultShelfLife = 35 * 24 * time.Hour
	// chatbotRequestsPerSecond and chatbotBurst bound the per-IP chatbot rate.
	chatbotRequestsPerSecond = 1
	chatbotBurst             = 5
)
