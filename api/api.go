// Package api provides the HTTP API of the Bloodline blood bank backend:
// staff authentication, donor profile sync, appointment lifecycle, camp
// registrations, stock inventory, messaging and avatar storage.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"go.vocdoni.io/dvote/log"

	"github.com/bloodline/backend/chatbot"
	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/notifications"
	"github.com/bloodline/backend/oauth"
	"github.com/bloodline/backend/objectstorage"
	"github.com/bloodline/backend/workflow"
)

// Config holds the dependencies and settings of the API server.
type Config struct {
	Host          string
	Port          int
	Secret        string
	DB            *db.MongoStorage
	Queue         *notifications.Queue
	OAuth         *oauth.Client
	ObjectStorage *objectstorage.Client
	Policy        workflow.Policy
	ServerURL     string
	WebAppURL     string
	// AdminEmail and AdminPassword seed a verified admin account at startup,
	// so a fresh deployment can reach the protected surface.
	AdminEmail    string
	AdminPassword string
}

// API type represents the API HTTP server with JWT authentication
// capabilities.
type API struct {
	db            *db.MongoStorage
	auth          *jwtauth.JWTAuth
	host          string
	port          int
	router        *chi.Mux
	queue         *notifications.Queue
	oauth         *oauth.Client
	objectStorage *objectstorage.Client
	policy        workflow.Policy
	chatbot       *chatbot.Bot
	chatLimiter   *chatbot.RateLimiter
	serverURL     string
	webAppURL     string
}

// New creates a new API HTTP server. It does not start the server. Use
// Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	// the object storage builds download URLs from the public server URL
	if conf.ObjectStorage != nil {
		conf.ObjectStorage.ServerURL = conf.ServerURL
	}
	a := &API{
		db:            conf.DB,
		auth:          jwtauth.New("HS256", []byte(conf.Secret), nil),
		host:          conf.Host,
		port:          conf.Port,
		queue:         conf.Queue,
		oauth:         conf.OAuth,
		objectStorage: conf.ObjectStorage,
		policy:        conf.Policy,
		chatbot:       chatbot.New(conf.DB),
		chatLimiter:   chatbot.NewRateLimiter(chatbotRequestsPerSecond, chatbotBurst),
		serverURL:     conf.ServerURL,
		webAppURL:     conf.WebAppURL,
	}
	if conf.AdminEmail != "" {
		if err := a.ensureAdminAccount(conf.AdminEmail, conf.AdminPassword); err != nil {
			log.Fatalf("could not seed the admin account: %v", err)
		}
	}
	return a
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	r.Use(middleware.Timeout(45 * time.Second))

	// protected routes
	r.Group(func(r chi.Router) {
		// seek, verify and validate JWT tokens
		r.Use(jwtauth.Verifier(a.auth))
		// handle valid JWT tokens
		r.Use(a.authenticator)
		// refresh the token
		log.Infow("new route", "method", "POST", "path", authRefreshTokenEndpoint)
		r.Post(authRefreshTokenEndpoint, a.refreshTokenHandler)
		// current staff user information
		log.Infow("new route", "method", "GET", "path", usersMeEndpoint)
		r.Get(usersMeEndpoint, a.userInfoHandler)
		// verify a staff account
		log.Infow("new route", "method", "POST", "path", usersVerifyEndpoint)
		r.Post(usersVerifyEndpoint, a.verifyUserHandler)
		// appointment listing and lifecycle
		log.Infow("new route", "method", "GET", "path", appointmentsEndpoint)
		r.Get(appointmentsEndpoint, a.appointmentsHandler)
		log.Infow("new route", "method", "GET", "path", appointmentEndpoint)
		r.Get(appointmentEndpoint, a.appointmentHandler)
		log.Infow("new route", "method", "GET", "path", appointmentsByDateEndpoint)
		r.Get(appointmentsByDateEndpoint, a.appointmentsByDateHandler)
		log.Infow("new route", "method", "POST", "path", appointmentApproveEndpoint)
		r.Post(appointmentApproveEndpoint, a.approveAppointmentHandler)
		log.Infow("new route", "method", "POST", "path", appointmentRejectEndpoint)
		r.Post(appointmentRejectEndpoint, a.rejectAppointmentHandler)
		log.Infow("new route", "method", "PUT", "path", appointmentCancelEndpoint)
		r.Put(appointmentCancelEndpoint, a.cancelAppointmentHandler)
		log.Infow("new route", "method", "POST", "path", appointmentCollectEndpoint)
		r.Post(appointmentCollectEndpoint, a.collectAppointmentHandler)
		log.Infow("new route", "method", "POST", "path", appointmentProcessEndpoint)
		r.Post(appointmentProcessEndpoint, a.processAppointmentHandler)
		log.Infow("new route", "method", "POST", "path", appointmentTestEndpoint)
		r.Post(appointmentTestEndpoint, a.testAppointmentHandler)
		log.Infow("new route", "method", "POST", "path", appointmentLabelEndpoint)
		r.Post(appointmentLabelEndpoint, a.labelAppointmentHandler)
		// camp listing and lifecycle
		log.Infow("new route", "method", "GET", "path", campsEndpoint)
		r.Get(campsEndpoint, a.campsHandler)
		log.Infow("new route", "method", "GET", "path", campEndpoint)
		r.Get(campEndpoint, a.campHandler)
		log.Infow("new route", "method", "POST", "path", campApproveEndpoint)
		r.Post(campApproveEndpoint, a.approveCampHandler)
		log.Infow("new route", "method", "POST", "path", campRejectEndpoint)
		r.Post(campRejectEndpoint, a.rejectCampHandler)
		log.Infow("new route", "method", "PUT", "path", campTeamEndpoint)
		r.Put(campTeamEndpoint, a.setCampTeamHandler)
		// stock inventory
		log.Infow("new route", "method", "GET", "path", stockEndpoint)
		r.Get(stockEndpoint, a.stockLevelsHandler)
		log.Infow("new route", "method", "GET", "path", stockByTypeEndpoint)
		r.Get(stockByTypeEndpoint, a.stockLevelByTypeHandler)
		log.Infow("new route", "method", "POST", "path", stockEndpoint)
		r.Post(stockEndpoint, a.stockCorrectionHandler)
		// SMS pass-through
		log.Infow("new route", "method", "POST", "path", subscriptionSendEndpoint)
		r.Post(subscriptionSendEndpoint, a.sendSMSHandler)
		// upload a donor avatar to the object storage
		log.Infow("new route", "method", "POST", "path", storageUploadEndpoint)
		r.Post(storageUploadEndpoint, a.objectStorage.UploadAvatarWithFormHandler)
	})

	// public routes
	r.Group(func(r chi.Router) {
		r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
			if _, err := w.Write([]byte(".")); err != nil {
				log.Warnw("failed to write ping response", "error", err)
			}
		})
		// login
		log.Infow("new route", "method", "POST", "path", authLoginEndpoint)
		r.Post(authLoginEndpoint, a.authLoginHandler)
		// register staff user
		log.Infow("new route", "method", "POST", "path", usersEndpoint)
		r.Post(usersEndpoint, a.registerHandler)
		// donor profile sync from the identity provider
		log.Infow("new route", "method", "POST", "path", userInfoEndpoint)
		r.Post(userInfoEndpoint, a.donorInfoHandler)
		// donor booking
		log.Infow("new route", "method", "POST", "path", appointmentsEndpoint)
		r.Post(appointmentsEndpoint, a.createAppointmentHandler)
		// organizer camp registration
		log.Infow("new route", "method", "POST", "path", campsEndpoint)
		r.Post(campsEndpoint, a.createCampHandler)
		// taken camp slots of a day
		log.Infow("new route", "method", "GET", "path", campBookedSlotsEndpoint)
		r.Get(campBookedSlotsEndpoint, a.campBookedSlotsHandler)
		// donor assistant
		log.Infow("new route", "method", "POST", "path", chatbotChatEndpoint)
		r.Post(chatbotChatEndpoint, a.chatbotHandler)
		// download a donor avatar from the object storage
		log.Infow("new route", "method", "GET", "path", storageDownloadEndpoint)
		r.Get(storageDownloadEndpoint, a.objectStorage.DownloadImageInlineHandler)
	})
	a.router = r
	return r
}
