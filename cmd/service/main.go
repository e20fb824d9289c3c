package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.vocdoni.io/dvote/log"

	"github.com/bloodline/backend/api"
	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/jobs"
	"github.com/bloodline/backend/notifications"
	"github.com/bloodline/backend/notifications/mailtemplates"
	"github.com/bloodline/backend/notifications/smtp"
	"github.com/bloodline/backend/notifications/twilio"
	"github.com/bloodline/backend/oauth"
	"github.com/bloodline/backend/objectstorage"
	"github.com/bloodline/backend/workflow"
)

func main() {
	log.Init("debug", "stdout", nil)
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.StringP("secret", "s", "", "API secret")
	flag.String("mongo-url", "", "The URL of the MongoDB server")
	flag.String("mongo-db", "bloodline", "The name of the MongoDB database")
	flag.String("server-url", "http://localhost:8080", "The public URL of the server")
	flag.String("web-url", "http://localhost:3000", "The URL of the donor web application")
	flag.String("oauth-userinfo-url", "", "The userinfo endpoint of the identity provider")
	flag.String("smtp-server", "", "SMTP server address")
	flag.Int("smtp-port", 587, "SMTP server port")
	flag.String("smtp-username", "", "SMTP username")
	flag.String("smtp-password", "", "SMTP password")
	flag.String("email-from-address", "", "Email sender address")
	flag.String("email-from-name", "Bloodline", "Email sender name")
	flag.String("twilio-account-sid", "", "Twilio account SID")
	flag.String("twilio-auth-token", "", "Twilio auth token")
	flag.String("twilio-from-number", "", "Twilio sender number")
	flag.String("s3-region", "", "S3 region of the avatar bucket")
	flag.String("s3-bucket", "", "S3 bucket for avatars (empty stores avatars in MongoDB)")
	flag.String("s3-access-key", "", "S3 access key")
	flag.String("s3-secret-key", "", "S3 secret key")
	flag.String("s3-endpoint", "", "S3 endpoint override for compatible services")
	flag.String("admin-email", "", "email of the admin account seeded at startup")
	flag.String("admin-password", "", "password of the admin account seeded at startup")
	flag.Bool("allow-reapproval", false, "allow approving previously rejected appointments and camps")
	flag.Int("slot-capacity", 0, "maximum active bookings per appointment slot (0 is unlimited)")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("BLOODLINE")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	secret := viper.GetString("secret")
	if secret == "" {
		log.Fatal("secret is required")
	}
	mongoURL := viper.GetString("mongo-url")
	mongoDB := viper.GetString("mongo-db")
	serverURL := viper.GetString("server-url")
	webURL := viper.GetString("web-url")
	oauthUserInfoURL := viper.GetString("oauth-userinfo-url")
	if oauthUserInfoURL == "" {
		log.Fatal("oauth-userinfo-url is required")
	}
	// initialize the MongoDB database
	database, err := db.New(mongoURL, mongoDB)
	if err != nil {
		log.Fatalf("could not create the MongoDB database: %v", err)
	}
	defer database.Close()
	// load the email templates
	if err := mailtemplates.Load(); err != nil {
		log.Fatalf("could not load email templates: %v", err)
	}
	// create the email service if the SMTP server is configured
	var mailService notifications.NotificationService
	if smtpServer := viper.GetString("smtp-server"); smtpServer != "" {
		mailService = new(smtp.Email)
		if err := mailService.New(&smtp.Config{
			FromName:     viper.GetString("email-from-name"),
			FromAddress:  viper.GetString("email-from-address"),
			SMTPServer:   smtpServer,
			SMTPPort:     viper.GetInt("smtp-port"),
			SMTPUsername: viper.GetString("smtp-username"),
			SMTPPassword: viper.GetString("smtp-password"),
		}); err != nil {
			log.Fatalf("could not create the email service: %v", err)
		}
		log.Infow("email service created", "server", smtpServer)
	}
	// create the SMS service if Twilio is configured
	var smsService notifications.NotificationService
	if twilioSid := viper.GetString("twilio-account-sid"); twilioSid != "" {
		smsService = new(twilio.SMS)
		if err := smsService.New(&twilio.Config{
			AccountSid: twilioSid,
			AuthToken:  viper.GetString("twilio-auth-token"),
			FromNumber: viper.GetString("twilio-from-number"),
		}); err != nil {
			log.Fatalf("could not create the SMS service: %v", err)
		}
		log.Infow("SMS service created")
	}
	// start the notification dispatch queue
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue := notifications.NewQueue(ctx, notifications.DefaultQueueTTL,
		notifications.DefaultQueueThrottle, mailService, smsService)
	go queue.Start()
	// drain the delivery reports, logging the ones that gave up
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case request := <-queue.Sent:
				if !request.Success {
					log.Warnw("notification delivery gave up",
						"channel", string(request.Channel),
						"retries", request.Retries)
				}
			}
		}
	}()
	// create the object storage client, with the S3 backend if configured
	storageConfig := &objectstorage.Config{DB: database, ServerURL: serverURL}
	if bucket := viper.GetString("s3-bucket"); bucket != "" {
		storageConfig.S3 = &objectstorage.S3Config{
			Region:    viper.GetString("s3-region"),
			Bucket:    bucket,
			AccessKey: viper.GetString("s3-access-key"),
			SecretKey: viper.GetString("s3-secret-key"),
			Endpoint:  viper.GetString("s3-endpoint"),
		}
	}
	objectStorage, err := objectstorage.New(storageConfig)
	if err != nil {
		log.Fatalf("could not create the object storage client: %v", err)
	}
	// start the scheduled jobs
	scheduler := jobs.New(database)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("could not start the scheduler: %v", err)
	}
	defer scheduler.Stop()
	// create the local API server
	api.New(&api.Config{
		Host:          host,
		Port:          port,
		Secret:        secret,
		DB:            database,
		Queue:         queue,
		OAuth:         oauth.New(oauthUserInfoURL),
		ObjectStorage: objectStorage,
		Policy: workflow.Policy{
			AllowReapproval: viper.GetBool("allow-reapproval"),
			SlotCapacity:    viper.GetInt("slot-capacity"),
		},
		ServerURL:     serverURL,
		WebAppURL:     webURL,
		AdminEmail:    viper.GetString("admin-email"),
		AdminPassword: viper.GetString("admin-password"),
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
