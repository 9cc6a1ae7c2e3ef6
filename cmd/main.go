package main

import (
	"github.com/duduji/api/internal/auth"
	"github.com/duduji/api/internal/comment"
	"github.com/duduji/api/internal/config"
	"github.com/duduji/api/internal/database"
	"github.com/duduji/api/internal/dazim"
	"github.com/duduji/api/internal/email"
	"github.com/duduji/api/internal/feed"
	"github.com/duduji/api/internal/group"
	"github.com/duduji/api/internal/server"
	"github.com/duduji/api/internal/storage"
	"github.com/duduji/api/internal/token"
	"github.com/duduji/api/internal/user"

	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	if err := cfg.ValidateSecrets(); err != nil {
		log.WithError(err).Fatal("JWT configuration error")
	}
	log.Info("JWT secrets validated")

	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("database migrated")

	uploader, err := storage.NewS3Uploader(cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
	if err != nil {
		log.WithError(err).Fatal("S3 initialization failed")
	}
	log.WithField("bucket", cfg.S3Bucket).Info("S3 storage ready")

	tokens := token.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AppHost)

	mailer := &email.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
	emails := email.NewService(db, mailer, cfg.ClientURL, log)

	authSvc := auth.NewService(db, tokens)
	userSvc := user.NewService(db, emails, cfg.RequireEmailVerification)
	groupSvc := group.NewService(db)
	dazimSvc := dazim.NewService(db)
	feedSvc := feed.NewService(db)
	commentSvc := comment.NewService(db)

	app := server.New(server.Deps{
		DB:        db,
		Tokens:    tokens,
		ClientURL: cfg.ClientURL,

		Auth: auth.NewHandler(authSvc, emails, cfg.ClientURL,
			auth.NewGoogleProvider(cfg), auth.NewKakaoProvider(cfg)),
		User:    user.NewHandler(userSvc, uploader),
		Group:   group.NewHandler(groupSvc, uploader),
		Dazim:   dazim.NewHandler(dazimSvc, uploader),
		Feed:    feed.NewHandler(feedSvc),
		Comment: comment.NewHandler(commentSvc),
	})

	log.WithField("addr", cfg.ServerAddr).Info("server starting")
	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
