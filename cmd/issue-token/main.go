// Command issue-token mints an access token for local testing against the API.
// Production tokens come from the external credential provider.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/pkg/jwt"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	userID := flag.String("user", "", "subject user id")
	role := flag.String("role", jwt.RoleCustomer, "customer or admin")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	service := jwt.NewService(secret, *ttl)
	token, err := service.GenerateAccessToken(*userID, *role)
	if err != nil {
		logger.WithError(err).Fatal("Failed to issue token")
	}

	logger.WithFields(logrus.Fields{
		"user_id":    *userID,
		"role":       *role,
		"expires_in": ttl.String(),
	}).Info("Token issued")
	fmt.Println(token)
}
