package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/smarttransit/fleet-booking-backend/internal/utils"
)

func main() {
	size := flag.Int("bytes", 32, "secret length in bytes (min 16)")
	flag.Parse()

	secret, err := utils.GenerateSecret(*size)
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("Add this to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("The same secret must be configured on the credential provider that issues tokens.")
}
