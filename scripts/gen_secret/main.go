package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
)

func main() {
	size := flag.Int("bytes", 32, "Number of random bytes")
	flag.Parse()

	bytes := make([]byte, *size)
	if _, err := rand.Read(bytes); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	secret := hex.EncodeToString(bytes)

	fmt.Println("=== New Secure Secret Generated ===")
	fmt.Println(secret)
	fmt.Println("=====================================")
	fmt.Println("Use it as API_SECRET (signed service requests) or JWT_SECRET (staff tokens).")
	fmt.Println("Give API_SECRET to calling services over a secure channel only.")
}
