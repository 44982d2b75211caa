// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

// stubd serves an in-memory stand-in for the Listing Directory Service so
// the souk client can be developed and demoed without a backend.
//
//	SOUK_STUB_PORT  listen port (default 8080)
//	SOUK_STUB_KEY   JWT signing key (default: random per process)
//	SOUK_STUB_SEED  set to "0" to start empty (default: seeded demo data)
package main

import (
	"crypto/rand"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/jredh-dev/souk/internal/httpserver"
	"github.com/jredh-dev/souk/internal/stub"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("SOUK_STUB_PORT")
	if port == "" {
		port = "8080"
	}

	key := []byte(os.Getenv("SOUK_STUB_KEY"))
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			log.Fatalf("generate signing key: %v", err)
		}
	}

	store := stub.NewStore()
	if os.Getenv("SOUK_STUB_SEED") != "0" {
		stub.Seed(store)
		log.Println("seeded demo data; login 70000001/demo")
	}

	srv := httpserver.New()
	srv.Router.Mount("/api/v1", stub.NewHandler(store, key).Routes())

	if err := srv.ListenAndServe(":" + port); err != nil {
		log.Fatalf("stubd: %v", err)
	}
}
