// Copyright (c) 2026 the nmea-navsat-driver authors
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/app"
	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML configuration")
	flag.Parse()

	log.Println("starting navsat producer (NMEA receiver → MQTT)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunProducer(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
