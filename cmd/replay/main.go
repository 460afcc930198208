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
	toStdout := flag.Bool("stdout", false, "print reports to stdout instead of publishing to MQTT")
	flag.Parse()

	log.Println("starting navsat replay (NMEA log → MQTT)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunReplay(cfg, *toStdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
