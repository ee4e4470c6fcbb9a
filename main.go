/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
// @title           FleetHub API
// @version         1.0
// @description     Robot fleet telemetry ingestion, aggregation, anomaly detection and live event streaming

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
package main

import "github.com/guyuan9300-max/fleethub/cmd"

func main() {
	cmd.Execute()
}
