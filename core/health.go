package core

import (
	"time"
)

type HealthInfo struct {
	Status   string       `json:"status"`
	Uptime   string       `json:"uptime"`
	Scenario ScenarioInfo `json:"scenario"`
}

func getHealthInfo(scenario *Scenario, startedAt time.Time) HealthInfo {
	return HealthInfo{
		Status:   "ok",
		Uptime:   time.Since(startedAt).Truncate(time.Second).String(),
		Scenario: scenario.Info(),
	}
}
