package util

import (
	"runtime"
)

func GetAppName() string {
	return "EventHub"
}

func GetAppLogoURL(frontURL string) string {
	return frontURL + "/logo.png"
}

// Certificate verification page for the given certificate number
func GetVerifyURL(frontURL, certificateNumber string) string {
	return frontURL + "/verify/" + certificateNumber
}

func DetermineWorkers(jobCount int) int {
	if jobCount <= 0 {
		return max(runtime.GOMAXPROCS(0), 1)
	}

	return min(max(runtime.GOMAXPROCS(0)*2, 1), jobCount)
}
