package util

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Example output for "ex.txt": "21313123123_ex.txt"
func AddUniquePrefixToFileName(fileName string) string {
	uniquePrefix := fmt.Sprintf("%d", time.Now().UnixNano())
	return fmt.Sprintf("%s_%s", uniquePrefix, fileName)
}

func GetTempDir() string {
	return filepath.Join(os.TempDir(), "eventhub")
}

// Object keys always use forward slashes regardless of the host OS.

func GetTemplateDirectoryPath(templateId string) string {
	return fmt.Sprintf("templates/%s", templateId)
}

func ToTemplateDirectoryPath(templateId string, filename string) string {
	return path.Join(GetTemplateDirectoryPath(templateId), path.Base(filename))
}

func GetEventCertificateDirectoryPath(eventId string) string {
	return fmt.Sprintf("events/%s/certificates", eventId)
}

// e.g. events/<eventId>/certificates/CERT-2026-XXXXXXXXXX.pdf
func ToCertificateObjectKey(eventId string, certificateNumber string, ext string) string {
	return path.Join(GetEventCertificateDirectoryPath(eventId), certificateNumber+ext)
}
