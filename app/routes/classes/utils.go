package classes

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jcruz47/asistenciaqr/app/config"
	"github.com/jcruz47/asistenciaqr/app/models"
)

// GenerateToken returns a fresh 16-byte hex class token. Each generated
// token replaces the previous one wholesale; old printed QR codes die with
// it.
func GenerateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CheckinURL builds the link a class QR code encodes. The two query
// parameters are the entire wire contract with the check-in endpoint.
func CheckinURL(classID int, token string) string {
	return fmt.Sprintf("%s/?clase_id=%d&token=%s", config.BaseURL(), classID, token)
}

// withCheckinURLs fills in CheckinURL on classes going out to admins and
// teachers. Students never receive the token in any form.
func withCheckinURLs(list []*models.Class) []*models.Class {
	for _, class := range list {
		class.CheckinURL = CheckinURL(class.ID, class.QRToken)
	}
	return list
}
