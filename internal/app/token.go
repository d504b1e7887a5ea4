package app

import (
	"errors"
	"strings"

	"github.com/shandysiswandi/tailor/internal/pkg/clock"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
)

// IssueServiceToken signs a bearer token for a trusted caller such as the
// subscription scheduler. Only the configuration is loaded.
func IssueServiceToken(subject, role string) (string, error) {
	subject, role = strings.TrimSpace(subject), strings.TrimSpace(role)
	if subject == "" || role == "" {
		return "", errors.New("app: subject and role are required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	defer cfg.Close()

	issuer, err := newJWT(cfg, clock.New(), uid.NewUUID())
	if err != nil {
		return "", err
	}

	return issuer.Generate(subject, role)
}
